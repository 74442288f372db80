package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(r, ScopeNode, name, 0, nil)
	}
	got := r.Snapshot()
	if len(got) != 3 {
		t.Fatalf("snapshot has %d events, want 3", len(got))
	}
	for i, want := range []string{"b", "c", "d"} {
		if got[i].Name != want {
			t.Errorf("event %d = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	r := NewRingTracer(16, LevelPhase)
	span := Begin(r, ScopePass, "assist", 0)
	Begin(r, ScopeNode, "rule:add-block", span.ID()).End("")
	span.End("2 proposals")
	got := r.Snapshot()
	if len(got) != 2 {
		t.Fatalf("phase level recorded %d events, want the pass span only", len(got))
	}
	if got[1].Kind != KindSpanEnd || got[1].Detail != "2 proposals" {
		t.Fatalf("end event = %+v", got[1])
	}
}

func TestStreamFormats(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(st, ScopeNode, "usage", 7, map[string]string{"rule": "inverse-if"})
	var ev map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("ndjson line: %v", err)
	}
	if ev["name"] != "usage" || ev["kind"] != "point" {
		t.Fatalf("decoded %v", ev)
	}

	buf.Reset()
	ct := NewStreamTracer(&buf, LevelDebug, FormatChrome)
	Begin(ct, ScopePass, "parse", 0).End("")
	if err := ct.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var doc struct {
		TraceEvents []struct {
			Name string `json:"name"`
			Ph   string `json:"ph"`
		} `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("chrome output is not JSON: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 2 || doc.TraceEvents[0].Ph != "B" || doc.TraceEvents[1].Ph != "E" {
		t.Fatalf("chrome events = %+v", doc.TraceEvents)
	}
}

func TestNewPicksFormatFromExtension(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopeDriver, "diagnose", 0).End("")
	if !strings.Contains(buf.String(), "diagnose") {
		t.Fatalf("text output %q", buf.String())
	}
	if _, err := New(Config{Level: LevelOff}); err != nil {
		t.Fatalf("off level: %v", err)
	}
}

func TestContextFallsBackToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	r := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("tracer not propagated")
	}
}

func TestTextIndentsNestedSpans(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), st)
	ctx, outer := Start(ctx, ScopePass, "proposals")
	_, inner := Start(ctx, ScopeNode, "rule:add-block")
	inner.Attr("b", "2").Attr("a", "1").End("1 proposals")
	outer.End("")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines:\n%s", buf.String())
	}
	if !strings.Contains(lines[1], "]   → rule:add-block") {
		t.Errorf("inner begin not indented: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "← rule:add-block (1 proposals) {a=1, b=2}") {
		t.Errorf("inner end: %q", lines[2])
	}
	if !strings.Contains(lines[3], "] ← proposals") {
		t.Errorf("outer end: %q", lines[3])
	}
}

func TestStartWithoutTracerKeepsContext(t *testing.T) {
	ctx := context.Background()
	got, span := Start(ctx, ScopePass, "proposals")
	if got != ctx || span.ID() != 0 {
		t.Fatalf("untraced Start changed context or recorded a span")
	}
	if span.Attr("k", "v").End("") != 0 {
		t.Fatal("unrecorded span has a duration")
	}
}

func TestRingDumpChromeIsOneDocument(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	Begin(r, ScopeDriver, "diagnose", 0).End("ok")
	Point(r, ScopeNode, "cache-put-failed", 0, nil)
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatChrome); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("dump is not JSON: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 3 {
		t.Fatalf("events = %d", len(doc.TraceEvents))
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Errorf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("verbose accepted")
	}
	if m, err := ParseMode("BOTH"); err != nil || m != ModeBoth || m.String() != "both" {
		t.Errorf("ParseMode = %v, %v", m, err)
	}
	cases := map[string]Format{"-": FormatText, "t.ndjson": FormatNDJSON, "t.jsonl": FormatNDJSON, "t.json": FormatChrome, "t.log": FormatText}
	for path, want := range cases {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestOpenRingHandle(t *testing.T) {
	h, err := Open(Config{Level: LevelPhase, Mode: ModeRing})
	if err != nil {
		t.Fatal(err)
	}
	Begin(h, ScopePass, "sema", 0).End("")
	if h.Ring == nil || len(h.Ring.Snapshot()) != 2 {
		t.Fatalf("ring handle did not record")
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
}
