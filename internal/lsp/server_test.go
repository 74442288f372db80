package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const javaSrc = "class C {\n    int f() {\n        return missing;\n    }\n}\n"

func newTestServer(t *testing.T, out *bytes.Buffer) *Server {
	t.Helper()
	server := NewServer(bytes.NewReader(nil), out, ServerOptions{Debounce: time.Hour})
	server.baseCtx = context.Background()
	return server
}

func call(t *testing.T, server *Server, method string, params any) {
	t.Helper()
	payload, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}
	if err := server.handleMessage(&rpcMessage{ID: json.RawMessage(`1`), Method: method, Params: payload}); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func readAll(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if err != nil {
			break
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func openJava(t *testing.T, server *Server, text string) string {
	t.Helper()
	uri := pathToURI(filepath.Join(t.TempDir(), "C.java"))
	call(t, server, "textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: "java", Version: 1, Text: text},
	})
	server.mu.Lock()
	if server.debounceTimer != nil {
		server.debounceTimer.Stop()
	}
	server.mu.Unlock()
	return uri
}

func TestPublishDiagnosticsMapping(t *testing.T) {
	var out bytes.Buffer
	server := newTestServer(t, &out)
	uri := openJava(t, server, javaSrc)

	server.runDiagnostics(atomic.LoadUint64(&server.latestSeq))

	msgs := readAll(t, &out)
	if len(msgs) != 1 || msgs[0].Method != "textDocument/publishDiagnostics" {
		t.Fatalf("expected one publishDiagnostics, got %+v", msgs)
	}
	var params publishDiagnosticsParams
	if err := json.Unmarshal(msgs[0].Params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.URI != uri || params.Version == nil || *params.Version != 1 {
		t.Fatalf("unexpected target %q version %v", params.URI, params.Version)
	}
	var found *lspDiagnostic
	for i := range params.Diagnostics {
		if params.Diagnostics[i].Code == "SEM3001" {
			found = &params.Diagnostics[i]
		}
	}
	if found == nil {
		t.Fatalf("no SEM3001 in %+v", params.Diagnostics)
	}
	want := lspRange{Start: position{Line: 2, Character: 15}, End: position{Line: 2, Character: 22}}
	if found.Range != want || found.Severity != 1 || found.Source != "mend" {
		t.Fatalf("unexpected diagnostic %+v", *found)
	}
}

func TestStaleAnalysisIsDropped(t *testing.T) {
	var out bytes.Buffer
	server := newTestServer(t, &out)
	uri := openJava(t, server, javaSrc)
	seq := atomic.LoadUint64(&server.latestSeq)

	call(t, server, "textDocument/didChange", didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Text: "class C {}\n"}},
	})
	server.mu.Lock()
	server.debounceTimer.Stop()
	server.mu.Unlock()

	server.runDiagnostics(seq)
	if out.Len() != 0 {
		t.Fatalf("superseded run published: %s", out.String())
	}
}

func actionsFrom(t *testing.T, out *bytes.Buffer) []codeAction {
	t.Helper()
	msgs := readAll(t, out)
	if len(msgs) != 1 || msgs[0].Error != nil {
		t.Fatalf("expected one response, got %+v", msgs)
	}
	var actions []codeAction
	if err := json.Unmarshal(msgs[0].Result, &actions); err != nil {
		t.Fatalf("decode actions: %v", err)
	}
	return actions
}

func TestCodeActionOffersQuickFixes(t *testing.T) {
	var out bytes.Buffer
	server := newTestServer(t, &out)
	uri := openJava(t, server, javaSrc)

	at := position{Line: 2, Character: 18}
	call(t, server, "textDocument/codeAction", codeActionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Range:        lspRange{Start: at, End: at},
		Context: codeActionContext{Diagnostics: []lspDiagnostic{{
			Range: lspRange{Start: position{Line: 2, Character: 15}, End: position{Line: 2, Character: 22}},
			Code:  "SEM3001",
		}}},
	})
	actions := actionsFrom(t, &out)

	var local *codeAction
	for i := range actions {
		if actions[i].Title == "Create local variable 'missing'" {
			local = &actions[i]
		}
	}
	if local == nil {
		t.Fatalf("no create-local action in %+v", actions)
	}
	if local.Kind != kindQuickFix || len(local.Diagnostics) != 1 {
		t.Fatalf("unexpected action %+v", *local)
	}
	if local.Edit == nil || len(local.Edit.Changes[uri]) == 0 {
		t.Fatalf("action has no edits for %s: %+v", uri, local.Edit)
	}
	if !actions[0].IsPreferred && actions[0].Kind == kindQuickFix {
		t.Fatal("best quick-fix is not preferred")
	}
}

func TestCodeActionOnlyRefactor(t *testing.T) {
	var out bytes.Buffer
	server := newTestServer(t, &out)
	uri := openJava(t, server, javaSrc)

	at := position{Line: 2, Character: 18}
	call(t, server, "textDocument/codeAction", codeActionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Range:        lspRange{Start: at, End: at},
		Context:      codeActionContext{Only: []string{"refactor"}},
	})
	for _, a := range actionsFrom(t, &out) {
		if a.Kind != kindRefactorRewrite {
			t.Fatalf("quick-fix returned for only=refactor: %+v", a)
		}
	}
}

func TestCodeActionUnknownDocument(t *testing.T) {
	var out bytes.Buffer
	server := newTestServer(t, &out)
	call(t, server, "textDocument/codeAction", codeActionParams{
		TextDocument: textDocumentIdentifier{URI: pathToURI(filepath.Join(t.TempDir(), "Nope.java"))},
	})
	if actions := actionsFrom(t, &out); len(actions) != 0 {
		t.Fatalf("actions for a closed document: %+v", actions)
	}
}

func TestSettingsOverrideConfig(t *testing.T) {
	var out bytes.Buffer
	server := newTestServer(t, &out)
	call(t, server, "workspace/didChangeConfiguration", didChangeConfigurationParams{
		Settings: json.RawMessage(`{"mend":{"assist":{"disabled":["create-local"],"maxProposals":3},"lsp":{"trace":true}}}`),
	})
	s := server.settings([]byte("class C {}\n"))
	if !s.Disabled["create-local"] || s.MaxProposals != 3 {
		t.Fatalf("settings = %+v", s)
	}
	if !server.currentTrace() {
		t.Fatal("trace not enabled")
	}
}

func TestWantedKinds(t *testing.T) {
	cases := []struct {
		only           []string
		fixes, assists bool
	}{
		{nil, true, true},
		{[]string{"quickfix"}, true, false},
		{[]string{"refactor"}, false, true},
		{[]string{"refactor.rewrite"}, false, true},
		{[]string{"source.organizeImports"}, false, false},
	}
	for _, c := range cases {
		fixes, assists := wantedKinds(c.only)
		if fixes != c.fixes || assists != c.assists {
			t.Errorf("wantedKinds(%v) = %v, %v", c.only, fixes, assists)
		}
	}
}

func frame(t *testing.T, msgs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		if err := writeMessage(&buf, []byte(m)); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func TestRunLifecycle(t *testing.T) {
	in := frame(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"textDocument/hover","params":{}}`,
		`{"jsonrpc":"2.0","id":3,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	)
	var out bytes.Buffer
	server := NewServer(bytes.NewReader(in), &out, ServerOptions{Version: "test"})
	if err := server.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("Run = %v, want ErrExit", err)
	}
	msgs := readAll(t, &out)
	if len(msgs) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(msgs))
	}
	if !strings.Contains(string(msgs[0].Result), `"codeActionProvider"`) {
		t.Errorf("capabilities: %s", msgs[0].Result)
	}
	if msgs[1].Error == nil || msgs[1].Error.Code != -32601 {
		t.Errorf("hover should be unknown: %+v", msgs[1])
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	in := frame(t, `{"jsonrpc":"2.0","method":"exit"}`)
	server := NewServer(bytes.NewReader(in), &bytes.Buffer{}, ServerOptions{})
	if err := server.Run(context.Background()); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("Run = %v", err)
	}
}
