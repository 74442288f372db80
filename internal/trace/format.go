package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatText   Format = iota // indented, human-readable
	FormatNDJSON               // one JSON object per line
	FormatChrome               // chrome://tracing / Perfetto event array
	FormatAuto                 // chosen from the output file extension
)

// ParseFormat converts text|ndjson|chrome|auto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	case "chrome", "json":
		return FormatChrome, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (expected text|ndjson|chrome|auto)", s)
}

// DetectFormat picks the format for an output path: *.ndjson and *.jsonl
// get NDJSON, *.json gets the Chrome format, anything else text.
func DetectFormat(path string) Format {
	if path == "" || path == "-" {
		return FormatText
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".json":
		return FormatChrome
	}
	return FormatText
}

// Encoder serialises a stream of events. The text format indents spans by
// nesting and prints times relative to the first event; the Chrome format
// needs Header and Footer around the events.
type Encoder struct {
	format Format
	n      int
	origin time.Time
	depth  map[uint64]int
}

// NewEncoder returns an encoder for format; FormatAuto encodes as text.
func NewEncoder(format Format) *Encoder {
	if format == FormatAuto {
		format = FormatText
	}
	return &Encoder{format: format, depth: make(map[uint64]int)}
}

// Header is written before the first event.
func (e *Encoder) Header() []byte {
	if e.format == FormatChrome {
		return []byte("{\"traceEvents\":[\n")
	}
	return nil
}

// Footer is written after the last event.
func (e *Encoder) Footer() []byte {
	if e.format == FormatChrome {
		return []byte("\n]}\n")
	}
	return nil
}

// Encode returns the bytes of ev, including any separator.
func (e *Encoder) Encode(ev *Event) []byte {
	defer func() { e.n++ }()
	switch e.format {
	case FormatNDJSON:
		return encodeNDJSON(ev)
	case FormatChrome:
		data := encodeChrome(ev)
		if e.n > 0 {
			data = append([]byte(",\n"), data...)
		}
		return data
	default:
		return e.encodeText(ev)
	}
}

// FormatEvent encodes a single event without stream context.
func FormatEvent(ev *Event, format Format) []byte {
	return NewEncoder(format).Encode(ev)
}

type ndjsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	GID      uint64            `json:"gid,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func encodeNDJSON(ev *Event) []byte {
	data, err := json.Marshal(ndjsonEvent{
		Time:     ev.Time.Format(time.RFC3339Nano),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		// map[string]string всегда сериализуется
		panic(fmt.Errorf("trace: %w", err))
	}
	return append(data, '\n')
}

func (e *Encoder) encodeText(ev *Event) []byte {
	if e.n == 0 {
		e.origin = ev.Time
	}
	var depth int
	switch ev.Kind {
	case KindSpanBegin:
		if d, ok := e.depth[ev.ParentID]; ok {
			depth = d + 1
		}
		e.depth[ev.SpanID] = depth
	case KindSpanEnd:
		depth = e.depth[ev.SpanID]
		delete(e.depth, ev.SpanID)
	default:
		if d, ok := e.depth[ev.ParentID]; ok {
			depth = d + 1
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%9.3fms] %s", float64(ev.Time.Sub(e.origin))/float64(time.Millisecond), strings.Repeat("  ", depth))
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	case KindPoint:
		sb.WriteString("• ")
	case KindHeartbeat:
		sb.WriteString("♡ ")
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + "=" + ev.Extra[k])
		}
		sb.WriteString("}")
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}

type chromeEvent struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat"`
	Ph    string            `json:"ph"`
	Ts    int64             `json:"ts"`
	Pid   int               `json:"pid"`
	Tid   uint64            `json:"tid"`
	Scope string            `json:"s,omitempty"`
	Args  map[string]string `json:"args,omitempty"`
}

// encodeChrome emits the Trace Event Format of chrome://tracing.
func encodeChrome(ev *Event) []byte {
	ce := chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		Ts:   ev.Time.UnixMicro(),
		Pid:  1,
		Tid:  ev.GID,
		Args: ev.Extra,
	}
	switch ev.Kind {
	case KindSpanBegin:
		ce.Ph = "B"
	case KindSpanEnd:
		ce.Ph = "E"
	default:
		ce.Ph = "i"
		ce.Scope = "t"
	}
	if ev.Detail != "" {
		args := maps.Clone(ev.Extra)
		if args == nil {
			args = make(map[string]string, 1)
		}
		args["detail"] = ev.Detail
		ce.Args = args
	}
	data, err := json.Marshal(ce)
	if err != nil {
		panic(fmt.Errorf("trace: %w", err))
	}
	return data
}
