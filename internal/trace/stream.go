package trace

import (
	"io"
	"sync"
)

// StreamTracer writes events to an io.Writer as they happen. Write errors
// are ignored; tracing never fails an analysis.
type StreamTracer struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
	enc   *Encoder
}

// NewStreamTracer creates a new StreamTracer and writes the format header.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{w: w, level: level, enc: NewEncoder(format)}
	if h := t.enc.Header(); h != nil {
		_, _ = w.Write(h) //nolint:errcheck
	}
	return t
}

// Emit writes an event to the output.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	_, _ = t.w.Write(t.enc.Encode(ev)) //nolint:errcheck
}

// Flush calls Flush on the writer when it has one.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close writes the format footer, flushes and closes the writer if it is
// an io.Closer.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if f := t.enc.Footer(); f != nil {
		_, _ = t.w.Write(f) //nolint:errcheck
	}
	t.mu.Unlock()

	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
