package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives events. Implementations must be safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	// Close flushes and releases the output.
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff.
	Enabled() bool
}

// StorageMode determines how events are stored.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory, dumped on failure
	ModeBoth
)

var modeNames = map[string]StorageMode{"stream": ModeStream, "ring": ModeRing, "both": ModeBoth}

func (m StorageMode) String() string {
	for name, v := range modeNames {
		if v == m {
			return name
		}
	}
	return "unknown"
}

// ParseMode converts stream|ring|both.
func ParseMode(s string) (StorageMode, error) {
	if m, ok := modeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return ModeRing, fmt.Errorf("invalid trace mode %q (expected stream|ring|both)", s)
}

// Config holds tracer configuration.
type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format // FormatAuto picks by OutputPath
	// Output wins over OutputPath; "-" or "" for OutputPath means stderr.
	Output     io.Writer
	OutputPath string
	RingSize   int // default 4096
	// Heartbeat is the interval of liveness events, 0 disables them.
	Heartbeat time.Duration
}

// Handle is an open tracer with its heartbeat. Ring is set when events are
// kept in memory.
type Handle struct {
	Tracer
	Ring      *RingTracer
	heartbeat *Heartbeat
}

// Close stops the heartbeat, then flushes and closes the tracer.
func (h *Handle) Close() error {
	h.heartbeat.Stop()
	if err := h.Tracer.Flush(); err != nil {
		return err
	}
	return h.Tracer.Close()
}

// New creates a Tracer based on Config.
func New(cfg Config) (Tracer, error) {
	h, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return h.Tracer, nil
}

// Open builds the tracer of cfg and starts its heartbeat.
func Open(cfg Config) (*Handle, error) {
	if cfg.Level == LevelOff {
		return &Handle{Tracer: Nop}, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = 4096
	}
	format := cfg.Format
	if format == FormatAuto {
		format = DetectFormat(cfg.OutputPath)
	}

	h := &Handle{}
	switch cfg.Mode {
	case ModeStream:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		h.Tracer = NewStreamTracer(w, cfg.Level, format)
	case ModeRing:
		h.Ring = NewRingTracer(cfg.RingSize, cfg.Level)
		h.Tracer = h.Ring
	case ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		h.Ring = NewRingTracer(cfg.RingSize, cfg.Level)
		h.Tracer = NewMultiTracer(cfg.Level, NewStreamTracer(w, cfg.Level, format), h.Ring)
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
	h.heartbeat = StartHeartbeat(h.Tracer, cfg.Heartbeat)
	return h, nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// nopCloser keeps Close from closing stderr.
type nopCloser struct{ io.Writer }
