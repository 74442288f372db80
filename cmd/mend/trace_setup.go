package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mend/internal/config"
	"mend/internal/prof"
	"mend/internal/trace"
)

// runState is what setupRun opened and finishRun must close.
type runState struct {
	cfg     config.Config
	tracer  *trace.Handle
	profile *prof.Profile
}

var state runState

// Commands annotated with configOptional run on defaults when the
// configuration cannot be loaded.
const (
	annotConfig    = "config"
	configOptional = "optional"
)

// setupRun loads the configuration, then starts tracing and profiling for
// the command about to run.
func setupRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRootConfig(cmd)
	if err != nil {
		// init должен уметь перезаписать сломанный файл
		if cmd.Annotations[annotConfig] != configOptional {
			return err
		}
		cfg = config.Default()
	}
	state.cfg = cfg

	handle, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	state.tracer = handle

	profile, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	state.profile = profile
	return nil
}

// finishRun stops profiling and closes the tracer. When the command failed
// the in-memory ring, if any, is dumped to stderr first.
func finishRun(runErr error) {
	if err := state.profile.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
	}
	h := state.tracer
	if h == nil {
		return
	}
	if runErr != nil && h.Ring != nil {
		fmt.Fprintln(os.Stderr, "== trace ring ==")
		if err := h.Ring.Dump(os.Stderr, trace.FormatText); err != nil {
			fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
		}
	}
	if err := h.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
	}
	state.tracer = nil
}

// setupTracing reads the trace flags, falling back to the [trace] section of
// the configuration, and attaches the tracer to the command context.
func setupTracing(cmd *cobra.Command, fromFile config.Trace) (*trace.Handle, error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeat, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	if traceOutput == "" {
		traceOutput = fromFile.Output
	}
	if levelStr == "" {
		levelStr = fromFile.Level
		// --trace без уровня включает фазы
		if traceOutput != "" && (levelStr == "" || levelStr == "off") {
			levelStr = "phase"
		}
	}
	if levelStr == "" {
		levelStr = "off"
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	handle, err := trace.Open(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     trace.FormatAuto,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), handle.Tracer)
	cmd.SetContext(ctx)
	return handle, nil
}
