package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mend/internal/prof"
)

// setupProfiling inspects the persistent profiling flags and starts the
// requested profilers. The returned profile is stopped by finishRun.
func setupProfiling(cmd *cobra.Command) (*prof.Profile, error) {
	root := cmd.Root()

	cpuProfile, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := root.PersistentFlags().GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	p, err := prof.Start(prof.Options{CPU: cpuProfile, Heap: memProfile, Trace: tracePath})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	return p, nil
}
