package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mend/internal/config"
	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/driver"
	"mend/internal/observ"
)

// loadRootConfig reads --config, or discovers .mend.toml from the working
// directory. Commands with a target path call configFor instead.
func loadRootConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	return config.Discover(wd)
}

// configFor returns the configuration governing target: the --config file
// when given, otherwise the nearest .mend.toml above target.
func configFor(cmd *cobra.Command, target string) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return state.cfg, nil
	}
	dir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		dir = filepath.Dir(target)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return config.Config{}, err
	}
	return config.Discover(abs)
}

// colorFor resolves --color for output written to f.
func colorFor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}

func quietFlag(cmd *cobra.Command) bool {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return quiet
}

// driverOptions builds analysis options from the persistent flags. The
// timer is nil unless --timings is set.
func driverOptions(cmd *cobra.Command) (driver.Options, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	opts := driver.Options{MaxDiagnostics: maxDiagnostics}
	if showTimings {
		opts.Timer = observ.NewTimer()
	}
	return opts, nil
}

func printTimings(out io.Writer, timer *observ.Timer) {
	if timer == nil {
		return
	}
	fmt.Fprintln(out, timer.Summary())
}

// fixesFor computes the quick-fixes of the single diagnostic d of a.
func fixesFor(ctx context.Context, cat *correction.Catalogue, cfg *config.Config, a *driver.Analysis, d diag.Diagnostic) correction.Result {
	req := correction.Request{
		Tree:     a.Tree,
		Resolver: a.Resolver(),
		Offset:   d.Primary.Start,
		Length:   d.Primary.Len(),
		Problems: []correction.ProblemLocation{correction.NewProblemLocation(a.Tree, d)},
	}
	return cat.Proposals(ctx, req, cfg.Settings(a.File.Content))
}

// reportFailures prints rules that broke while generating.
func reportFailures(w io.Writer, fs []correction.Failure) {
	for _, f := range fs {
		if f.Kind == correction.KindFix {
			fmt.Fprintf(w, "warning: rule %s (%s) failed: %v\n", f.RuleID, f.Code.ID(), f.Err)
			continue
		}
		fmt.Fprintf(w, "warning: assist %s failed: %v\n", f.RuleID, f.Err)
	}
}
