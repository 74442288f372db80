package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mend/internal/config"
	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/diagfmt"
	"mend/internal/driver"
	"mend/internal/rules"
	"mend/internal/source"
)

var diagnoseCmd = &cobra.Command{
	Use:     "diagnose [flags] <file|directory>",
	Aliases: []string{"diag"},
	Short:   "Report problems in Java and JavaScript sources",
	Long: `Parse and check a source file, or every *.java and *.js file under a
directory, and print the diagnostics. Java files of a directory are checked
together as one program. Exits with status 1 when any error is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	diagnoseCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagnoseCmd.Flags().Bool("suggest", false, "list the quick-fixes of every diagnostic")
	diagnoseCmd.Flags().Bool("preview", false, "show a diff of every suggested quick-fix")
	diagnoseCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	diagnoseCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	diagnoseCmd.Flags().Bool("no-lints", false, "skip the LNT warnings")
	diagnoseCmd.Flags().Bool("no-cache", false, "ignore the [cache] section of the configuration")
	diagnoseCmd.Flags().String("ui", "auto", "progress view for directories (auto|on|off)")
}

// diagnoseRun is what the output stage of diagnose needs.
type diagnoseRun struct {
	fs          *source.FileSet
	diagnostics []diag.Diagnostic
	fixes       diagfmt.FixSource
	cached      bool
	hasErrors   bool
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" && format != "short" {
		return fmt.Errorf("unknown format: %s", format)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noLints, err := cmd.Flags().GetBool("no-lints")
	if err != nil {
		return fmt.Errorf("failed to get no-lints flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	cfg, err := configFor(cmd, path)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd)
	if err != nil {
		return err
	}
	opts.Jobs = jobs
	opts.NoLints = noLints

	showFixes := suggest || preview
	work := func(ctx context.Context, sink driver.ProgressSink) (*diagnoseRun, error) {
		o := opts
		o.Progress = sink
		if showFixes {
			return diagnoseWithFixes(ctx, path, info.IsDir(), &cfg, o)
		}
		var cache *driver.DiskCache
		if cfg.Cache.Enabled && !noCache {
			c, err := driver.OpenDiskCache(cfg.Cache.Dir)
			if err != nil {
				return nil, fmt.Errorf("failed to open cache: %w", err)
			}
			cache = c
		}
		return diagnoseCached(ctx, path, cache, o)
	}

	var run *diagnoseRun
	if info.IsDir() && shouldUseTUI(mode, quietFlag(cmd)) {
		run, err = runWithProgress(cmd.Context(), "diagnose "+path, nil, work)
	} else {
		run, err = work(cmd.Context(), nil)
	}
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch format {
	case "pretty":
		useColor, err := colorFor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		diagfmt.Pretty(os.Stdout, run.diagnostics, run.fs, diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   withNotes,
			ShowFixes:   showFixes,
			ShowPreview: preview,
			Fixes:       run.fixes,
		})
		if !quietFlag(cmd) {
			printDiagnoseSummary(run)
		}
	case "short":
		style := "relative"
		if fullPath {
			style = "absolute"
		}
		for _, line := range diag.Lines(run.diagnostics, run.fs, diag.LineOpts{PathMode: style, Notes: withNotes}) {
			fmt.Fprintln(os.Stdout, line)
		}
	case "json":
		err := diagfmt.JSON(os.Stdout, run.diagnostics, run.fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  preview,
			Fixes:            run.fixes,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}

	printTimings(os.Stderr, opts.Timer)
	if run.hasErrors {
		return &exitError{code: 1}
	}
	return nil
}

// diagnoseCached answers from the disk cache when every file hits.
func diagnoseCached(ctx context.Context, path string, cache *driver.DiskCache, opts driver.Options) (*diagnoseRun, error) {
	res, err := driver.Diagnose(ctx, path, cache, opts)
	if err != nil {
		return nil, err
	}
	run := &diagnoseRun{fs: res.FileSet, cached: res.Cached, hasErrors: res.HasErrors()}
	for _, f := range res.Failures {
		run.diagnostics = append(run.diagnostics, f.Diagnostic())
	}
	run.diagnostics = append(run.diagnostics, res.Diagnostics...)
	return run, nil
}

// diagnoseWithFixes keeps the trees so that quick-fixes can be computed for
// every printed diagnostic.
func diagnoseWithFixes(ctx context.Context, path string, isDir bool, cfg *config.Config, opts driver.Options) (*diagnoseRun, error) {
	var (
		res *driver.DirResult
		err error
	)
	if isDir {
		res, err = driver.AnalyzeDir(ctx, path, opts)
	} else {
		if _, ok := driver.LangOf(path); !ok {
			return nil, fmt.Errorf("%s: %w", path, driver.ErrUnsupported)
		}
		res, err = driver.AnalyzePaths(ctx, "", []string{path}, opts)
	}
	if err != nil {
		return nil, err
	}

	cat := rules.Default()
	byFile := make(map[source.FileID]*driver.Analysis, len(res.Files))
	run := &diagnoseRun{fs: res.FileSet, hasErrors: res.HasErrors()}
	for _, f := range res.Failures {
		run.diagnostics = append(run.diagnostics, f.Diagnostic())
	}
	for _, a := range res.Files {
		byFile[a.File.ID] = a
		run.diagnostics = append(run.diagnostics, a.Diagnostics()...)
	}
	run.fixes = func(d *diag.Diagnostic) []correction.Proposal {
		a := byFile[d.Primary.File]
		if a == nil {
			return nil
		}
		return fixesFor(ctx, cat, cfg, a, *d).Proposals
	}
	return run, nil
}

func printDiagnoseSummary(run *diagnoseRun) {
	errs, warns := 0, 0
	for i := range run.diagnostics {
		switch {
		case run.diagnostics[i].Severity >= diag.SevError:
			errs++
		case run.diagnostics[i].Severity == diag.SevWarning:
			warns++
		}
	}
	suffix := ""
	if run.cached {
		suffix = " (cached)"
	}
	fmt.Fprintf(os.Stderr, "%d error(s), %d warning(s)%s\n", errs, warns, suffix)
}
