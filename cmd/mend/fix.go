package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mend/internal/config"
	"mend/internal/correction"
	"mend/internal/driver"
	"mend/internal/fix"
	"mend/internal/preview"
	"mend/internal/rules"
	"mend/internal/trace"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file|directory>",
	Short: "Apply quick-fixes to a source file or directory",
	Long: `Run diagnostics, compute the quick-fixes of every diagnostic and apply
them according to the chosen strategy. Each diagnostic gets its most
relevant proposal; proposals whose edits overlap ones already applied are
skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply the best fix of every diagnostic")
	fixCmd.Flags().Bool("once", false, "apply the best fix of the first diagnostic (default)")
	fixCmd.Flags().String("rule", "", "apply only fixes produced by this rule id")
	fixCmd.Flags().Bool("dry-run", false, "print the diff instead of writing files")
	fixCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	fixCmd.Flags().String("ui", "auto", "progress view for directories (auto|on|off)")
}

func runFix(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	applyOnceFlag, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	ruleID, err := cmd.Flags().GetString("rule")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	if ruleID != "" && (applyAll || applyOnceFlag) {
		return fmt.Errorf("--rule cannot be combined with --all or --once")
	}
	if applyAll && applyOnceFlag {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}

	cat := rules.Default()
	applyMode := fix.ApplyModeOnce
	if ruleID != "" {
		if len(cat.CodesFor(ruleID)) == 0 {
			return fmt.Errorf("unknown quick-fix rule %q (see `mend rules`)", ruleID)
		}
		applyMode = fix.ApplyModeID
	} else if applyAll {
		applyMode = fix.ApplyModeAll
	}
	applyOpts := fix.ApplyOptions{Mode: applyMode, TargetID: ruleID, DryRun: dryRun}

	info, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	if !info.IsDir() {
		if _, ok := driver.LangOf(targetPath); !ok {
			return fmt.Errorf("fix: %s: %w", targetPath, driver.ErrUnsupported)
		}
	}
	cfg, err := configFor(cmd, targetPath)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd)
	if err != nil {
		return err
	}
	opts.Jobs = jobs

	work := func(ctx context.Context, sink driver.ProgressSink) (*fixRun, error) {
		o := opts
		o.Progress = sink
		var res *driver.DirResult
		var err error
		if info.IsDir() {
			res, err = driver.AnalyzeDir(ctx, targetPath, o)
		} else {
			res, err = driver.AnalyzePaths(ctx, "", []string{targetPath}, o)
		}
		if err != nil {
			return nil, fmt.Errorf("fix: diagnose failed: %w", err)
		}
		return applyFixes(ctx, res, cat, &cfg, applyOpts, o)
	}

	var run *fixRun
	if info.IsDir() && shouldUseTUI(mode, quietFlag(cmd)) {
		run, err = runWithProgress(cmd.Context(), "fix "+targetPath, nil, work)
	} else {
		run, err = work(cmd.Context(), nil)
	}
	if err != nil {
		return err
	}

	if !quietFlag(cmd) {
		reportFailures(os.Stderr, run.failures)
	}
	if dryRun {
		if err := printFixDiff(os.Stdout, run); err != nil {
			return err
		}
	}
	printTimings(os.Stderr, opts.Timer)
	return handleApplyResult(os.Stdout, run.result, run.applyErr, dryRun)
}

// fixRun carries the outcome of one fix invocation.
type fixRun struct {
	dir      *driver.DirResult
	result   *fix.ApplyResult
	applyErr error
	failures []correction.Failure
}

// applyFixes computes the quick-fixes of every diagnostic, one goroutine
// per file, then applies the selection. Fix progress is reported per file.
func applyFixes(ctx context.Context, res *driver.DirResult, cat *correction.Catalogue, cfg *config.Config, opts fix.ApplyOptions, dopts driver.Options) (*fixRun, error) {
	jobs := dopts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	idx := -1
	if dopts.Timer != nil {
		idx = dopts.Timer.Begin("proposals")
	}

	// у каждой горутины свой индекс результата
	perFile := make([][]fix.Candidate, len(res.Files))
	failures := make([][]correction.Failure, len(res.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, jobs))
	for i, a := range res.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			report(dopts.Progress, driver.Event{File: a.File.Path, Stage: driver.StageFix, Status: driver.StatusWorking})
			for _, d := range a.Diagnostics() {
				out := fixesFor(gctx, cat, cfg, a, d)
				perFile[i] = append(perFile[i], fix.Candidates(d, out.Proposals)...)
				failures[i] = append(failures[i], out.Failures...)
			}
			trace.Point(trace.FromContext(gctx), trace.ScopeDriver, "fix-candidates", trace.CurrentSpan(gctx).SpanID,
				map[string]string{"path": a.File.Path, "elapsed": time.Since(start).String()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if dopts.Timer != nil {
		dopts.Timer.End(idx, "")
	}

	run := &fixRun{dir: res}
	var cands []fix.Candidate
	for i := range perFile {
		cands = append(cands, perFile[i]...)
		run.failures = append(run.failures, failures[i]...)
	}
	run.result, run.applyErr = fix.ApplyProposals(res.FileSet, cands, opts)

	changed := make(map[string]bool)
	if run.result != nil {
		for _, fc := range run.result.FileChanges {
			changed[res.FileSet.Get(fc.File).Path] = true
		}
	}
	for _, a := range res.Files {
		// файлы без правок возвращаются в состояние check/done
		ev := driver.Event{File: a.File.Path, Stage: driver.StageCheck, Status: driver.StatusDone}
		if changed[a.File.Path] {
			ev.Stage = driver.StageFix
		}
		report(dopts.Progress, ev)
	}
	return run, nil
}

func report(sink driver.ProgressSink, ev driver.Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

// printFixDiff renders what a dry run would have written.
func printFixDiff(w io.Writer, run *fixRun) error {
	if run.result == nil || len(run.result.FileChanges) == 0 {
		return nil
	}
	changes := make([]preview.Change, 0, len(run.result.FileChanges))
	for _, fc := range run.result.FileChanges {
		changes = append(changes, preview.Change{
			File:   fc.File,
			Path:   fc.Path,
			Before: run.dir.FileSet.Get(fc.File).Content,
			After:  fc.Content,
		})
	}
	rendered, err := preview.Render(changes)
	if err != nil {
		return err
	}
	_, err = w.Write(rendered)
	return err
}

func handleApplyResult(out io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}
	verb := "Applied"
	if dryRun {
		verb = "Would apply"
	}

	if len(res.Applied) > 0 {
		fmt.Fprintf(out, "%s %d fix(es):\n", verb, len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(out, "  %s [%s] %s: %s (%d edits, relevance %d)\n",
				item.Label, item.RuleID, item.Code.ID(), location, item.EditCount, item.Relevance)
		}
	}

	if len(res.FileChanges) > 0 && !dryRun {
		fmt.Fprintln(out, "Updated files:")
		for _, change := range res.FileChanges {
			fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.RuleID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Label != "" {
				fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Label, id, skip.Reason)
			} else {
				fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(out, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	if len(res.Applied) == 0 {
		fmt.Fprintln(out, "No fixes applied.")
	}
	return nil
}
