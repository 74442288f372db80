package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"mend/internal/config"
	"mend/internal/correction"
	"mend/internal/diagfmt"
	"mend/internal/driver"
	"mend/internal/observ"
	"mend/internal/preview"
	"mend/internal/rules"
	"mend/internal/source"
	"mend/internal/ui"
)

var assistCmd = &cobra.Command{
	Use:   "assist [flags] <file>",
	Short: "List quick-fixes and quick-assists at a position",
	Long: `List the quick-assists available at a selection of a file together with
the quick-fixes of the diagnostics overlapping it, best first.

Positions are 1-based line:col pairs or 0-based byte offsets. With --batch
requests are read from stdin, one "<file> <line:col|offset> [length]" per
line, and analyses are reused between requests of the same file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssist,
}

func init() {
	assistCmd.Flags().String("at", "", "selection start (line:col or byte offset)")
	assistCmd.Flags().Uint32("length", 0, "selection length in bytes")
	assistCmd.Flags().Bool("preview", false, "show the diff and linked fields of every proposal")
	assistCmd.Flags().Int("apply", 0, "write the n-th proposal (1-based) to disk")
	assistCmd.Flags().String("output", "text", "output format (text|json|yaml)")
	assistCmd.Flags().Bool("interactive", false, "pick a proposal in a terminal UI and write it")
	assistCmd.Flags().Bool("batch", false, "read requests from stdin")
	assistCmd.Flags().Bool("fixes-only", false, "leave out quick-assists")
}

// assistEnv is shared by every request of one invocation.
type assistEnv struct {
	session *driver.Session
	cat     *correction.Catalogue
	timer   *observ.Timer
	output  string
	preview bool
	color   bool
	assists bool
	// config resolves the settings governing a file.
	config func(path string) (config.Config, error)
}

type assistRequest struct {
	path   string
	at     string
	length uint32
}

// assistAnswer is the outcome of one request.
type assistAnswer struct {
	analysis *driver.Analysis
	offset   uint32
	length   uint32
	result   correction.Result
}

func runAssist(cmd *cobra.Command, args []string) error {
	at, err := cmd.Flags().GetString("at")
	if err != nil {
		return fmt.Errorf("failed to get at flag: %w", err)
	}
	length, err := cmd.Flags().GetUint32("length")
	if err != nil {
		return fmt.Errorf("failed to get length flag: %w", err)
	}
	showPreview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	apply, err := cmd.Flags().GetInt("apply")
	if err != nil {
		return fmt.Errorf("failed to get apply flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	interactive, err := cmd.Flags().GetBool("interactive")
	if err != nil {
		return fmt.Errorf("failed to get interactive flag: %w", err)
	}
	batch, err := cmd.Flags().GetBool("batch")
	if err != nil {
		return fmt.Errorf("failed to get batch flag: %w", err)
	}
	fixesOnly, err := cmd.Flags().GetBool("fixes-only")
	if err != nil {
		return fmt.Errorf("failed to get fixes-only flag: %w", err)
	}

	switch output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}
	if apply < 0 {
		return fmt.Errorf("--apply expects a proposal number starting at 1")
	}
	if batch {
		if len(args) > 0 || at != "" || apply > 0 || interactive {
			return errors.New("--batch reads requests from stdin and cannot be combined with a file, --at, --apply or --interactive")
		}
	} else {
		if len(args) != 1 {
			return errors.New("assist expects exactly one file")
		}
		if at == "" {
			return errors.New("--at is required")
		}
		if apply > 0 && interactive {
			return errors.New("--apply and --interactive are mutually exclusive")
		}
	}
	if interactive && !(isTerminal(os.Stdin) && isTerminal(os.Stdout)) {
		return errors.New("--interactive needs a terminal")
	}

	opts, err := driverOptions(cmd)
	if err != nil {
		return err
	}
	session, err := driver.NewSession(driver.DefaultSessionSize, opts)
	if err != nil {
		return err
	}
	useColor, err := colorFor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	configs := make(map[string]config.Config)
	env := &assistEnv{
		session: session,
		cat:     rules.Default(),
		timer:   opts.Timer,
		output:  output,
		preview: showPreview,
		color:   useColor,
		assists: !fixesOnly,
		config: func(path string) (config.Config, error) {
			dir := filepath.Dir(path)
			if cfg, ok := configs[dir]; ok {
				return cfg, nil
			}
			cfg, err := configFor(cmd, path)
			if err != nil {
				return config.Config{}, err
			}
			configs[dir] = cfg
			return cfg, nil
		},
	}

	ctx := cmd.Context()
	if batch {
		failed, err := runAssistBatch(ctx, env, os.Stdin, os.Stdout, os.Stderr)
		if err != nil {
			return err
		}
		if !quietFlag(cmd) {
			hits, misses := session.Stats()
			fmt.Fprintf(os.Stderr, "session: %d hit(s), %d miss(es)\n", hits, misses)
		}
		printTimings(os.Stderr, opts.Timer)
		if failed > 0 {
			return &exitError{code: 1}
		}
		return nil
	}

	ans, err := env.answer(ctx, assistRequest{path: args[0], at: at, length: length})
	if err != nil {
		return err
	}
	if !quietFlag(cmd) {
		reportFailures(os.Stderr, ans.result.Failures)
	}
	ps := ans.result.Proposals
	fs := ans.analysis.FileSet

	switch {
	case interactive:
		sel, err := ui.Pick(ctx, fs, ps, os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		if sel.Index < 0 {
			fmt.Fprintln(os.Stdout, "cancelled")
			return nil
		}
		changes, err := ui.Apply(fs, &ps[sel.Index], sel.Values)
		if err != nil {
			return err
		}
		err = writeProposal(ctx, os.Stdout, fs, &ps[sel.Index], changes)
		session.Forget(args[0])
		return err
	case apply > 0:
		if apply > len(ps) {
			return fmt.Errorf("--apply %d: only %d proposal(s) available", apply, len(ps))
		}
		p := &ps[apply-1]
		changes, err := preview.Changes(fs, p)
		if err != nil {
			return err
		}
		err = writeProposal(ctx, os.Stdout, fs, p, changes)
		session.Forget(args[0])
		return err
	}

	if err := env.write(os.Stdout, ans); err != nil {
		return err
	}
	printTimings(os.Stderr, opts.Timer)
	return nil
}

// answer analyzes the file of req through the session and runs the
// catalogue at the selection.
func (env *assistEnv) answer(ctx context.Context, req assistRequest) (*assistAnswer, error) {
	a, err := env.session.Analyze(ctx, req.path, nil)
	if err != nil {
		return nil, err
	}
	offset, err := parseAt(a.File, req.at)
	if err != nil {
		return nil, err
	}
	if req.length > a.File.Len()-offset {
		return nil, fmt.Errorf("selection %d+%d runs past the end of %s", offset, req.length, req.path)
	}
	cfg, err := env.config(req.path)
	if err != nil {
		return nil, err
	}

	creq := a.Request(offset, req.length, env.assists)
	ans := &assistAnswer{analysis: a, offset: offset, length: req.length}
	run := func() error {
		ans.result = env.cat.Proposals(ctx, creq, cfg.Settings(a.File.Content))
		return nil
	}
	if env.timer != nil {
		_ = env.timer.Measure("proposals", run)
	} else {
		_ = run()
	}
	return ans, nil
}

// write prints ans in the output format of env.
func (env *assistEnv) write(w io.Writer, ans *assistAnswer) error {
	fs := ans.analysis.FileSet
	ps := ans.result.Proposals
	switch env.output {
	case "json", "yaml":
		doc := diagfmt.BuildProposalsOutput(fs, ans.analysis.File.ID, ans.offset, ans.length, ps, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludePreviews:  env.preview,
		})
		if env.output == "yaml" {
			return diagfmt.WriteYAML(w, doc)
		}
		return diagfmt.WriteJSON(w, doc)
	default:
		return diagfmt.Proposals(w, fs, ps, diagfmt.ProposalOpts{
			Color:  env.color,
			Diff:   env.preview,
			Groups: env.preview,
		})
	}
}

// runAssistBatch answers every request line of in. Bad lines are reported
// on errOut and counted; the loop goes on.
func runAssistBatch(ctx context.Context, env *assistEnv, in io.Reader, out, errOut io.Writer) (failed int, err error) {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		req, ok, perr := parseBatchLine(scanner.Text())
		if perr != nil {
			fmt.Fprintf(errOut, "line %d: %v\n", lineNo, perr)
			failed++
			continue
		}
		if !ok {
			continue
		}
		ans, aerr := env.answer(ctx, req)
		if aerr != nil {
			fmt.Fprintf(errOut, "line %d: %v\n", lineNo, aerr)
			failed++
			continue
		}
		reportFailures(errOut, ans.result.Failures)
		if env.output == "text" {
			fmt.Fprintf(out, "== %s %s ==\n", req.path, req.at)
		}
		if err := env.write(out, ans); err != nil {
			return failed, err
		}
	}
	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("read requests: %w", err)
	}
	return failed, nil
}

// parseBatchLine splits "<file> <at> [length]". Blank lines and lines
// starting with # are skipped.
func parseBatchLine(line string) (assistRequest, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return assistRequest{}, false, nil
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return assistRequest{}, false, fmt.Errorf("expected <file> <line:col|offset> [length], got %q", line)
	}
	req := assistRequest{path: fields[0], at: fields[1]}
	if len(fields) == 3 {
		n, err := parseUint32(fields[2])
		if err != nil {
			return assistRequest{}, false, fmt.Errorf("bad length %q", fields[2])
		}
		req.length = n
	}
	return req, true, nil
}

// parseAt resolves a 1-based "line:col" or a 0-based byte offset in f.
func parseAt(f *source.File, at string) (uint32, error) {
	if line, col, ok := strings.Cut(at, ":"); ok {
		l, err := parseUint32(line)
		if err != nil {
			return 0, fmt.Errorf("bad line in %q", at)
		}
		c, err := parseUint32(col)
		if err != nil {
			return 0, fmt.Errorf("bad column in %q", at)
		}
		off, ok := f.Offset(source.LineCol{Line: l, Col: c})
		if !ok {
			return 0, fmt.Errorf("position %s is outside %s", at, f.Path)
		}
		return off, nil
	}
	n, err := strconv.ParseInt(at, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad position %q (expected line:col or offset)", at)
	}
	off, err := safecast.Conv[uint32](n)
	if err != nil || off > f.Len() {
		return 0, fmt.Errorf("offset %s is outside %s", at, f.Path)
	}
	return off, nil
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[uint32](n)
}

// writeProposal validates and writes the changes of p.
func writeProposal(ctx context.Context, w io.Writer, fs *source.FileSet, p *correction.Proposal, changes []preview.Change) error {
	if err := preview.ValidateChanges(ctx, changes); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	n, err := writeChanges(fs, changes)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "applied %q (%s), %d file(s) updated\n", p.Label, p.RuleID, n)
	for _, c := range changes {
		if !bytes.Equal(c.Before, c.After) {
			fmt.Fprintf(w, "  %s\n", c.Path)
		}
	}
	return nil
}

// writeChanges writes every changed file back with its previous mode.
func writeChanges(fs *source.FileSet, changes []preview.Change) (int, error) {
	n := 0
	for _, c := range changes {
		if bytes.Equal(c.Before, c.After) {
			continue
		}
		f := fs.Get(c.File)
		if f == nil || f.Flags&source.FileVirtual != 0 {
			return n, fmt.Errorf("%s: not a file on disk", c.Path)
		}
		perm := os.FileMode(0o644)
		if info, err := os.Stat(f.Path); err == nil {
			perm = info.Mode().Perm()
		}
		if err := os.WriteFile(f.Path, c.After, perm); err != nil {
			return n, fmt.Errorf("write %s: %w", f.Path, err)
		}
		n++
	}
	return n, nil
}
