package fix

// todo: интеграция с git:
// По умолчанию создавать .bak только для незатрекинных файлов.
// Флаг --staged-only (работать по git diff --name-only --staged).

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"fortio.org/safecast"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/source"
)

// ErrNoFixes is returned when no proposal was applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines the selection strategy for proposals.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the best proposal of the first diagnostic.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies the best proposal of every diagnostic, skipping
	// the ones that conflict with edits already staged.
	ApplyModeAll
	// ApplyModeID applies, per diagnostic, the best proposal of one rule.
	ApplyModeID
)

// ApplyOptions configures how proposals are selected and written.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun computes the new contents without touching the disk. Virtual
	// files are only accepted in dry runs.
	DryRun bool
}

// Candidate is one proposal answering one diagnostic.
type Candidate struct {
	Diagnostic diag.Diagnostic
	Proposal   correction.Proposal
}

// Candidates pairs a diagnostic with every proposal computed for it.
func Candidates(d diag.Diagnostic, ps []correction.Proposal) []Candidate {
	out := make([]Candidate, 0, len(ps))
	for _, p := range ps {
		if p.Kind != correction.KindFix || p.Code != d.Code {
			continue
		}
		out = append(out, Candidate{Diagnostic: d, Proposal: p})
	}
	return out
}

// AppliedFix records a successfully applied proposal.
type AppliedFix struct {
	RuleID      string
	Label       string
	Code        diag.Code
	Message     string
	Relevance   int
	PrimaryPath string
	EditCount   int
}

// SkippedFix captures a skipped or failed proposal with a reason.
type SkippedFix struct {
	RuleID string
	Label  string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	File      source.FileID
	Path      string
	EditCount int
	Content   []byte
}

// ApplyResult aggregates applied proposals, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	Candidate
	order int
}

// ApplyProposals selects a subset of cands according to opts and applies
// them. Each proposal is staged on copies of the buffers and committed only
// when every one of its edits applied, so a rejected proposal leaves all
// files as they were.
func ApplyProposals(fs *source.FileSet, cands []Candidate, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates, buildSkips := gatherCandidates(cands)
	result.Skipped = append(result.Skipped, buildSkips...)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	applied, skippedDuringApply, changes, err := applyCandidates(fs, selected, opts)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, skippedDuringApply...)
	result.FileChanges = append(result.FileChanges, changes...)

	if err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates drops proposals without edits and duplicate rule ids
// for one diagnostic, and numbers the rest in input order.
func gatherCandidates(in []Candidate) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0, len(in))
	skips := make([]SkippedFix, 0)
	seen := make(map[string]bool)

	for i, c := range in {
		p := &c.Proposal
		if len(p.Edits) == 0 {
			skips = append(skips, SkippedFix{RuleID: p.RuleID, Label: p.Label, Reason: "proposal has no edits"})
			continue
		}
		key := fmt.Sprintf("%s@%d:%d:%d/%s/%s", c.Diagnostic.Code.ID(), c.Diagnostic.Primary.File,
			c.Diagnostic.Primary.Start, c.Diagnostic.Primary.End, p.RuleID, p.Label)
		if seen[key] {
			skips = append(skips, SkippedFix{RuleID: p.RuleID, Label: p.Label, Reason: "duplicate proposal"})
			continue
		}
		seen[key] = true
		cands = append(cands, candidate{Candidate: c, order: i})
	}
	return cands, skips
}

// sortCandidates orders candidates by diagnostic position (file, start,
// end, code), then by relevance descending, then by input order.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].Diagnostic, candidates[j].Diagnostic
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		pi, pj := candidates[i].Proposal, candidates[j].Proposal
		if pi.Relevance != pj.Relevance {
			return pi.Relevance > pj.Relevance
		}
		return candidates[i].order < candidates[j].order
	})
}

func sameProblem(a, b *candidate) bool {
	return a.Diagnostic.Code == b.Diagnostic.Code && a.Diagnostic.Primary == b.Diagnostic.Primary
}

// bestPerProblem keeps the first candidate of every diagnostic; the input
// is sorted so that is the most relevant one.
func bestPerProblem(candidates []candidate) []candidate {
	out := make([]candidate, 0, len(candidates))
	for i := range candidates {
		if len(out) > 0 && sameProblem(&out[len(out)-1], &candidates[i]) {
			continue
		}
		out = append(out, candidates[i])
	}
	return out
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		matching := make([]candidate, 0)
		for _, cand := range candidates {
			if cand.Proposal.RuleID == opts.TargetID {
				matching = append(matching, cand)
			}
		}
		if len(matching) == 0 {
			return nil, []SkippedFix{{RuleID: opts.TargetID, Reason: "rule id not found"}}
		}
		return bestPerProblem(matching), nil
	case ApplyModeAll:
		return bestPerProblem(candidates), nil
	case ApplyModeOnce:
		return candidates[:1], nil
	default:
		return nil, nil
	}
}

func applyCandidates(fs *source.FileSet, selected []candidate, opts ApplyOptions) ([]AppliedFix, []SkippedFix, []FileChange, error) {
	buffers := make(map[source.FileID][]byte)
	appliedEdits := make(map[source.FileID][]diag.TextEdit)
	fileEditCount := make(map[source.FileID]int)
	dirtyFiles := make(map[source.FileID]bool)

	applied := make([]AppliedFix, 0, len(selected))
	skipped := make([]SkippedFix, 0)

	baseDir := fs.BaseDir()

	for _, cand := range selected {
		p := &cand.Proposal
		buckets := groupEditsByFile(p.Edits)
		stagedBuffers := make(map[source.FileID][]byte)
		stagedApplied := make(map[source.FileID][]diag.TextEdit)
		stagedCount := make(map[source.FileID]int)
		totalEdits := 0
		var skipReason string

		for _, fileID := range sortedFiles(buckets) {
			edits := buckets[fileID]
			file := fs.Get(fileID)
			if file == nil {
				skipReason = fmt.Sprintf("unknown file %d", fileID)
				break
			}
			if file.Flags&source.FileVirtual != 0 && !opts.DryRun {
				skipReason = "target file is virtual"
				break
			}
			if conflictsWithExisting(appliedEdits[fileID], edits) {
				skipReason = fmt.Sprintf("conflicts with previously applied edits in %s", file.FormatPath("auto", baseDir))
				break
			}

			base := buffers[fileID]
			if base == nil {
				base = file.Content
			}
			working := append([]byte(nil), base...)

			// с конца файла, чтобы смещения ещё не применённых правок не съезжали
			sort.SliceStable(edits, func(i, j int) bool {
				if edits[i].Span.Start == edits[j].Span.Start {
					return edits[i].Span.End > edits[j].Span.End
				}
				return edits[i].Span.Start > edits[j].Span.Start
			})

			existingApplied := append([]diag.TextEdit(nil), appliedEdits[fileID]...)
			for _, edit := range edits {
				start := int(edit.Span.Start) + cumulativeDelta(appliedEdits[fileID], int(edit.Span.Start))
				end := int(edit.Span.End) + cumulativeDelta(appliedEdits[fileID], int(edit.Span.End))
				if start < 0 || end < start || end > len(working) {
					skipReason = "edit span out of range"
					break
				}
				if edit.OldText != "" && string(working[start:end]) != edit.OldText {
					skipReason = "existing text does not match expected content"
					break
				}
				suffix := append([]byte(nil), working[end:]...)
				working = append(append(working[:start], edit.NewText...), suffix...)
				existingApplied = insertEditSorted(existingApplied, edit)
			}
			if skipReason != "" {
				break
			}
			stagedBuffers[fileID] = working
			stagedApplied[fileID] = existingApplied
			stagedCount[fileID] = len(edits)
			totalEdits += len(edits)
		}

		if skipReason != "" {
			skipped = append(skipped, SkippedFix{RuleID: p.RuleID, Label: p.Label, Reason: skipReason})
			continue
		}

		for fileID, buf := range stagedBuffers {
			buffers[fileID] = buf
			appliedEdits[fileID] = stagedApplied[fileID]
			fileEditCount[fileID] += stagedCount[fileID]
			dirtyFiles[fileID] = true
		}

		applied = append(applied, AppliedFix{
			RuleID:      p.RuleID,
			Label:       p.Label,
			Code:        cand.Diagnostic.Code,
			Message:     cand.Diagnostic.Message,
			Relevance:   p.Relevance,
			PrimaryPath: formatFilePath(fs, cand.Diagnostic.Primary.File),
			EditCount:   totalEdits,
		})
	}

	if len(applied) == 0 {
		return applied, skipped, nil, nil
	}

	fileChanges := make([]FileChange, 0, len(dirtyFiles))
	for fileID := range dirtyFiles {
		buf := buffers[fileID]
		file := fs.Get(fileID)

		if !opts.DryRun {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(file.Path); err == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(file.Path, buf, mode); err != nil {
				return applied, skipped, fileChanges, fmt.Errorf("write %s: %w", file.Path, err)
			}
		}

		fileChanges = append(fileChanges, FileChange{
			File:      fileID,
			Path:      file.FormatPath("relative", baseDir),
			EditCount: fileEditCount[fileID],
			Content:   buf,
		})
	}

	sort.SliceStable(fileChanges, func(i, j int) bool {
		return fileChanges[i].Path < fileChanges[j].Path
	})

	return applied, skipped, fileChanges, nil
}

func conflictsWithExisting(existing []diag.TextEdit, edits []diag.TextEdit) bool {
	for _, prev := range existing {
		for _, cand := range edits {
			if spansConflict(prev, cand) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are treated as half-open intervals [Start, End). Two zero-length
// edits conflict only when they insert at the same offset, since their
// relative order would be ambiguous. A zero-length edit conflicts with a
// non-zero span if its position is within that span.
func spansConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return aStart == bStart
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

func groupEditsByFile(edits []diag.TextEdit) map[source.FileID][]diag.TextEdit {
	buckets := make(map[source.FileID][]diag.TextEdit)
	for _, edit := range edits {
		buckets[edit.Span.File] = append(buckets[edit.Span.File], edit)
	}
	return buckets
}

func sortedFiles(buckets map[source.FileID][]diag.TextEdit) []source.FileID {
	ids := make([]source.FileID, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b source.FileID) int { return cmp.Compare(a, b) })
	return ids
}

// cumulativeDelta is the length change that edits (in original offsets,
// sorted by start) cause before pos.
func cumulativeDelta(edits []diag.TextEdit, pos int) int {
	delta := 0
	for _, e := range edits {
		eStart := int(e.Span.Start)
		if eStart > pos {
			break
		}
		eEnd := int(e.Span.End)
		if eEnd <= pos {
			delta += len(e.NewText) - (eEnd - eStart)
		}
	}
	return delta
}

func insertEditSorted(edits []diag.TextEdit, edit diag.TextEdit) []diag.TextEdit {
	insertIdx := sort.Search(len(edits), func(i int) bool {
		if edits[i].Span.Start == edit.Span.Start {
			return edits[i].Span.End >= edit.Span.End
		}
		return edits[i].Span.Start > edit.Span.Start
	})
	edits = append(edits, diag.TextEdit{})
	copy(edits[insertIdx+1:], edits[insertIdx:])
	edits[insertIdx] = edit
	return edits
}

func formatFilePath(fs *source.FileSet, fileID source.FileID) string {
	file := fs.Get(fileID)
	if file == nil {
		return ""
	}
	return file.FormatPath("auto", fs.BaseDir())
}

// EditCount sums the edits of every change.
func (r *ApplyResult) EditCount() uint32 {
	total := 0
	for _, c := range r.FileChanges {
		total += c.EditCount
	}
	n, err := safecast.Conv[uint32](total)
	if err != nil {
		panic(fmt.Errorf("edit count overflow: %w", err))
	}
	return n
}
