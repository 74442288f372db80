package diagfmt

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/linked"
	"mend/internal/preview"
	"mend/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file" yaml:"file"`
	StartByte uint32 `json:"start_byte" yaml:"start_byte"`
	EndByte   uint32 `json:"end_byte" yaml:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty" yaml:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty" yaml:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message" yaml:"message"`
	Location LocationJSON `json:"location" yaml:"location"`
}

// EditJSON is one text edit of a proposal.
type EditJSON struct {
	Location    LocationJSON `json:"location" yaml:"location"`
	NewText     string       `json:"new_text" yaml:"new_text"`
	OldText     string       `json:"old_text,omitempty" yaml:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty" yaml:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty" yaml:"after_lines,omitempty"`
}

// ProposalJSON is a quick-fix or quick-assist. Group positions and End are
// offsets in the file after the edits are applied.
type ProposalJSON struct {
	Index     int                    `json:"index" yaml:"index"`
	ID        string                 `json:"id" yaml:"id"`
	Label     string                 `json:"label" yaml:"label"`
	Kind      string                 `json:"kind" yaml:"kind"`
	Code      string                 `json:"code,omitempty" yaml:"code,omitempty"`
	Relevance int                    `json:"relevance" yaml:"relevance"`
	Edits     []EditJSON             `json:"edits" yaml:"edits"`
	Groups    []linked.ResolvedGroup `json:"linked,omitempty" yaml:"linked,omitempty"`
	End       int                    `json:"end" yaml:"end"`
	Diff      string                 `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string         `json:"severity" yaml:"severity"`
	Code     string         `json:"code" yaml:"code"`
	Message  string         `json:"message" yaml:"message"`
	Location *LocationJSON  `json:"location,omitempty" yaml:"location,omitempty"`
	Notes    []NoteJSON     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Fixes    []ProposalJSON `json:"fixes,omitempty" yaml:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics" yaml:"diagnostics"`
	Count       int              `json:"count" yaml:"count"`
}

// ProposalsOutput is the document printed by `mend assist --output json|yaml`.
type ProposalsOutput struct {
	File      string         `json:"file" yaml:"file"`
	Offset    uint32         `json:"offset" yaml:"offset"`
	Length    uint32         `json:"length" yaml:"length"`
	Proposals []ProposalJSON `json:"proposals" yaml:"proposals"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	f := fs.Get(span.File)
	if f == nil {
		return LocationJSON{StartByte: span.Start, EndByte: span.End}
	}
	loc := LocationJSON{
		File:      pathMode.path(f, fs),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildProposal converts p; index is its 1-based position in the listing.
func BuildProposal(fs *source.FileSet, index int, p *correction.Proposal, opts JSONOpts) ProposalJSON {
	out := ProposalJSON{
		Index:     index,
		ID:        p.RuleID,
		Label:     p.Label,
		Kind:      p.Kind.String(),
		Relevance: p.Relevance,
		Edits:     make([]EditJSON, 0, len(p.Edits)),
		Groups:    p.Groups,
		End:       p.End,
	}
	if p.Kind == correction.KindFix {
		out.Code = p.Code.ID()
	}
	for _, e := range p.Edits {
		out.Edits = append(out.Edits, EditJSON{
			Location: makeLocation(e.Span, fs, opts.PathMode, opts.IncludePositions),
			NewText:  e.NewText,
			OldText:  e.OldText,
		})
	}
	if opts.IncludePreviews {
		if pv, err := buildEditPreview(fs, p.EditsFor(p.File)); err == nil {
			for i := range out.Edits {
				if p.Edits[i].Span.File == p.File {
					out.Edits[i].BeforeLines = pv.before
					out.Edits[i].AfterLines = pv.after
					break
				}
			}
		}
		if rendered, err := preview.Proposal(fs, p); err == nil {
			out.Diff = string(rendered)
		}
	}
	return out
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(ds []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	n := len(ds)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, n)
	for i := range n {
		d := &ds[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
		}
		if !isIO(d.Code) {
			loc := makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions)
			dj.Location = &loc
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				})
			}
		}
		if opts.IncludeFixes && opts.Fixes != nil {
			for k, p := range opts.Fixes(d) {
				dj.Fixes = append(dj.Fixes, BuildProposal(fs, k+1, &p, opts))
			}
		}
		diagnostics = append(diagnostics, dj)
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// BuildProposalsOutput converts the answer to one assist request.
func BuildProposalsOutput(fs *source.FileSet, file source.FileID, offset, length uint32, ps []correction.Proposal, opts JSONOpts) ProposalsOutput {
	out := ProposalsOutput{Offset: offset, Length: length, Proposals: make([]ProposalJSON, 0, len(ps))}
	if f := fs.Get(file); f != nil {
		out.File = opts.PathMode.path(f, fs)
	}
	for i := range ps {
		out.Proposals = append(out.Proposals, BuildProposal(fs, i+1, &ps[i], opts))
	}
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, ds []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) error {
	return WriteJSON(w, BuildDiagnosticsOutput(ds, fs, opts))
}

// WriteJSON writes v indented.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
