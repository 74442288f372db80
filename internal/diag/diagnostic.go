package diag

import (
	"mend/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces Span with NewText. OldText, when set, guards the edit:
// it is applied only if the buffer still holds exactly that text.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	// Args carries code-specific string arguments (unresolved name, exception type, ...).
	Args []string
}

// Arg returns the i-th argument or "".
func (d *Diagnostic) Arg(i int) string {
	if d == nil || i < 0 || i >= len(d.Args) {
		return ""
	}
	return d.Args[i]
}

func New(sev Severity, code Code, primary source.Span, msg string, args ...string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
		Args:     args,
	}
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
