package lsp

import "testing"

func TestApplyChanges(t *testing.T) {
	text := "one\ntwo\n"
	got := applyChanges(text, []textDocumentContentChangeEvent{
		{Range: &lspRange{Start: position{Line: 0, Character: 0}, End: position{Line: 0, Character: 0}}, Text: "// "},
		{Range: &lspRange{Start: position{Line: 1, Character: 0}, End: position{Line: 1, Character: 3}}, Text: "2"},
	})
	if got != "// one\n2\n" {
		t.Fatalf("got %q", got)
	}
	if got := applyChanges(text, []textDocumentContentChangeEvent{{Text: "full"}}); got != "full" {
		t.Fatalf("full replace = %q", got)
	}
}
