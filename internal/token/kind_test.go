package token

import "testing"

func TestKeywordsRoundTrip(t *testing.T) {
	for text, kind := range keywords {
		if !kind.IsKeyword() {
			t.Errorf("%q maps to %v which is not in the keyword range", text, kind)
		}
		if kind.String() != text {
			t.Errorf("String() for %q = %q", text, kind.String())
		}
	}
	if _, ok := LookupKeyword("Class"); ok {
		t.Errorf("keywords are case sensitive")
	}
}

func TestKindClassifiers(t *testing.T) {
	if !KwInt.IsPrimitiveType() || KwVoid.IsPrimitiveType() {
		t.Errorf("primitive classification is wrong")
	}
	if !KwFinal.IsModifier() || KwClass.IsModifier() {
		t.Errorf("modifier classification is wrong")
	}
	if !UshrAssign.IsAssignOp() || EqEq.IsAssignOp() {
		t.Errorf("assignment classification is wrong")
	}
	if Ellipsis.String() != "..." {
		t.Errorf("Ellipsis.String() = %q", Ellipsis.String())
	}
}
