package ast

import (
	"testing"

	"mend/internal/source"
	"mend/internal/token"
)

// buildInfix строит дерево для "a + b" вручную.
func buildInfix(t *testing.T) (*Tree, NodeID, NodeID, NodeID) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("x.java", []byte("a + b")))
	tr := NewTree(file, LangJava)
	a := tr.NewNode(KindName, source.Span{File: file.ID, Start: 0, End: 1})
	tr.Mutable(a).Text = "a"
	b := tr.NewNode(KindName, source.Span{File: file.ID, Start: 4, End: 5})
	tr.Mutable(b).Text = "b"
	sum := tr.NewNode(KindInfix, source.Span{File: file.ID, Start: 0, End: 5})
	tr.Mutable(sum).Op = token.Plus
	tr.Set(sum, InfixLeft, a)
	tr.Set(sum, InfixRight, b)
	tr.Root = sum
	return tr, sum, a, b
}

func TestTreeSlotsAndParents(t *testing.T) {
	tr, sum, a, b := buildInfix(t)
	if tr.Child(sum, InfixLeft) != a || tr.Child(sum, InfixRight) != b {
		t.Fatalf("children not stored")
	}
	if tr.Parent(a) != sum || tr.Location(b) != InfixRight {
		t.Fatalf("parent links wrong")
	}
	if got := tr.Dump(sum); got != "(Infix + (Name a) (Name b))" {
		t.Fatalf("Dump = %s", got)
	}
	if tr.Text(sum) != "a + b" {
		t.Fatalf("Text = %q", tr.Text(sum))
	}
}

func TestOverlayIsolatesBase(t *testing.T) {
	tr, sum, a, _ := buildInfix(t)
	ov := tr.Overlay()
	p := ov.NewNode(KindParen, source.Span{})
	if !ov.IsSynthetic(p) || ov.IsSynthetic(a) {
		t.Fatalf("IsSynthetic wrong")
	}
	if uint32(p) != tr.Len()+1 {
		t.Fatalf("overlay ids must continue after the base, got %d", p)
	}
	if ov.Node(sum) != tr.Node(sum) {
		t.Fatalf("overlay must read through to the base")
	}
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("adopting a base node must panic")
			}
		}()
		ov.Set(p, ParenExpr, a)
	}()
	if tr.Node(p) != nil {
		t.Fatalf("base must not see overlay nodes")
	}
}

func TestWalkStops(t *testing.T) {
	tr, sum, a, _ := buildInfix(t)
	var seen []NodeID
	completed := tr.Walk(sum, func(id NodeID, n *Node) Action {
		seen = append(seen, id)
		if id == a {
			return Stop
		}
		return Continue
	})
	if completed || len(seen) != 2 {
		t.Fatalf("walk did not stop: %v", seen)
	}
	if !tr.Any(sum, func(_ NodeID, n *Node) bool { return n.Text == "b" }) {
		t.Fatalf("Any missed b")
	}
}

func TestFinder(t *testing.T) {
	tr, sum, a, b := buildInfix(t)
	f := tr.Find(0, 1)
	if f.Covering != a || f.Covered != a {
		t.Fatalf("exact selection of a: %+v", f)
	}
	f = tr.Find(0, 5)
	if f.Covering != sum || f.Covered != sum {
		t.Fatalf("whole selection: %+v", f)
	}
	f = tr.Find(2, 0)
	if f.Covering != sum || f.Covered != NoNodeID {
		t.Fatalf("caret on operator: %+v", f)
	}
	f = tr.Find(2, 3)
	if f.Covering != sum || f.Covered != b {
		t.Fatalf("partial selection: %+v", f)
	}
}

func TestPrecedence(t *testing.T) {
	tr, sum, a, _ := buildInfix(t)
	if tr.Precedence(sum) != PrecAdditive || tr.Precedence(a) != PrecAtom {
		t.Fatalf("precedence wrong")
	}
	if !tr.NeedsParentheses(sum, OperandLimit(token.Star, false)) {
		t.Fatalf("a + b under * needs parentheses")
	}
	if tr.NeedsParentheses(sum, OperandLimit(token.Minus, false)) {
		t.Fatalf("left operand of - shares its level")
	}
	if !tr.NeedsParentheses(sum, OperandLimit(token.Minus, true)) {
		t.Fatalf("right operand of - must bind tighter")
	}
}

func TestModifiers(t *testing.T) {
	m := ModFinal | ModPublic | ModStatic
	if m.String() != "public static final" {
		t.Fatalf("String = %q", m.String())
	}
	if m.Visibility() != ModPublic {
		t.Fatalf("Visibility wrong")
	}
	if got, ok := ModifierFor(token.KwVolatile); !ok || got != ModVolatile {
		t.Fatalf("ModifierFor(volatile) = %v,%v", got, ok)
	}
}
