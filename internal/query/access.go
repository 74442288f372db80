package query

import (
	"mend/internal/ast"
	"mend/internal/token"
)

// Access classifies how a name reference uses its variable.
type Access uint8

const (
	AccessNone Access = iota
	AccessRead
	AccessWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "none"
	}
}

// ClassifyAccess inspects the parents of a name: assignment targets and
// increment/decrement operands are writes, qualifier positions are neither,
// anything else reads.
func ClassifyAccess(t *ast.Tree, name ast.NodeID) Access {
	cur := name
	for parent := t.Parent(cur); parent != ast.NoNodeID; cur, parent = parent, t.Parent(parent) {
		switch t.Location(cur) {
		case ast.QualifiedQualifier, ast.FieldAccessReceiver, ast.CallReceiver:
			return AccessNone
		case ast.QualifiedNameName, ast.FieldAccessName:
			continue
		case ast.AssignLHS:
			return AccessWrite
		case ast.FragmentName, ast.ParamName:
			return AccessWrite
		case ast.PostfixOperand:
			return AccessWrite
		case ast.PrefixOperand:
			op := t.Node(parent).Op
			if op == token.PlusPlus || op == token.MinusMinus {
				return AccessWrite
			}
			return AccessRead
		default:
			return AccessRead
		}
	}
	return AccessRead
}

// IsWriteAccess reports whether name is written at its position.
func IsWriteAccess(t *ast.Tree, name ast.NodeID) bool {
	return ClassifyAccess(t, name) == AccessWrite
}

// IsCompoundWrite reports writes that also read the old value (x += 1, x++).
func IsCompoundWrite(t *ast.Tree, name ast.NodeID) bool {
	if !IsWriteAccess(t, name) {
		return false
	}
	top := name
	for t.Location(top) == ast.QualifiedNameName || t.Location(top) == ast.FieldAccessName {
		top = t.Parent(top)
	}
	parent := t.Parent(top)
	switch t.Kind(parent) {
	case ast.KindAssign:
		return t.Node(parent).Op != token.Assign
	case ast.KindPrefix, ast.KindPostfix:
		return true
	default:
		return false
	}
}
