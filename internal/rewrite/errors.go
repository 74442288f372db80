package rewrite

import (
	"errors"
	"fmt"

	"mend/internal/ast"
)

// ErrUsage marks a malformed edit script: conflicting operations, a move
// consumed twice, an edit nobody renders.
var ErrUsage = errors.New("rewrite: usage error")

// UsageError is reported by Compile for a programming error in the code that
// recorded the operations.
type UsageError struct {
	Op     string
	Node   ast.NodeID
	Reason string
}

func (e *UsageError) Error() string {
	if e.Node == ast.NoNodeID {
		return fmt.Sprintf("rewrite: %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("rewrite: %s node %d: %s", e.Op, e.Node, e.Reason)
}

func (e *UsageError) Unwrap() error { return ErrUsage }

func usage(op string, node ast.NodeID, format string, args ...any) *UsageError {
	return &UsageError{Op: op, Node: node, Reason: fmt.Sprintf(format, args...)}
}
