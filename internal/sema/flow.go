package sema

import (
	"maps"

	"mend/internal/symbols"
)

// flowState tracks definite assignment of locals declared without an
// initializer. Locals that are not tracked count as assigned.
type flowState struct {
	tracked  map[*symbols.Symbol]bool
	assigned map[*symbols.Symbol]bool
}

func newFlowState() flowState {
	return flowState{
		tracked:  make(map[*symbols.Symbol]bool),
		assigned: make(map[*symbols.Symbol]bool),
	}
}

func (f flowState) fork() flowState {
	return flowState{tracked: f.tracked, assigned: maps.Clone(f.assigned)}
}

func (f flowState) track(sym *symbols.Symbol) { f.tracked[sym] = true }

func (f flowState) assign(sym *symbols.Symbol) {
	if f.tracked[sym] {
		f.assigned[sym] = true
	}
}

func (f flowState) isAssigned(sym *symbols.Symbol) bool {
	return !f.tracked[sym] || f.assigned[sym]
}

// meet keeps what is assigned on both paths. A path that cannot complete
// normally does not constrain the result.
func meet(a flowState, aLive bool, b flowState, bLive bool) flowState {
	switch {
	case !aLive && !bLive:
		return a
	case !aLive:
		return b
	case !bLive:
		return a
	}
	out := flowState{tracked: a.tracked, assigned: make(map[*symbols.Symbol]bool)}
	for sym := range a.assigned {
		if b.assigned[sym] {
			out.assigned[sym] = true
		}
	}
	return out
}

// jumpFrame belongs to the innermost loop or switch and collects the states
// at its unlabeled breaks.
type jumpFrame struct {
	entry  flowState
	breaks []flowState
}

func (c *checker) pushJumps(entry flowState) *jumpFrame {
	fr := &jumpFrame{entry: entry.fork()}
	c.jumps = append(c.jumps, fr)
	return fr
}

func (c *checker) popJumps() { c.jumps = c.jumps[:len(c.jumps)-1] }
