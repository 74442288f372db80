// Package linked is the interactive field model of a proposal: groups of
// ranges in the result text that are edited in lock-step, each with a list of
// alternative values, plus the cursor position after the proposal is applied.
//
// Rules record positions against nodes of their edit builder; Resolve maps
// them into the coordinates of the compiled script.
package linked

import (
	"fmt"

	"mend/internal/ast"
	"mend/internal/format"
)

// Tracker resolves builder nodes and original offsets into result
// coordinates. *rewrite.Script implements it.
type Tracker interface {
	Range(id ast.NodeID) (format.Range, bool)
	MapOffset(off uint32) int
	EditEnd() int
}

// Where selects the point of a node the end position refers to.
type Where uint8

const (
	// After is the end of the node.
	After Where = iota
	// Before is the start of the node.
	Before
	// Inside is just after the opening brace of a block-like node.
	Inside
)

type position struct {
	node    ast.NodeID
	primary bool
}

// Group is a named set of linked positions.
type Group struct {
	name      string
	positions []position
	alts      []string
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// AddPosition tracks node id. The primary occurrence is where the editor
// puts the cursor first.
func (g *Group) AddPosition(id ast.NodeID, primary bool) *Group {
	for _, p := range g.positions {
		if p.node == id {
			return g
		}
	}
	g.positions = append(g.positions, position{node: id, primary: primary})
	return g
}

// AddAlternative appends a value to the cycle list, skipping duplicates.
// The first alternative is the default.
func (g *Group) AddAlternative(value string) *Group {
	for _, a := range g.alts {
		if a == value {
			return g
		}
	}
	g.alts = append(g.alts, value)
	return g
}

// AddAlternatives appends several values in order.
func (g *Group) AddAlternatives(values ...string) *Group {
	for _, v := range values {
		g.AddAlternative(v)
	}
	return g
}

// Model collects the groups and the end position of one proposal.
type Model struct {
	groups []*Group
	end    ast.NodeID
	where  Where
	hasEnd bool
	// endOff — смещение в исходном тексте, если end не задан узлом
	endOff    uint32
	hasEndOff bool
}

// New returns an empty model.
func New() *Model { return &Model{} }

// Group returns the group called name, creating it on first use.
func (m *Model) Group(name string) *Group {
	for _, g := range m.groups {
		if g.name == name {
			return g
		}
	}
	g := &Group{name: name}
	m.groups = append(m.groups, g)
	return g
}

// SetEnd places the cursor at the given point of node id once the proposal is applied.
func (m *Model) SetEnd(id ast.NodeID, where Where) {
	m.end, m.where, m.hasEnd = id, where, true
	m.hasEndOff = false
}

// SetEndOffset places the cursor at an offset of the original text, mapped
// through the edits.
func (m *Model) SetEndOffset(off uint32) {
	m.endOff, m.hasEndOff = off, true
	m.hasEnd = false
}

// Empty reports whether the model has no groups and no end position.
func (m *Model) Empty() bool {
	return m == nil || (len(m.groups) == 0 && !m.hasEnd && !m.hasEndOff)
}

// Position is a resolved linked position.
type Position struct {
	Offset  int  `json:"offset" yaml:"offset"`
	Length  int  `json:"length" yaml:"length"`
	Primary bool `json:"primary,omitempty" yaml:"primary,omitempty"`
}

func (p Position) End() int { return p.Offset + p.Length }

// ResolvedGroup is a group in result coordinates.
type ResolvedGroup struct {
	Name         string     `json:"name" yaml:"name"`
	Positions    []Position `json:"positions" yaml:"positions"`
	Alternatives []string   `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

// Resolve maps every tracked node through tr. It returns the groups, in
// creation order with the primary position first, and the end offset; an
// unset end falls back to the end of the last edit. A position that did not
// survive compilation is an error.
func (m *Model) Resolve(tr Tracker) ([]ResolvedGroup, int, error) {
	end := tr.EditEnd()
	if m == nil {
		return nil, end, nil
	}
	var out []ResolvedGroup
	for _, g := range m.groups {
		if len(g.positions) == 0 {
			continue
		}
		rg := ResolvedGroup{Name: g.name, Alternatives: append([]string(nil), g.alts...)}
		for _, p := range g.positions {
			r, ok := tr.Range(p.node)
			if !ok {
				return nil, 0, fmt.Errorf("linked: group %q: node %d has no position in the result", g.name, p.node)
			}
			pos := Position{Offset: r.Start, Length: r.Len(), Primary: p.primary}
			if p.primary {
				rg.Positions = append([]Position{pos}, rg.Positions...)
			} else {
				rg.Positions = append(rg.Positions, pos)
			}
		}
		out = append(out, rg)
	}
	if m.hasEndOff {
		end = tr.MapOffset(m.endOff)
	}
	if m.hasEnd {
		r, ok := tr.Range(m.end)
		if !ok {
			return nil, 0, fmt.Errorf("linked: end node %d has no position in the result", m.end)
		}
		switch m.where {
		case Before:
			end = r.Start
		case Inside:
			end = r.Start + 1
		default:
			end = r.End
		}
	}
	return out, end, nil
}
