package linked

import (
	"fmt"
	"slices"
	"strings"
)

// Fill replaces every position of group gi in text with value, the way an
// editor in linked mode does when the user picks an alternative. It returns
// the new text with the groups and the end offset shifted accordingly.
func Fill(text string, groups []ResolvedGroup, gi int, value string, end int) (string, []ResolvedGroup, int, error) {
	if gi < 0 || gi >= len(groups) {
		return "", nil, 0, fmt.Errorf("linked: no group %d", gi)
	}
	target := slices.Clone(groups[gi].Positions)
	slices.SortFunc(target, func(a, b Position) int { return a.Offset - b.Offset })
	for i, p := range target {
		if p.Offset < 0 || p.End() > len(text) || (i > 0 && p.Offset < target[i-1].End()) {
			return "", nil, 0, fmt.Errorf("linked: group %q has an invalid position %d+%d", groups[gi].Name, p.Offset, p.Length)
		}
	}

	var sb strings.Builder
	last := 0
	for _, p := range target {
		sb.WriteString(text[last:p.Offset])
		sb.WriteString(value)
		last = p.End()
	}
	sb.WriteString(text[last:])

	shift := func(off int) int {
		d := 0
		for _, p := range target {
			if p.End() <= off {
				d += len(value) - p.Length
			}
		}
		return off + d
	}
	out := make([]ResolvedGroup, len(groups))
	for i, g := range groups {
		ng := ResolvedGroup{Name: g.Name, Alternatives: g.Alternatives, Positions: make([]Position, len(g.Positions))}
		for j, p := range g.Positions {
			np := Position{Offset: shift(p.Offset), Length: p.Length, Primary: p.Primary}
			if i == gi {
				np.Length = len(value)
			}
			ng.Positions[j] = np
		}
		out[i] = ng
	}
	return sb.String(), out, shift(end), nil
}
