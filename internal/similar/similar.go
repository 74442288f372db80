// Package similar ranks existing names by how likely they are what a
// misspelt reference meant.
package similar

import (
	"cmp"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Normalize puts name in NFC and folds its case.
func Normalize(name string) string {
	return folder.String(norm.NFC.String(name))
}

// Distance is the optimal-string-alignment edit distance between a and b:
// insertions, deletions, substitutions and transpositions of adjacent runes
// each cost one. Both names are normalised first.
func Distance(a, b string) int {
	ra, rb := []rune(Normalize(a)), []rune(Normalize(b))
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	// три строки матрицы: i-2, i-1, i
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d = min(d, prev2[j-2]+1)
			}
			cur[j] = d
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(rb)]
}

// Threshold is the largest distance at which a candidate still counts as
// similar to name: a third of its length, at least one.
func Threshold(name string) int {
	return max(1, len([]rune(Normalize(name)))/3)
}

// Match is a ranked candidate.
type Match struct {
	Name     string
	Distance int
}

// Rank returns the candidates within Threshold(name) of name, nearest first
// and then by name. Exact spellings of name and duplicates are dropped.
func Rank(name string, candidates []string) []Match {
	limit := Threshold(name)
	seen := make(map[string]bool, len(candidates))
	var out []Match
	for _, c := range candidates {
		if c == name || c == "" || seen[c] {
			continue
		}
		seen[c] = true
		if d := Distance(name, c); d <= limit {
			out = append(out, Match{Name: c, Distance: d})
		}
	}
	slices.SortFunc(out, func(a, b Match) int {
		return cmp.Or(cmp.Compare(a.Distance, b.Distance), cmp.Compare(a.Name, b.Name))
	})
	return out
}

// Best returns at most n names from Rank.
func Best(name string, candidates []string, n int) []string {
	ranked := Rank(name, candidates)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, m := range ranked {
		out[i] = m.Name
	}
	return out
}
