package similar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"count", "count", 0},
		{"count", "coutn", 1},
		{"count", "cont", 1},
		{"count", "counts", 1},
		{"count", "mount", 1},
		{"Count", "count", 0},
		{"ca", "abc", 3},
		{"café", "café", 0},
		{"length", "size", 6},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := Distance(c.b, c.a); got != c.want {
			t.Errorf("Distance(%q, %q) = %d, want %d (symmetry)", c.b, c.a, got, c.want)
		}
	}
}

func TestThreshold(t *testing.T) {
	for name, want := range map[string]int{"i": 1, "abc": 1, "abcdef": 2, "counter": 2, "veryLongName": 4} {
		if got := Threshold(name); got != want {
			t.Errorf("Threshold(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestRankOrdersByDistanceThenName(t *testing.T) {
	got := Rank("countr", []string{"counter", "count", "county", "countr", "total", "count", "Countr"})
	want := []Match{
		{Name: "Countr", Distance: 0},
		{Name: "count", Distance: 1},
		{Name: "counter", Distance: 1},
		{Name: "county", Distance: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Rank mismatch (-want +got):\n%s", diff)
	}
	if best := Best("countr", []string{"counter", "count", "county"}, 2); !cmp.Equal(best, []string{"count", "counter"}) {
		t.Fatalf("Best = %v", best)
	}
}
