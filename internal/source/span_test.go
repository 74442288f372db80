package source

import "testing"

func TestSpanPredicates(t *testing.T) {
	outer := Span{File: 1, Start: 10, End: 20}
	tests := []struct {
		name       string
		other      Span
		covers     bool
		intersects bool
	}{
		{"inside", Span{File: 1, Start: 12, End: 15}, true, true},
		{"same", outer, true, true},
		{"overlap left", Span{File: 1, Start: 5, End: 11}, false, true},
		{"touching end", Span{File: 1, Start: 20, End: 25}, false, false},
		{"empty at end", Span{File: 1, Start: 20, End: 20}, true, true},
		{"other file", Span{File: 2, Start: 12, End: 15}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Covers(tt.other); got != tt.covers {
				t.Errorf("Covers(%s) = %v, want %v", tt.other, got, tt.covers)
			}
			if got := outer.Intersects(tt.other); got != tt.intersects {
				t.Errorf("Intersects(%s) = %v, want %v", tt.other, got, tt.intersects)
			}
		})
	}
}

func TestSpanContainsIncludesEnd(t *testing.T) {
	sp := Span{Start: 3, End: 6}
	for _, off := range []uint32{3, 4, 6} {
		if !sp.Contains(off) {
			t.Errorf("expected %d to be inside %s", off, sp)
		}
	}
	if sp.Contains(7) || sp.Contains(2) {
		t.Errorf("unexpected containment outside %s", sp)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	got := a.Cover(b)
	if got.Start != 2 || got.End != 8 {
		t.Fatalf("Cover = %s, want 1:2-8", got)
	}
	if a.Cover(Span{File: 2, Start: 0, End: 100}) != a {
		t.Fatalf("Cover across files must keep the receiver")
	}
}
