package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestReportFoldsRepeatedPhases(t *testing.T) {
	tm := NewTimer()
	tm.End(tm.Begin("parse"), "")
	tm.End(tm.Begin("check"), "units=1")
	tm.End(tm.Begin("parse"), "diags=2")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.Phases[0].Name != "parse" || r.Phases[0].Count != 2 || r.Phases[0].Note != "diags=2" {
		t.Errorf("parse = %+v", r.Phases[0])
	}
	if r.Phases[1].Name != "check" || r.Phases[1].Count != 1 {
		t.Errorf("check = %+v", r.Phases[1])
	}
	if s := tm.Summary(); !strings.Contains(s, "parse x2") || !strings.Contains(s, "total") {
		t.Errorf("summary:\n%s", s)
	}
}

func TestMeasureNotesErrors(t *testing.T) {
	tm := NewTimer()
	boom := errors.New("boom")
	if err := tm.Measure("apply", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Measure = %v", err)
	}
	if r := tm.Report(); r.Phases[0].Note != "error" {
		t.Fatalf("note = %q", r.Phases[0].Note)
	}
	tm.End(42, "ignored")
	if (&Timer{}).Report().Phases != nil {
		t.Fatal("empty timer reported phases")
	}
}
