package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/driver"
	"mend/internal/linked"
	"mend/internal/source"
)

func pickerFixture(t *testing.T) (*source.FileSet, []correction.Proposal) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.java", []byte("int x = 1;\n"))
	named := correction.Proposal{
		RuleID: "extract-local",
		Kind:   correction.KindAssist,
		Label:  "Extract to local variable",
		File:   id,
		Edits:  []diag.TextEdit{{Span: source.Span{File: id}, NewText: "int tmp = 2;\n"}},
		Groups: []linked.ResolvedGroup{{
			Name:         "name",
			Positions:    []linked.Position{{Offset: 4, Length: 3, Primary: true}},
			Alternatives: []string{"a", "b"},
		}},
		End: 0,
	}
	plain := correction.Proposal{
		RuleID: "remove-unused",
		Kind:   correction.KindAssist,
		Label:  "Remove declaration",
		File:   id,
		Edits:  []diag.TextEdit{{Span: source.Span{File: id, Start: 0, End: 11}, NewText: ""}},
		End:    -1,
	}
	return fs, []correction.Proposal{named, plain}
}

func TestApplyFillsLinkedValues(t *testing.T) {
	fs, ps := pickerFixture(t)
	changes, err := Apply(fs, &ps[0], map[string]string{"name": "count"})
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 {
		t.Fatalf("changes = %d", len(changes))
	}
	if got := string(changes[0].After); got != "int count = 2;\nint x = 1;\n" {
		t.Fatalf("after = %q", got)
	}

	changes, err = Apply(fs, &ps[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(changes[0].After); got != "int tmp = 2;\nint x = 1;\n" {
		t.Fatalf("unfilled after = %q", got)
	}
}

func press(m *Picker, k tea.KeyType) {
	m.Update(tea.KeyMsg{Type: k})
}

func TestPickerCyclesAlternatives(t *testing.T) {
	fs, ps := pickerFixture(t)
	m := NewPicker(fs, ps)

	press(m, tea.KeyRight)
	press(m, tea.KeyRight)
	press(m, tea.KeyEnter)
	want := Selection{Index: 0, Values: map[string]string{"name": "b"}}
	if diff := cmp.Diff(want, m.Selection()); diff != "" {
		t.Fatalf("selection (-want +got):\n%s", diff)
	}

	// третье нажатие возвращает сгенерированный текст
	m = NewPicker(fs, ps)
	press(m, tea.KeyRight)
	press(m, tea.KeyRight)
	press(m, tea.KeyRight)
	press(m, tea.KeyEnter)
	if sel := m.Selection(); sel.Index != 0 || sel.Values != nil {
		t.Fatalf("selection = %+v", sel)
	}
}

func TestPickerMoveAndCancel(t *testing.T) {
	fs, ps := pickerFixture(t)
	m := NewPicker(fs, ps)
	press(m, tea.KeyDown)
	press(m, tea.KeyDown)
	if !strings.Contains(m.View(), "> ") {
		t.Fatal("no cursor rendered")
	}
	press(m, tea.KeyEnter)
	if sel := m.Selection(); sel.Index != 1 {
		t.Fatalf("selection = %+v", sel)
	}

	m = NewPicker(fs, ps)
	press(m, tea.KeyEsc)
	if sel := m.Selection(); sel.Index != -1 {
		t.Fatalf("cancel = %+v", sel)
	}
}

func TestPickerViewShowsDiffAndGroups(t *testing.T) {
	fs, ps := pickerFixture(t)
	m := NewPicker(fs, ps)
	view := m.View()
	for _, want := range []string{"2 proposals", "Extract to local variable", "= (as generated)", "int tmp = 2;"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestProgressModelTracksEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("checking", []string{"A.java"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "A.java", Stage: driver.StageParse, Status: driver.StatusWorking})
	if m.items[0].status != "parsing" {
		t.Fatalf("status = %q", m.items[0].status)
	}
	m.applyEvent(driver.Event{File: "B.java", Stage: driver.StageLoad, Status: driver.StatusError, Err: errors.New("denied")})
	m.applyEvent(driver.Event{File: "A.java", Stage: driver.StageCheck, Status: driver.StatusDone})
	if len(m.items) != 2 || m.failures != 1 {
		t.Fatalf("items = %+v, failures = %d", m.items, m.failures)
	}
	if got := m.percent(); got != 1.0 {
		t.Fatalf("percent = %v", got)
	}
	if !strings.Contains(m.View(), "B.java") {
		t.Fatal("late file not rendered")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a/very/long/path.java", 10, "a/very/..."},
		{"abcdef", 3, "abc"},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.width); got != c.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", c.in, c.width, got, c.want)
		}
	}
}
