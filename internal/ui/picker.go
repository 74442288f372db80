package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mend/internal/correction"
	"mend/internal/linked"
	"mend/internal/preview"
	"mend/internal/source"
)

// Selection is the outcome of the picker.
type Selection struct {
	// Index of the chosen proposal, -1 when the user cancelled.
	Index int
	// Values holds the alternative picked for each linked group by name.
	// Groups left at their generated text are absent.
	Values map[string]string
}

// Apply computes the changes of p with the linked values filled into the
// request file. Nothing is written.
func Apply(fs *source.FileSet, p *correction.Proposal, values map[string]string) ([]preview.Change, error) {
	changes, err := preview.Changes(fs, p)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return changes, nil
	}
	for i := range changes {
		if changes[i].File != p.File {
			continue
		}
		text, groups, end := string(changes[i].After), p.Groups, p.End
		for gi := range groups {
			v, ok := values[groups[gi].Name]
			if !ok {
				continue
			}
			text, groups, end, err = linked.Fill(text, groups, gi, v, end)
			if err != nil {
				return nil, err
			}
		}
		changes[i].After = []byte(text)
	}
	return changes, nil
}

type pickerKeys struct {
	Up, Down, NextGroup, NextAlt, PrevAlt, Apply, Quit key.Binding
	PageUp, PageDown                                   key.Binding
}

func (k pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextGroup, k.NextAlt, k.Apply, k.Quit}
}

func (k pickerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.PrevAlt, k.PageUp, k.PageDown}}
}

var defaultPickerKeys = pickerKeys{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	NextGroup: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	NextAlt:   key.NewBinding(key.WithKeys("right", "l", " "), key.WithHelp("→/space", "next value")),
	PrevAlt:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "previous value")),
	Apply:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
	PageUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll diff")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll diff")),
}

var (
	pickerTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	pickerCursor   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	pickerDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pickerFocus    = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("3"))
	pickerAdded    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	pickerRemoved  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	pickerHunk     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	pickerErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Picker lists proposals, previews the selected one as a diff and lets the
// user cycle the alternatives of its linked groups.
type Picker struct {
	fs        *source.FileSet
	proposals []correction.Proposal
	cursor    int
	group     int
	// choice[i][g] is the alternative index of group g of proposal i, -1 for
	// the generated text.
	choice   [][]int
	view     viewport.Model
	keys     pickerKeys
	help     help.Model
	width    int
	selected Selection
}

// NewPicker returns a picker over ps, which must not be empty.
func NewPicker(fs *source.FileSet, ps []correction.Proposal) *Picker {
	choice := make([][]int, len(ps))
	for i := range ps {
		choice[i] = make([]int, len(ps[i].Groups))
		for g := range choice[i] {
			choice[i][g] = -1
		}
	}
	m := &Picker{
		fs:        fs,
		proposals: ps,
		choice:    choice,
		view:      viewport.New(80, 16),
		keys:      defaultPickerKeys,
		help:      help.New(),
		width:     80,
		selected:  Selection{Index: -1},
	}
	m.refresh()
	return m
}

// Selection returns what the user picked once the program has finished.
func (m *Picker) Selection() Selection { return m.selected }

func (m *Picker) Init() tea.Cmd { return nil }

func (m *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-len(m.proposals)-6, 4)
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Apply):
			m.selected = Selection{Index: m.cursor, Values: m.values(m.cursor)}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.NextGroup):
			if n := len(m.proposals[m.cursor].Groups); n > 0 {
				m.group = (m.group + 1) % n
			}
		case key.Matches(msg, m.keys.NextAlt):
			m.cycle(1)
		case key.Matches(msg, m.keys.PrevAlt):
			m.cycle(-1)
		default:
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Picker) move(d int) {
	next := m.cursor + d
	if next < 0 || next >= len(m.proposals) {
		return
	}
	m.cursor = next
	m.group = 0
	m.refresh()
}

// cycle steps the focused group through its alternatives and back to the
// generated text.
func (m *Picker) cycle(d int) {
	groups := m.proposals[m.cursor].Groups
	if len(groups) == 0 || len(groups[m.group].Alternatives) == 0 {
		return
	}
	n := len(groups[m.group].Alternatives) + 1
	cur := m.choice[m.cursor][m.group] + 1
	m.choice[m.cursor][m.group] = (cur+d+n)%n - 1
	m.refresh()
}

func (m *Picker) values(i int) map[string]string {
	var out map[string]string
	for g, alt := range m.choice[i] {
		if alt < 0 {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		grp := m.proposals[i].Groups[g]
		out[grp.Name] = grp.Alternatives[alt]
	}
	return out
}

func (m *Picker) refresh() {
	p := &m.proposals[m.cursor]
	changes, err := Apply(m.fs, p, m.values(m.cursor))
	var rendered []byte
	if err == nil {
		rendered, err = preview.Render(changes)
	}
	if err != nil {
		m.view.SetContent(pickerErrStyle.Render(err.Error()))
		return
	}
	m.view.SetContent(colorDiff(string(rendered)))
	m.view.GotoTop()
}

func colorDiff(text string) string {
	if text == "" {
		return pickerDim.Render("(no textual change)")
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			lines[i] = pickerTitle.Render(l)
		case strings.HasPrefix(l, "@@"):
			lines[i] = pickerHunk.Render(l)
		case strings.HasPrefix(l, "+"):
			lines[i] = pickerAdded.Render(l)
		case strings.HasPrefix(l, "-"):
			lines[i] = pickerRemoved.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Picker) View() string {
	var b strings.Builder
	b.WriteString(pickerTitle.Render(fmt.Sprintf("%d proposals", len(m.proposals))))
	b.WriteString("\n\n")

	labelWidth := 0
	for i := range m.proposals {
		labelWidth = max(labelWidth, runewidth.StringWidth(m.proposals[i].Label))
	}
	labelWidth = min(labelWidth, max(m.width-30, 20))
	for i := range m.proposals {
		p := &m.proposals[i]
		label := runewidth.FillRight(truncate(p.Label, labelWidth), labelWidth)
		meta := pickerDim.Render(fmt.Sprintf("%s %d", p.Kind, p.Relevance))
		if i == m.cursor {
			fmt.Fprintf(&b, "%s %s  %s\n", pickerCursor.Render(">"), pickerCursor.Render(label), meta)
		} else {
			fmt.Fprintf(&b, "  %s  %s\n", label, meta)
		}
	}

	if groups := m.proposals[m.cursor].Groups; len(groups) > 0 {
		b.WriteString("\n")
		for g, grp := range groups {
			value := "(as generated)"
			if alt := m.choice[m.cursor][g]; alt >= 0 {
				value = grp.Alternatives[alt]
			}
			name := grp.Name
			if g == m.group {
				name = pickerFocus.Render(name)
			}
			fmt.Fprintf(&b, "  %s = %s %s\n", name, value, pickerDim.Render(fmt.Sprintf("[%d alternatives]", len(grp.Alternatives))))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Pick runs the picker on in/out and returns the user's choice.
func Pick(ctx context.Context, fs *source.FileSet, ps []correction.Proposal, in io.Reader, out io.Writer) (Selection, error) {
	if len(ps) == 0 {
		return Selection{Index: -1}, nil
	}
	program := tea.NewProgram(NewPicker(fs, ps),
		tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return Selection{Index: -1}, fmt.Errorf("picker: %w", err)
	}
	return final.(*Picker).Selection(), nil
}
