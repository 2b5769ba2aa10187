package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/masonry/types"
)

// HistoryModel is a Bubble Tea model for browsing past pipeline runs.
// The left pane lists runs newest-first; the right pane shows stage
// timings and lint findings for the selected run.
type HistoryModel struct {
	records  []types.RunRecord
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates a history model over the given records.
// Records are expected newest-first.
func NewHistoryModel(records []types.RunRecord) HistoryModel {
	return HistoryModel{records: records}
}

// Init implements tea.Model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	if len(m.records) == 0 {
		return BoxStyle.Render("No runs recorded yet.") + "\n" +
			HelpStyle.Render("Press q or Ctrl+C to quit")
	}

	list := m.renderList()
	detail := m.renderDetail(m.records[m.cursor])

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	help := HelpStyle.Render("↑/↓ select · q quit")
	return body + "\n" + help
}

func (m HistoryModel) renderList() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run History"))
	b.WriteString("\n\n")

	for i, rec := range m.records {
		marker := "✓"
		if !rec.Success {
			marker = "✗"
		}
		line := fmt.Sprintf("%s %s %s/%s",
			VerdictStyle(rec.Success).Render(marker),
			rec.StartedAt.Format("01-02 15:04"),
			rec.Pipeline, rec.Preset)

		if i == m.cursor {
			line = SelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return BoxStyle.Render(b.String())
}

func (m HistoryModel) renderDetail(rec types.RunRecord) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run Details"))
	b.WriteString("\n\n")

	verdict := "succeeded"
	if !rec.Success {
		verdict = fmt.Sprintf("failed (exit %d)", rec.ExitCode)
	}

	rows := [][]string{
		{"Run ID", rec.RunID},
		{"Pipeline", string(rec.Pipeline)},
		{"Preset", rec.Preset},
		{"Started At", rec.StartedAt.Format("2006-01-02 15:04:05")},
		{"Duration", fmt.Sprintf("%dms", rec.DurationMs)},
		{"Verdict", verdict},
	}

	for _, row := range rows {
		label := LabelStyle.Render(row[0] + ":")
		value := row[1]
		if row[0] == "Verdict" {
			value = VerdictStyle(rec.Success).Render(value)
		} else {
			value = ValueStyle.Render(value)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, value))
	}

	if len(rec.Stages) > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Stages"))
		b.WriteString("\n")
		for _, st := range rec.Stages {
			style := SuccessStyle
			if !st.Success() {
				style = ErrorStyle
			}
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render("  "+string(st.Stage)+":"),
				style.Render(fmt.Sprintf("exit %d in %s", st.ExitCode, st.Duration))))
		}
	}

	if rec.IssueCount > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render(fmt.Sprintf("Lint Findings (%d)", rec.IssueCount)))
		b.WriteString("\n")
		for _, freq := range sortedChecks(rec.IssuesByCheck) {
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render("  "+freq.check+":"),
				WarningStyle.Render(fmt.Sprintf("%d", freq.count))))
		}
	}

	return BoxStyle.Render(b.String())
}

type checkFreq struct {
	check string
	count int
}

// sortedChecks orders check names by descending count, name ascending on ties.
func sortedChecks(byCheck map[string]int) []checkFreq {
	freqs := make([]checkFreq, 0, len(byCheck))
	for check, count := range byCheck {
		freqs = append(freqs, checkFreq{check: check, count: count})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].count != freqs[j].count {
			return freqs[i].count > freqs[j].count
		}
		return freqs[i].check < freqs[j].check
	})
	return freqs
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
	Up   key.Binding
	Down key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

// RunHistoryTUI runs the history browser TUI.
func RunHistoryTUI(viewType string, data any) error {
	records, ok := data.([]types.RunRecord)
	if !ok {
		return fmt.Errorf("invalid data type for %s", viewType)
	}
	model := NewHistoryModel(records)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderHistoryStatic renders history data without full TUI (for fallback).
func RenderHistoryStatic(records []types.RunRecord) string {
	model := NewHistoryModel(records)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
