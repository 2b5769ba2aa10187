package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/masonry/types"
)

// RunStats aggregates run history into headline counters.
type RunStats struct {
	Total       int   `json:"total"`
	Succeeded   int   `json:"succeeded"`
	Failed      int   `json:"failed"`
	TotalIssues int   `json:"total_issues"`
	AvgMs       int64 `json:"avg_ms"`
}

// ComputeRunStats derives stats from a set of run records.
func ComputeRunStats(records []types.RunRecord) RunStats {
	var stats RunStats
	var totalMs int64

	for _, rec := range records {
		stats.Total++
		if rec.Success {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
		stats.TotalIssues += rec.IssueCount
		totalMs += rec.DurationMs
	}
	if stats.Total > 0 {
		stats.AvgMs = totalMs / int64(stats.Total)
	}
	return stats
}

// StatsModel is a Bubble Tea model for the run stats view.
type StatsModel struct {
	stats    RunStats
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(stats RunStats) StatsModel {
	return StatsModel{stats: stats}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Pipeline Statistics"))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Total", m.stats.Total, highlightColor),
		m.renderStatBox("Succeeded", m.stats.Succeeded, successColor),
		m.renderStatBox("Failed", m.stats.Failed, errorColor),
		m.renderStatBox("Issues", m.stats.TotalIssues, warningColor),
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))

	if m.stats.Total > 0 {
		avg := time.Duration(m.stats.AvgMs) * time.Millisecond
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Avg duration:"),
			ValueStyle.Render(avg.String())))
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func (m StatsModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(viewType string, data any) error {
	var stats RunStats
	switch d := data.(type) {
	case RunStats:
		stats = d
	case []types.RunRecord:
		stats = ComputeRunStats(d)
	default:
		return fmt.Errorf("invalid data type for %s", viewType)
	}

	model := NewStatsModel(stats)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders stats data without full TUI (for fallback).
func RenderStatsStatic(stats RunStats) string {
	model := NewStatsModel(stats)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
