package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ra-leaderboard-service/service/leaderboard"
	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/scoring"
)

type column struct {
	title string
	width int
	value func(e leaderboard.Entry) string
}

var columns = []column{
	{"Rank", 5, func(e leaderboard.Entry) string { return fmt.Sprint(e.Rank) }},
	{"RA", 18, func(e leaderboard.Entry) string { return e.DisplayName }},
	{"Total", 6, func(e leaderboard.Entry) string { return fmt.Sprintf("%d/%d", e.TotalScore, models.MaxTotalScore) }},
	{"Sched", 6, func(e leaderboard.Entry) string { return fmt.Sprint(e.ScheduleScore) }},
	{"Qual", 5, func(e leaderboard.Entry) string { return fmt.Sprint(e.QualityScore) }},
	{"Compl", 6, func(e leaderboard.Entry) string { return fmt.Sprint(e.CompletionScore) }},
	{"Manual", 7, func(e leaderboard.Entry) string {
		return fmt.Sprintf("%d/%d/%d", e.JournalScore, e.FeedbackScore, e.TeamScore)
	}},
	{"Interviews", 10, func(e leaderboard.Entry) string { return fmt.Sprint(e.TotalInterviews) }},
	{"Complete%", 9, func(e leaderboard.Entry) string { return pct(e.PctComplete) }},
	{"Clean%", 7, func(e leaderboard.Entry) string { return pct(e.PctNoQualityFlags) }},
	{"OnTime%", 7, func(e leaderboard.Entry) string { return pct(e.PctWithin1416Days) }},
}

// tableRenderer 终端排行榜
type tableRenderer struct {
	rubric *scoring.Rubric
	header lipgloss.Style
	title  lipgloss.Style
	winner lipgloss.Style
	cell   lipgloss.Style
}

func newTableRenderer(color bool, rubric *scoring.Rubric) *tableRenderer {
	r := &tableRenderer{
		rubric: rubric,
		header: lipgloss.NewStyle().Bold(true),
		title:  lipgloss.NewStyle().Bold(true),
		winner: lipgloss.NewStyle(),
		cell:   lipgloss.NewStyle(),
	}
	if color {
		r.header = r.header.Foreground(lipgloss.Color("12")) // blue
		r.title = r.title.Foreground(lipgloss.Color("10"))   // green
		r.winner = r.winner.Foreground(lipgloss.Color("3"))  // yellow
	}
	return r
}

// Render 标题 + 冠军 + 表格
func (r *tableRenderer) Render(lb *leaderboard.Leaderboard) string {
	var b strings.Builder

	title := fmt.Sprintf("RA of the Month - %s (%s ~ %s)", lb.Period.Label, lb.Period.StartDate, lb.Period.EndDate)
	b.WriteString(r.title.Render(title))
	b.WriteString("\n")

	if lb.Winner != nil {
		line := fmt.Sprintf("%s: %s (%d/%d)", lb.Winner.Title, lb.Winner.DisplayName, lb.Winner.TotalScore, lb.MaxScore)
		if lb.Winner.Note != "" {
			line += " - " + lb.Winner.Note
		}
		b.WriteString(r.winner.Render(line))
		b.WriteString("\n")
		r.writeBreakdown(&b, lb.Winner.Entry)
	}
	b.WriteString("\n")

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = r.header.Width(c.width).Render(c.title)
	}
	b.WriteString(strings.TrimRight(strings.Join(headers, " "), " "))
	b.WriteString("\n")

	for _, e := range lb.Entries {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = r.cell.Width(c.width).Render(truncate(c.value(e), c.width))
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		b.WriteString("\n")
	}
	return b.String()
}

// writeBreakdown 冠军各类别得分及细则说明
func (r *tableRenderer) writeBreakdown(b *strings.Builder, e leaderboard.Entry) {
	if r.rubric == nil {
		return
	}
	for _, s := range []struct {
		key   string
		score int
	}{
		{"schedule", e.ScheduleScore},
		{"quality", e.QualityScore},
		{"completion", e.CompletionScore},
		{"journal", e.JournalScore},
		{"feedback", e.FeedbackScore},
		{"team", e.TeamScore},
	} {
		title := s.key
		if c, ok := r.rubric.Category(s.key); ok {
			title = c.Title
		}
		fmt.Fprintf(b, "  %-22s %d/5  %s\n", title, s.score, r.rubric.Describe(s.key, s.score))
	}
}

// pct 不可用的指标按0%显示
func pct(m models.Metric) string {
	return fmt.Sprintf("%d%%", m.Int())
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
