package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/tracker"
)

type statsModel struct {
	clock  stats.Clock
	width  int
	height int

	trackers []tracker.Tracker
	index    int
	period   stats.Period
	summary  stats.Summary

	chart barchart.Model
}

func newStatsModel(clock stats.Clock, period stats.Period) statsModel {
	return statsModel{
		clock:  clock,
		period: period,
		chart:  barchart.New(60, 12),
	}
}

func (r *statsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.rebuild()
}

func (r *statsModel) setTrackers(ts []tracker.Tracker) {
	r.trackers = ts
	if r.index >= len(ts) {
		r.index = max(0, len(ts)-1)
	}
	r.rebuild()
}

// focus selects the tracker with id, if present.
func (r *statsModel) focus(id string) {
	for i, t := range r.trackers {
		if t.ID == id {
			r.index = i
			r.rebuild()
			return
		}
	}
}

func (r statsModel) current() (tracker.Tracker, bool) {
	if r.index < 0 || r.index >= len(r.trackers) {
		return tracker.Tracker{}, false
	}
	return r.trackers[r.index], true
}

func (r *statsModel) rebuild() {
	t, ok := r.current()
	if !ok {
		r.summary = stats.Summary{}
		r.chart = barchart.New(max(r.width-8, 20), 12)
		return
	}
	r.summary = stats.Summarize(t, r.period, r.clock.Now())
	r.buildChart()
}

func (r statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	msg2, ok := msg.(tea.KeyMsg)
	if !ok || len(r.trackers) == 0 {
		return r, nil
	}
	n := len(r.trackers)
	switch {
	case key.Matches(msg2, keys.Left):
		r.index = (r.index - 1 + n) % n
		r.rebuild()
	case key.Matches(msg2, keys.Right):
		r.index = (r.index + 1) % n
		r.rebuild()
	case key.Matches(msg2, keys.Tab):
		r.period = cyclePeriod(r.period, 1)
		r.rebuild()
	}
	return r, nil
}

func (r *statsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, c := range r.summary.Counts {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Option.Color))
		bars = append(bars, barchart.BarData{
			Label: truncate(c.Option.Label, 8),
			Values: []barchart.BarValue{{
				Name:  c.Option.Label,
				Value: float64(c.Count),
				Style: style,
			}},
		})
	}
	if len(bars) == 0 {
		return
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r statsModel) view() string {
	w := r.width - 4

	// Period tabs
	var tabs []string
	for _, p := range stats.Periods {
		if p == r.period {
			tabs = append(tabs, activeTabStyle.Render(p.Label()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(p.Label()))
		}
	}
	periodTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	t, ok := r.current()
	if !ok {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Stats"), "", mutedStyle.Render("No trackers yet."),
		))
	}

	name := accentStyle.Render(t.Name)
	position := mutedStyle.Render(fmt.Sprintf("(%d/%d)", r.index+1, len(r.trackers)))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Stats"), "  ", name, " ", position)

	s := r.summary
	most := mutedStyle.Render("—")
	if s.HasMost {
		most = swatch(t.Appearance(s.MostCommon), " "+s.MostCommon+" ")
	}
	facts := strings.Join([]string{
		fmt.Sprintf("  Completion   %s", successStyle.Render(formatRate(s.Rate))),
		fmt.Sprintf("  Entries      %d of %d", s.Entries, s.Possible),
		fmt.Sprintf("  Most common  %s", most),
	}, "\n")

	nav := mutedStyle.Render("  ←/→: tracker  tab: period")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, periodTabs, "", facts, "", r.chart.View(), "", r.renderCounts(w), "", nav,
		),
	)
}

func (r statsModel) renderCounts(w int) string {
	if r.summary.Entries == 0 {
		return mutedStyle.Render("  No entries for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %8s", "Option", "Count")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 30))))
	for _, c := range r.summary.Counts {
		rows = append(rows, fmt.Sprintf("  %s %-18s %8d",
			dot(c.Option.Color), truncate(c.Option.Label, 18), c.Count))
	}
	if hidden := r.excludedLabels(); len(hidden) > 0 {
		rows = append(rows, "", mutedStyle.Render("  Not counted: "+strings.Join(hidden, ", ")))
	}
	return strings.Join(rows, "\n")
}

func (r statsModel) excludedLabels() []string {
	t, _ := r.current()
	var out []string
	for _, o := range t.Options {
		if o.ExcludeFromSummary {
			out = append(out, o.Label)
		}
	}
	return out
}
