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

type dashboardModel struct {
	clock  stats.Clock
	width  int
	height int

	period   stats.Period
	trackers []tracker.Tracker
	overview stats.Overview

	chart barchart.Model
}

func newDashboardModel(clock stats.Clock, period stats.Period) dashboardModel {
	return dashboardModel{
		clock:  clock,
		period: period,
		chart:  barchart.New(60, 10),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.rebuild()
}

func (d *dashboardModel) setTrackers(ts []tracker.Tracker) {
	d.trackers = ts
	d.rebuild()
}

func (d *dashboardModel) setPeriod(p stats.Period) {
	d.period = p
	d.rebuild()
}

func (d *dashboardModel) rebuild() {
	d.overview = stats.Dashboard(d.trackers, d.period, d.clock.Now())
	d.buildChart()
}

// cyclePeriod steps through stats.Periods by delta, wrapping around.
func cyclePeriod(p stats.Period, delta int) stats.Period {
	n := len(stats.Periods)
	for i, known := range stats.Periods {
		if known == p {
			return stats.Periods[((i+delta)%n+n)%n]
		}
	}
	return stats.PeriodWeek
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			d.setPeriod(cyclePeriod(d.period, -1))
		case key.Matches(msg, keys.Right):
			d.setPeriod(cyclePeriod(d.period, 1))
		}
	}
	return d, nil
}

// barColor is the color of the tracker's most common option, if any.
func (d dashboardModel) barColor(s stats.Summary) lipgloss.Color {
	for _, t := range d.trackers {
		if t.ID != s.TrackerID || !s.HasMost {
			continue
		}
		if o, ok := t.OptionByLabel(s.MostCommon); ok {
			return lipgloss.Color(o.Color)
		}
	}
	return colorPrimary
}

func (d *dashboardModel) buildChart() {
	chartWidth := max(d.width-8, 20)
	chartHeight := 10
	if d.height > 30 {
		chartHeight = 14
	}

	d.chart = barchart.New(chartWidth, chartHeight)
	if len(d.overview.Trackers) == 0 {
		return
	}

	var bars []barchart.BarData
	for _, s := range d.overview.Trackers {
		bars = append(bars, barchart.BarData{
			Label: truncate(s.Name, 8),
			Values: []barchart.BarValue{{
				Name:  s.Name,
				Value: s.Rate,
				Style: lipgloss.NewStyle().Foreground(d.barColor(s)),
			}},
		})
	}
	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	title := titleStyle.Render("Dashboard")
	periodLabel := highlightStyle.Render(d.period.Label())
	header := fmt.Sprintf("%s  %s", title, periodLabel)

	if len(d.overview.Trackers) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No trackers on the dashboard. Press 2 to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	overall := fmt.Sprintf("Overall completion  %s", successStyle.Render(formatRate(d.overview.Overall)))

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-22s %8s %9s  %s", "Tracker", "Rate", "Entries", "Most common")))
	for _, s := range d.overview.Trackers {
		most := mutedStyle.Render("—")
		if s.HasMost {
			most = s.MostCommon
		}
		rows = append(rows, fmt.Sprintf("  %-22s %8s %9s  %s",
			truncate(s.Name, 22), formatRate(s.Rate), fmt.Sprintf("%d/%d", s.Entries, s.Possible), most))
	}

	nav := mutedStyle.Render("  ←/→: period")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, overall, "", d.chart.View(), "", strings.Join(rows, "\n"), "", nav,
		),
	)
}
