package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/tracker"
)

type calendarModel struct {
	repo   *tracker.Repository
	clock  stats.Clock
	width  int
	height int

	trackers  []tracker.Tracker
	index     int
	weekStart time.Weekday
	cursor    time.Time // midnight of the selected day

	picking    bool
	pickCursor int
}

func newCalendarModel(repo *tracker.Repository, clock stats.Clock) calendarModel {
	return calendarModel{
		repo:      repo,
		clock:     clock,
		weekStart: time.Monday,
		cursor:    midnight(clock.Now()),
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func parseWeekStart(s string) time.Weekday {
	if strings.EqualFold(s, "sunday") {
		return time.Sunday
	}
	return time.Monday
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c *calendarModel) setWeekStart(s string) {
	c.weekStart = parseWeekStart(s)
}

func (c *calendarModel) setTrackers(ts []tracker.Tracker) {
	c.trackers = ts
	if c.index >= len(ts) {
		c.index = max(0, len(ts)-1)
	}
}

func (c calendarModel) current() (tracker.Tracker, bool) {
	if c.index < 0 || c.index >= len(c.trackers) {
		return tracker.Tracker{}, false
	}
	return c.trackers[c.index], true
}

// focus selects the tracker with id and puts the cursor in its displayed
// year.
func (c *calendarModel) focus(id string) {
	for i, t := range c.trackers {
		if t.ID == id {
			c.index = i
			c.picking = false
			c.alignCursor(t)
			return
		}
	}
}

// alignCursor moves the cursor into t's displayed year: today when that
// is the current year, otherwise the first of January.
func (c *calendarModel) alignCursor(t tracker.Tracker) {
	today := midnight(c.clock.Now())
	if t.CurrentDate == 0 || t.CurrentDate == today.Year() {
		c.cursor = today
		return
	}
	c.cursor = time.Date(t.CurrentDate, time.January, 1, 0, 0, 0, 0, today.Location())
}

func (c calendarModel) capturing() bool {
	return c.picking
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	msg2, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	t, ok := c.current()
	if !ok {
		return c, nil
	}
	if c.picking {
		return c.updatePicker(msg2, t)
	}

	switch {
	case key.Matches(msg2, keys.Left):
		return c, c.moveTo(t, c.cursor.AddDate(0, 0, -1))
	case key.Matches(msg2, keys.Right):
		return c, c.moveTo(t, c.cursor.AddDate(0, 0, 1))
	case key.Matches(msg2, keys.Up):
		return c, c.moveTo(t, c.cursor.AddDate(0, 0, -7))
	case key.Matches(msg2, keys.Down):
		return c, c.moveTo(t, c.cursor.AddDate(0, 0, 7))
	case key.Matches(msg2, keys.PrevMonth):
		return c, c.moveTo(t, c.cursor.AddDate(0, -1, 0))
	case key.Matches(msg2, keys.NextMonth):
		return c, c.moveTo(t, c.cursor.AddDate(0, 1, 0))
	case key.Matches(msg2, keys.PrevYear):
		return c, c.moveTo(t, c.cursor.AddDate(-1, 0, 0))
	case key.Matches(msg2, keys.NextYear):
		return c, c.moveTo(t, c.cursor.AddDate(1, 0, 0))
	case key.Matches(msg2, keys.NextTracker):
		c.index = (c.index + 1) % len(c.trackers)
		c.alignCursor(c.trackers[c.index])
	case key.Matches(msg2, keys.Enter):
		c.picking = true
		c.pickCursor = 0
		if v, ok := t.Value(c.date()); ok {
			for i, o := range t.Options {
				if o.Label == v {
					c.pickCursor = i
				}
			}
		}
	case key.Matches(msg2, keys.Unset):
		date := c.cursor.Format(tracker.DateLayout)
		if _, ok := t.Value(date); !ok {
			return c, nil
		}
		if err := c.repo.UnsetTrackerValue(t.ID, c.cursor.Year(), date); err != nil {
			return c, func() tea.Msg { return errStatus("Unset failed: %v", err) }
		}
		return c, refreshCmd(c.repo)
	}
	return c, nil
}

func (c calendarModel) date() string {
	return c.cursor.Format(tracker.DateLayout)
}

// moveTo sets the cursor and, when it crosses into another year, makes
// that year the tracker's displayed one.
func (c *calendarModel) moveTo(t tracker.Tracker, day time.Time) tea.Cmd {
	c.cursor = midnight(day)
	if c.cursor.Year() == t.CurrentDate {
		return nil
	}
	if err := c.repo.SwitchYear(t, c.cursor.Year()); err != nil {
		return func() tea.Msg { return errStatus("Switch year failed: %v", err) }
	}
	return refreshCmd(c.repo)
}

func (c calendarModel) updatePicker(msg tea.KeyMsg, t tracker.Tracker) (calendarModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		c.picking = false
	case key.Matches(msg, keys.Up):
		if c.pickCursor > 0 {
			c.pickCursor--
		}
	case key.Matches(msg, keys.Down):
		if c.pickCursor < len(t.Options)-1 {
			c.pickCursor++
		}
	case key.Matches(msg, keys.Enter):
		c.picking = false
		if c.pickCursor >= len(t.Options) {
			return c, nil
		}
		label := t.Options[c.pickCursor].Label
		if err := c.repo.SetTrackerValue(t.ID, c.cursor.Year(), c.date(), label); err != nil {
			return c, func() tea.Msg { return errStatus("Set failed: %v", err) }
		}
		return c, refreshCmd(c.repo)
	}
	return c, nil
}

func (c calendarModel) view() string {
	w := c.width - 4
	t, ok := c.current()
	if !ok {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Calendar"), "", mutedStyle.Render("No trackers yet. Press 2 to create one."),
		))
	}

	name := accentStyle.Render(t.Name)
	month := highlightStyle.Render(c.cursor.Format("January 2006"))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Calendar"), "  ", name, "  ", month)

	var side string
	if c.picking {
		side = c.renderPicker(t)
	} else {
		side = c.renderDay(t)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, c.renderGrid(t), "    ", side)
	nav := mutedStyle.Render("  arrows: day  </>: month  [/]: year  t: next tracker  enter: set  x: clear")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", c.renderLegend(t), "", nav),
	)
}

func (c calendarModel) renderGrid(t tracker.Tracker) string {
	var rows []string

	var names []string
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(c.weekStart) + i) % 7)
		names = append(names, cellStyle.Render(wd.String()[:2]))
	}
	rows = append(rows, strings.Join(names, ""))

	first := time.Date(c.cursor.Year(), c.cursor.Month(), 1, 0, 0, 0, 0, c.cursor.Location())
	lead := (int(first.Weekday()) - int(c.weekStart) + 7) % 7
	today := midnight(c.clock.Now())

	var line []string
	for i := 0; i < lead; i++ {
		line = append(line, cellStyle.Render(""))
	}
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		line = append(line, c.renderCell(t, d, today))
		if len(line) == 7 {
			rows = append(rows, strings.Join(line, ""))
			line = nil
		}
	}
	if len(line) > 0 {
		rows = append(rows, strings.Join(line, ""))
	}
	return strings.Join(rows, "\n")
}

func (c calendarModel) renderCell(t tracker.Tracker, d, today time.Time) string {
	style := cellStyle
	if d.Equal(today) {
		style = todayCellStyle.Width(4).Align(lipgloss.Center)
	}
	if label, ok := t.Value(d.Format(tracker.DateLayout)); ok {
		o := t.Appearance(label)
		style = style.Background(lipgloss.Color(o.Color)).Foreground(lipgloss.Color(o.TextColor))
	}
	if d.Equal(c.cursor) {
		style = style.Inherit(cursorCellStyle)
	}
	return style.Render(fmt.Sprintf("%d", d.Day()))
}

func (c calendarModel) renderDay(t tracker.Tracker) string {
	rows := []string{titleStyle.Render(c.cursor.Format("Mon, Jan 2 2006")), ""}
	if label, ok := t.Value(c.date()); ok {
		o := t.Appearance(label)
		rows = append(rows, swatch(o, " "+label+" "))
		if _, known := t.OptionByLabel(label); !known {
			rows = append(rows, mutedStyle.Render("option no longer exists"))
		}
	} else {
		rows = append(rows, mutedStyle.Render("not set"))
	}
	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("%d entries in %d", len(t.Data[c.cursor.Year()]), c.cursor.Year())))
	return strings.Join(rows, "\n")
}

func (c calendarModel) renderPicker(t tracker.Tracker) string {
	rows := []string{titleStyle.Render("Set " + c.date()), ""}
	for i, o := range t.Options {
		cursor := "  "
		if i == c.pickCursor {
			cursor = "> "
		}
		rows = append(rows, cursor+swatch(o, " "+o.Label+" "))
	}
	rows = append(rows, "", mutedStyle.Render("enter: set  esc: cancel"))
	return strings.Join(rows, "\n")
}

func (c calendarModel) renderLegend(t tracker.Tracker) string {
	var items []string
	for _, o := range t.Options {
		items = append(items, fmt.Sprintf("%s %s", dot(o.Color), o.Label))
	}
	return "  " + strings.Join(items, "  ")
}
