package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/store"
	"github.com/sadopc/habitr/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTrackers
	viewCalendar
	viewStats
	viewSettings
)

var viewNames = []string{"Dashboard", "Trackers", "Calendar", "Stats", "Settings"}

// --- Messages ---

// loadedMsg arrives once the repository has read the stored collection.
type loadedMsg struct {
	err error
}

// trackersMsg carries a fresh snapshot after the collection changed.
type trackersMsg struct {
	trackers []tracker.Tracker
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path  string
	count int
}

type settingsDataMsg struct {
	settings []store.Setting
}

// openCalendarMsg switches to the calendar for one tracker.
type openCalendarMsg struct {
	id string
}

// --- Helpers ---

func formatRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

// swatch renders text in an option's colors.
func swatch(o tracker.Option, text string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(o.Color)).
		Foreground(lipgloss.Color(o.TextColor)).
		Render(text)
}

func dot(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

func errStatus(format string, args ...any) statusMsg {
	return statusMsg{text: fmt.Sprintf(format, args...), isError: true}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
