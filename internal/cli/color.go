package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/palette"
	"github.com/sadopc/habitr/internal/tracker"
)

var (
	primaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Fallback))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F39C12"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2EC4B6"))
	silentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	textStyle    = lipgloss.NewStyle()
)

func Primary(text string) string { return primaryStyle.Render(text) }
func Error(text string) string   { return errorStyle.Render(text) }
func Warning(text string) string { return warningStyle.Render(text) }
func Info(text string) string    { return infoStyle.Render(text) }
func Silent(text string) string  { return silentStyle.Render(text) }
func Text(text string) string    { return textStyle.Render(text) }

// Chip renders an option label in its own colors.
func Chip(o tracker.Option) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(o.Color)).
		Foreground(lipgloss.Color(o.TextColor)).
		Render(" " + o.Label + " ")
}
