package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
)

type settingsModel struct {
	ctx    context.Context
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dashboardPeriod *string
	weekStart       *string
	exportDir       *string
}

func newSettingsModel(ctx context.Context, s *store.Store) settingsModel {
	dp, ws, ed := "", "", ""
	return settingsModel{
		ctx:             ctx,
		store:           s,
		dashboardPeriod: &dp,
		weekStart:       &ws,
		exportDir:       &ed,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.AllSettings(s.ctx)
		if err != nil {
			return errStatus("Settings error: %v", err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.dashboardPeriod = s.getVal(store.SettingDashboardPeriod, string(stats.PeriodWeek))
	*s.weekStart = s.getVal(store.SettingWeekStart, "monday")
	*s.exportDir = s.getVal(store.SettingExportDir, "")

	periods := make([]huh.Option[string], len(stats.Periods))
	for i, p := range stats.Periods {
		periods[i] = huh.NewOption(p.Label(), string(p))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Dashboard period").
				Options(periods...).
				Value(s.dashboardPeriod),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
			huh.NewInput().Title("Export directory").
				Description("Leave empty for your home directory").
				Value(s.exportDir),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg { return errStatus("Save failed: %v", err) }
		}
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := map[string]string{
		store.SettingDashboardPeriod: *s.dashboardPeriod,
		store.SettingWeekStart:       *s.weekStart,
		store.SettingExportDir:       *s.exportDir,
	}
	for k, v := range values {
		if err := s.store.SetSetting(s.ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(s.ctx, k)
	if err != nil {
		return fallback
	}
	return v
}

// settingValue looks k up in a settings snapshot.
func settingValue(settings []store.Setting, k string) (string, bool) {
	for _, st := range settings {
		if st.Key == k {
			return st.Value, true
		}
	}
	return "", false
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingDashboardPeriod:
		if p, err := stats.ParsePeriod(v); err == nil {
			return p.Label()
		}
	case store.SettingExportDir:
		if v == "" {
			return "~"
		}
	}
	return v
}
