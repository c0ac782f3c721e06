// Package tui is the interactive terminal front end: a Bubble Tea program
// with one tab per view over the tracker repository.
package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/sadopc/habitr/internal/export"
	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
	"github.com/sadopc/habitr/internal/tracker"
)

// Deps is everything the TUI needs from the outside.
type Deps struct {
	Store         *store.Store
	Repo          *tracker.Repository
	Clock         stats.Clock
	Log           zerolog.Logger
	ExportDir     string
	DefaultPeriod stats.Period
}

type importParsedMsg struct {
	path     string
	trackers []tracker.Tracker
	err      error
}

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	deps   Deps
	width  int
	height int

	loaded        bool
	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	importing   bool
	importForm  *huh.Form
	importPath  *string
	importBatch []tracker.Tracker
	importPlan  []tracker.PlanEntry

	dashboard dashboardModel
	trackers  trackersModel
	calendar  calendarModel
	stats     statsModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(ctx context.Context, deps Deps) App {
	if deps.Clock == nil {
		deps.Clock = stats.SystemClock{}
	}
	if deps.DefaultPeriod == "" {
		deps.DefaultPeriod = stats.PeriodWeek
	}
	h := help.New()
	h.ShowAll = false

	seed := uint64(deps.Clock.Now().UnixNano())
	rnd := rand.New(rand.NewPCG(seed, seed>>1))
	path := ""

	return App{
		ctx:        ctx,
		deps:       deps,
		activeView: viewDashboard,
		importPath: &path,
		dashboard:  newDashboardModel(deps.Clock, deps.DefaultPeriod),
		trackers:   newTrackersModel(deps.Repo, deps.Clock, rnd),
		calendar:   newCalendarModel(deps.Repo, deps.Clock),
		stats:      newStatsModel(deps.Clock, deps.DefaultPeriod),
		settings:   newSettingsModel(ctx, deps.Store),
		help:       h,
	}
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewApp(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.loadCmd(),
		a.settings.refresh(),
	)
}

func (a App) loadCmd() tea.Cmd {
	repo := a.deps.Repo
	ctx := a.ctx
	return func() tea.Msg {
		return loadedMsg{err: repo.Load(ctx)}
	}
}

// refreshCmd publishes a fresh snapshot of the collection.
func refreshCmd(repo *tracker.Repository) tea.Cmd {
	return func() tea.Msg {
		return trackersMsg{trackers: repo.Trackers()}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.trackers.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		if a.importing {
			return a.updateImport(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Import):
			return a.showImportForm()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTrackers
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewCalendar
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewStats
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab) && a.activeView != viewStats:
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	case loadedMsg:
		a.loaded = true
		if msg.err != nil {
			a.deps.Log.Error().Err(msg.err).Msg("load trackers")
			a.setStatus(errStatus("Load failed: %v", msg.err))
		}
		return a, refreshCmd(a.deps.Repo)

	case trackersMsg:
		a.dashboard.setTrackers(msg.trackers)
		a.trackers.setTrackers(msg.trackers)
		a.calendar.setTrackers(msg.trackers)
		a.stats.setTrackers(msg.trackers)
		return a, nil

	case settingsDataMsg:
		a.applySettings(msg.settings)
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case openCalendarMsg:
		a.activeView = viewCalendar
		a.calendar.focus(msg.id)
		a.stats.focus(msg.id)
		return a, nil

	case statusMsg:
		a.setStatus(msg)
		return a, nil

	case exportDoneMsg:
		a.setStatus(statusMsg{text: "Exported to " + msg.path})
		a.exportPicking = false
		return a, nil

	case importParsedMsg:
		return a.handleImportParsed(msg)
	}

	if a.importing && a.importForm != nil {
		return a.updateImportForm(msg)
	}
	return a.updateActiveView(msg)
}

func (a *App) setStatus(msg statusMsg) {
	a.status = msg.text
	a.statusErr = msg.isError
}

// applySettings pushes stored preferences into the views that use them.
func (a *App) applySettings(settings []store.Setting) {
	if v, ok := settingValue(settings, store.SettingDashboardPeriod); ok {
		if p, err := stats.ParsePeriod(v); err == nil {
			a.dashboard.setPeriod(p)
		}
	}
	if v, ok := settingValue(settings, store.SettingWeekStart); ok {
		a.calendar.setWeekStart(v)
	}
	if v, ok := settingValue(settings, store.SettingExportDir); ok {
		a.exportDir = v
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTrackers:
		a.trackers, cmd = a.trackers.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTrackers:
		return a.trackers.capturing()
	case viewCalendar:
		return a.calendar.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTrackers:
		content = a.trackers.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	switch {
	case !a.loaded:
		content = panelStyle.Width(a.width - 4).Render(mutedStyle.Render("Loading trackers..."))
	case a.exportPicking:
		content = a.renderExportPicker()
	case a.importing:
		content = a.renderImport()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("habitr")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	left := footerStyle.Render(helpView)
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(status)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

// --- Export ---

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  to "+a.exportTarget()))
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// exportTarget is the directory exports are written to: the export_dir
// setting, then the configured default, then the home directory.
func (a App) exportTarget() string {
	if a.exportDir != "" {
		return a.exportDir
	}
	if a.deps.ExportDir != "" {
		return a.deps.ExportDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func (a App) doExport(format export.Format) tea.Cmd {
	repo, clock, log := a.deps.Repo, a.deps.Clock, a.deps.Log
	dir := a.exportTarget()
	return func() tea.Msg {
		trackers := repo.Trackers()
		path := filepath.Join(dir, export.FileName(format, clock.Now()))
		if err := export.ToFile(path, format, trackers); err != nil {
			log.Error().Err(err).Str("path", path).Msg("export")
			return errStatus("Export error: %v", err)
		}
		log.Info().Str("path", path).Int("trackers", len(trackers)).Msg("exported")
		return exportDoneMsg{path: path, count: len(trackers)}
	}
}

// --- Import ---

func (a App) showImportForm() (tea.Model, tea.Cmd) {
	*a.importPath = ""
	a.importBatch = nil
	a.importPlan = nil
	a.importForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Import file").
				Description("A .json export or a .zip archive of them").
				Value(a.importPath).
				Validate(requireText("path")),
		),
	).WithShowHelp(true).WithShowErrors(true)
	a.importing = true
	return a, a.importForm.Init()
}

func (a App) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.importForm != nil {
		return a.updateImportForm(msg)
	}
	switch {
	case key.Matches(msg, keys.Confirm):
		a.importing = false
		batch := a.importBatch
		a.importBatch, a.importPlan = nil, nil
		if err := a.deps.Repo.ImportTrackers(batch); err != nil {
			return a, func() tea.Msg { return errStatus("Import failed: %v", err) }
		}
		a.setStatus(statusMsg{text: "Imported " + pluralTrackers(len(batch))})
		return a, refreshCmd(a.deps.Repo)
	case key.Matches(msg, keys.Back), msg.String() == "n":
		a.importing = false
		a.importBatch, a.importPlan = nil, nil
	}
	return a, nil
}

func (a App) updateImportForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		a.importing = false
		a.importForm = nil
		return a, nil
	}

	form, cmd := a.importForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.importForm = f
	}
	if a.importForm.State != huh.StateCompleted {
		return a, cmd
	}
	a.importForm = nil
	return a, a.parseImport(expandPath(*a.importPath))
}

func expandPath(p string) string {
	p = strings.TrimSpace(p)
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return p
}

func (a App) parseImport(path string) tea.Cmd {
	now := a.deps.Clock.Now()
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importParsedMsg{path: path, err: err}
		}
		defer f.Close()
		ts, err := export.ParseImport(f, now)
		return importParsedMsg{path: path, trackers: ts, err: err}
	}
}

func (a App) handleImportParsed(msg importParsedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.importing = false
		a.deps.Log.Warn().Err(msg.err).Str("path", msg.path).Msg("import rejected")
		a.setStatus(errStatus("Import failed: %v", msg.err))
		return a, nil
	}
	a.importBatch = msg.trackers
	a.importPlan = tracker.PlanImport(a.deps.Repo.Trackers(), msg.trackers)
	return a, nil
}

func pluralTrackers(n int) string {
	if n == 1 {
		return "1 tracker"
	}
	return fmt.Sprintf("%d trackers", n)
}

func (a App) renderImport() string {
	w := a.width - 4
	if a.importForm != nil {
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Import"), "", a.importForm.View()))
	}
	if a.importPlan == nil {
		return activePanelStyle.Width(w).Render(mutedStyle.Render("Reading file..."))
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Import "+pluralTrackers(len(a.importPlan))), "")
	for _, p := range a.importPlan {
		rows = append(rows, "  "+describePlanEntry(p))
	}
	if !tracker.ChangesAnything(a.importPlan) {
		rows = append(rows, "", mutedStyle.Render("  Nothing new in this file."))
	}
	rows = append(rows, "", mutedStyle.Render("  y: import  n/esc: cancel"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func describePlanEntry(p tracker.PlanEntry) string {
	if p.New {
		return successStyle.Render("new ") + p.Name + mutedStyle.Render(
			fmt.Sprintf(" %d options, %d dates", len(p.OptionsAdded), p.DatesAdded))
	}
	parts := []string{
		fmt.Sprintf("%d added", p.DatesAdded),
		fmt.Sprintf("%d overwritten", p.DatesOverwritten),
	}
	if len(p.OptionsAdded) > 0 {
		parts = append(parts, "new options: "+strings.Join(p.OptionsAdded, ", "))
	}
	return warningStyle.Render("merge ") + p.Name + mutedStyle.Render(" "+strings.Join(parts, ", "))
}
