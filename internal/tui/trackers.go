package tui

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/palette"
	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/tracker"
)

type trackersModel struct {
	repo   *tracker.Repository
	clock  stats.Clock
	rnd    *rand.Rand
	width  int
	height int

	trackers []tracker.Tracker // grouped by category
	cursor   int

	formActive bool
	form       *huh.Form
	formType   string // "new", "delete", "add_option", "rename"

	// Form field pointers (survive value copies)
	formName     *string
	formCategory *string
	formOptions  *string
	formExclude  *bool
	formConfirm  *bool

	// Draft editor state
	draft     *tracker.Draft
	optCursor int
	reviewing bool
	changes   tracker.Changes
}

func newTrackersModel(repo *tracker.Repository, clock stats.Clock, rnd *rand.Rand) trackersModel {
	name, cat, opts := "", "", ""
	exclude, confirm := false, false
	return trackersModel{
		repo:         repo,
		clock:        clock,
		rnd:          rnd,
		formName:     &name,
		formCategory: &cat,
		formOptions:  &opts,
		formExclude:  &exclude,
		formConfirm:  &confirm,
	}
}

func (p *trackersModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *trackersModel) setTrackers(ts []tracker.Tracker) {
	p.trackers = groupByCategory(ts)
	if p.cursor >= len(p.trackers) {
		p.cursor = max(0, len(p.trackers)-1)
	}
}

// capturing reports whether the view wants every key, including the
// global ones.
func (p trackersModel) capturing() bool {
	return p.formActive || p.draft != nil
}

func (p trackersModel) selected() (tracker.Tracker, bool) {
	if p.cursor < 0 || p.cursor >= len(p.trackers) {
		return tracker.Tracker{}, false
	}
	return p.trackers[p.cursor], true
}

// groupByCategory orders trackers by category in first-seen order, with
// uncategorized trackers last.
func groupByCategory(ts []tracker.Tracker) []tracker.Tracker {
	out := make([]tracker.Tracker, 0, len(ts))
	for _, c := range tracker.Categories(ts) {
		for _, t := range ts {
			if t.Category == c {
				out = append(out, t)
			}
		}
	}
	for _, t := range ts {
		if t.Category == "" {
			out = append(out, t)
		}
	}
	return out
}

func (p trackersModel) update(msg tea.Msg) (trackersModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	msg2, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	if p.draft != nil {
		return p.updateDraft(msg2)
	}
	return p.updateList(msg2)
}

func (p trackersModel) updateList(msg tea.KeyMsg) (trackersModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.trackers)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if t, ok := p.selected(); ok {
			return p, func() tea.Msg { return openCalendarMsg{id: t.ID} }
		}
	case key.Matches(msg, keys.New):
		return p.showNewTrackerForm()
	case key.Matches(msg, keys.Edit):
		if t, ok := p.selected(); ok {
			p.draft = tracker.NewDraft(t)
			p.optCursor = 0
			p.reviewing = false
		}
	case key.Matches(msg, keys.Delete):
		if _, ok := p.selected(); ok {
			return p.showDeleteForm()
		}
	}
	return p, nil
}

func (p trackersModel) updateDraft(msg tea.KeyMsg) (trackersModel, tea.Cmd) {
	if p.reviewing {
		switch {
		case key.Matches(msg, keys.Confirm):
			d := p.draft
			p.draft, p.reviewing = nil, false
			if err := p.repo.ApplyEdit(d); err != nil {
				return p, func() tea.Msg { return errStatus("Save failed: %v", err) }
			}
			return p, tea.Batch(refreshCmd(p.repo), func() tea.Msg {
				return statusMsg{text: "Saved " + d.Name}
			})
		case key.Matches(msg, keys.Back), msg.String() == "n":
			p.reviewing = false
		}
		return p, nil
	}

	n := len(p.draft.Options)
	switch {
	case key.Matches(msg, keys.Back):
		p.draft = nil
		return p, func() tea.Msg { return statusMsg{text: "Edit discarded"} }
	case key.Matches(msg, keys.Up):
		if p.optCursor > 0 {
			p.optCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.optCursor < n-1 {
			p.optCursor++
		}
	case key.Matches(msg, keys.MoveUp):
		p.optCursor = p.draft.Move(p.optCursor, -1)
	case key.Matches(msg, keys.MoveDown):
		p.optCursor = p.draft.Move(p.optCursor, 1)
	case key.Matches(msg, keys.Delete):
		p.draft.ToggleDeleted(p.optCursor)
	case key.Matches(msg, keys.Summary):
		p.draft.ToggleExclusion(p.optCursor)
	case key.Matches(msg, keys.Recolor):
		if p.optCursor < n {
			o := p.draft.Options[p.optCursor]
			p.draft.Recolor(p.optCursor, palette.Suggest(o.Label, p.rnd))
		}
	case key.Matches(msg, keys.Add):
		return p.showAddOptionForm()
	case key.Matches(msg, keys.Rename):
		return p.showRenameForm()
	case key.Matches(msg, keys.Enter):
		if len(p.draft.LiveOptions()) == 0 {
			return p, func() tea.Msg { return errStatus("A tracker needs at least one option") }
		}
		p.changes = p.draft.Diff()
		if p.changes.Empty() {
			p.draft = nil
			return p, func() tea.Msg { return statusMsg{text: "No changes"} }
		}
		p.reviewing = true
	}
	return p, nil
}

// parseLabels splits a comma-separated option list.
func parseLabels(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func (p trackersModel) newOption(label string) tracker.Option {
	c := palette.Suggest(label, p.rnd)
	return tracker.Option{Label: label, Color: c, TextColor: palette.ContrastColor(c)}
}

func requireText(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func (p trackersModel) showNewTrackerForm() (trackersModel, tea.Cmd) {
	*p.formName = ""
	*p.formCategory = ""
	*p.formOptions = ""
	p.formType = "new"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Tracker Name").Value(p.formName).Validate(requireText("name")),
			huh.NewInput().Title("Category").
				Description("Pick an existing one or type a new one").
				Suggestions(tracker.Categories(p.trackers)).
				Value(p.formCategory),
			huh.NewInput().Title("Options (comma-separated)").
				Placeholder("Good, Okay, Bad").
				Value(p.formOptions).
				Validate(func(s string) error {
					labels := parseLabels(s)
					if len(labels) == 0 {
						return fmt.Errorf("at least one option is required")
					}
					opts := make([]tracker.Option, len(labels))
					for i, l := range labels {
						opts[i] = tracker.Option{Label: l}
					}
					return tracker.ValidateOptions(opts)
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p trackersModel) showDeleteForm() (trackersModel, tea.Cmd) {
	t, _ := p.selected()
	*p.formConfirm = false
	p.formType = "delete"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", t.Name)).
				Description(fmt.Sprintf("%d recorded dates will be lost.", t.EntryCount())).
				Affirmative("Delete").
				Negative("Keep").
				Value(p.formConfirm),
		),
	).WithShowHelp(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p trackersModel) showAddOptionForm() (trackersModel, tea.Cmd) {
	*p.formName = ""
	p.formType = "add_option"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Option Label").Value(p.formName).Validate(requireText("label")),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p trackersModel) showRenameForm() (trackersModel, tea.Cmd) {
	*p.formName = p.draft.Name
	*p.formCategory = p.draft.Category
	*p.formExclude = p.draft.ExcludeFromDashboard
	p.formType = "rename"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Tracker Name").Value(p.formName).Validate(requireText("name")),
			huh.NewInput().Title("Category").
				Suggestions(tracker.Categories(p.trackers)).
				Value(p.formCategory),
			huh.NewConfirm().Title("Hide from dashboard?").Value(p.formExclude),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p trackersModel) updateForm(msg tea.Msg) (trackersModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State != huh.StateCompleted {
		return p, cmd
	}
	p.formActive = false

	switch p.formType {
	case "new":
		return p, p.createTracker()
	case "delete":
		t, ok := p.selected()
		if !ok || !*p.formConfirm {
			return p, nil
		}
		if err := p.repo.DeleteTracker(t.ID); err != nil {
			return p, func() tea.Msg { return errStatus("Delete failed: %v", err) }
		}
		return p, tea.Batch(refreshCmd(p.repo), func() tea.Msg {
			return statusMsg{text: "Deleted " + t.Name}
		})
	case "add_option":
		if err := p.draft.AddOption(p.newOption(*p.formName)); err != nil {
			return p, func() tea.Msg { return errStatus("%v", err) }
		}
		p.optCursor = len(p.draft.Options) - 1
	case "rename":
		p.draft.Name = strings.TrimSpace(*p.formName)
		p.draft.Category = strings.TrimSpace(*p.formCategory)
		p.draft.ExcludeFromDashboard = *p.formExclude
	}
	return p, nil
}

func (p trackersModel) createTracker() tea.Cmd {
	labels := parseLabels(*p.formOptions)
	opts := make([]tracker.Option, len(labels))
	for i, l := range labels {
		opts[i] = p.newOption(l)
	}
	t, err := tracker.New(*p.formName, *p.formCategory, opts, p.clock.Now())
	if err != nil {
		return func() tea.Msg { return errStatus("%v", err) }
	}
	if err := p.repo.AddTracker(t); err != nil {
		return func() tea.Msg { return errStatus("Create failed: %v", err) }
	}
	return tea.Batch(refreshCmd(p.repo), func() tea.Msg {
		return statusMsg{text: "Created " + t.Name}
	})
}

func (p trackersModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		titles := map[string]string{
			"new":        "New Tracker",
			"delete":     "Delete Tracker",
			"add_option": "Add Option",
			"rename":     "Tracker Details",
		}
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(titles[p.formType]), "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if p.draft != nil {
		if p.reviewing {
			return activePanelStyle.Width(w).Render(p.renderReview())
		}
		return activePanelStyle.Width(w).Render(p.renderDraft())
	}
	return p.renderList()
}

func (p trackersModel) renderList() string {
	w := p.width - 4
	title := titleStyle.Render("Trackers")

	if len(p.trackers) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No trackers yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)

	group := "\x00"
	for i, t := range p.trackers {
		if t.Category != group {
			group = t.Category
			name := group
			if name == "" {
				name = "Uncategorized"
			}
			rows = append(rows, "", subtitleStyle.Render(name))
		}

		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		var chips []string
		for _, o := range t.Options {
			chips = append(chips, swatch(o, " "+o.Label+" "))
		}
		hidden := ""
		if t.ExcludeFromDashboard {
			hidden = mutedStyle.Render(" (hidden)")
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-24s", cursor, truncate(t.Name, 24)))+
			strings.Join(chips, " ")+hidden)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  enter: calendar"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p trackersModel) renderDraft() string {
	d := p.draft
	var rows []string
	rows = append(rows, titleStyle.Render("Edit "+d.Original.Name))
	cat := d.Category
	if cat == "" {
		cat = "—"
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("name: %s  category: %s  hidden: %t",
		d.Name, cat, d.ExcludeFromDashboard)))
	rows = append(rows, "")

	for i, o := range d.Options {
		cursor := "  "
		if i == p.optCursor {
			cursor = "> "
		}
		label := swatch(o.Option, " "+o.Label+" ")
		if o.Deleted {
			label = deletedStyle.Render(" " + o.Label + " ")
		}
		flag := ""
		if o.ExcludeFromSummary {
			flag = mutedStyle.Render("  not in summary")
		}
		rows = append(rows, cursor+label+flag)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  a: add  d: delete/restore  c: recolor  s: summary  K/J: move  r: details"))
	rows = append(rows, mutedStyle.Render("  enter: review & save  esc: discard"))
	return strings.Join(rows, "\n")
}

func (p trackersModel) renderReview() string {
	c := p.changes
	var rows []string
	rows = append(rows, titleStyle.Render("Review changes"), "")

	if c.Name != nil {
		rows = append(rows, fmt.Sprintf("  Name      → %s", *c.Name))
	}
	if c.Category != nil {
		rows = append(rows, fmt.Sprintf("  Category  → %s", *c.Category))
	}
	if c.ExcludeFromDashboard != nil {
		rows = append(rows, fmt.Sprintf("  Hidden    → %t", *c.ExcludeFromDashboard))
	}
	if len(c.AddedOptions) > 0 {
		rows = append(rows, "  Added     "+optionChips(c.AddedOptions))
	}
	if len(c.RemovedOptions) > 0 {
		rows = append(rows, "  Removed   "+optionChips(c.RemovedOptions))
	}
	for _, ch := range c.ChangedOptions {
		rows = append(rows, fmt.Sprintf("  Recolored %s → %s",
			swatch(ch.Old, " "+ch.Old.Label+" "), swatch(ch.New, " "+ch.New.Label+" ")))
	}
	if c.ReorderedOptions != nil {
		rows = append(rows, "  Order     "+optionChips(c.ReorderedOptions.Old))
		rows = append(rows, "         →  "+optionChips(c.ReorderedOptions.New))
	}
	for _, o := range c.UpdatedExclusions {
		state := "included in"
		if o.ExcludeFromSummary {
			state = "excluded from"
		}
		rows = append(rows, fmt.Sprintf("  %s is now %s the summary", o.Label, state))
	}

	if n := c.AffectedDateCount(); n > 0 {
		rows = append(rows, "", warningStyle.Render(fmt.Sprintf("  %d recorded dates will be cleared:", n)))
		for _, label := range c.AffectedLabels() {
			rows = append(rows, "  "+label)
			for _, g := range tracker.GroupDatesByYear(c.DatesAffected[label]) {
				rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %s: %s", g.Year, strings.Join(g.Dates, ", "))))
			}
		}
	}

	rows = append(rows, "", mutedStyle.Render("  y: save  n/esc: keep editing"))
	return strings.Join(rows, "\n")
}

func optionChips(opts []tracker.Option) string {
	chips := make([]string, len(opts))
	for i, o := range opts {
		chips[i] = swatch(o, " "+o.Label+" ")
	}
	return strings.Join(chips, " ")
}
