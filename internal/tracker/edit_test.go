package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abc() Tracker {
	return Tracker{
		ID:      "t1",
		Name:    "Letters",
		Options: opts("A", "B", "C"),
		Data: Data{
			2023: {"2023-12-30": "B"},
			2024: {"2024-01-01": "A", "2024-01-02": "B", "2024-01-03": "C"},
		},
		CurrentDate: 2024,
	}
}

func TestDiffDeleteAndAdd(t *testing.T) {
	d := NewDraft(abc())
	d.ToggleDeleted(1)
	require.NoError(t, d.AddOption(Option{Label: "D", Color: "#ffffff"}))

	c := d.Diff()
	require.Len(t, c.AddedOptions, 1)
	assert.Equal(t, "D", c.AddedOptions[0].Label)
	assert.Equal(t, "#000000", c.AddedOptions[0].TextColor)
	require.Len(t, c.RemovedOptions, 1)
	assert.Equal(t, "B", c.RemovedOptions[0].Label)
	assert.Nil(t, c.ReorderedOptions)
	assert.Equal(t, map[string][]string{"B": {"2023-12-30", "2024-01-02"}}, c.DatesAffected)
	assert.Equal(t, 2, c.AffectedDateCount())
	assert.False(t, c.Empty())
}

func TestDiffUnchanged(t *testing.T) {
	c := NewDraft(abc()).Diff()
	assert.True(t, c.Empty())
	assert.Empty(t, c.DatesAffected)
}

func TestDiffMetadata(t *testing.T) {
	d := NewDraft(abc())
	d.Name = "Alphabet"
	d.ExcludeFromDashboard = true

	c := d.Diff()
	require.NotNil(t, c.Name)
	assert.Equal(t, "Alphabet", *c.Name)
	assert.Nil(t, c.Category)
	require.NotNil(t, c.ExcludeFromDashboard)
	assert.True(t, *c.ExcludeFromDashboard)
}

func TestDiffReorder(t *testing.T) {
	d := NewDraft(abc())
	d.Swap("A", "C")

	c := d.Diff()
	require.NotNil(t, c.ReorderedOptions)
	assert.Equal(t, []string{"A", "B", "C"}, labelsOf(c.ReorderedOptions.Old))
	assert.Equal(t, []string{"C", "B", "A"}, labelsOf(c.ReorderedOptions.New))
}

func TestDiffReorderIgnoresDeleted(t *testing.T) {
	d := NewDraft(abc())
	d.ToggleDeleted(0)
	d.Move(1, 1)

	c := d.Diff()
	require.NotNil(t, c.ReorderedOptions)
	assert.Equal(t, []string{"B", "C"}, labelsOf(c.ReorderedOptions.Old))
	assert.Equal(t, []string{"C", "B"}, labelsOf(c.ReorderedOptions.New))
}

func TestDiffColorAndExclusion(t *testing.T) {
	d := NewDraft(abc())
	d.Recolor(0, "#000000")
	d.ToggleExclusion(2)

	c := d.Diff()
	require.Len(t, c.ChangedOptions, 1)
	assert.Equal(t, "#22c55e", c.ChangedOptions[0].Old.Color)
	assert.Equal(t, "#000000", c.ChangedOptions[0].New.Color)
	assert.Equal(t, "#ffffff", c.ChangedOptions[0].New.TextColor)
	require.Len(t, c.UpdatedExclusions, 1)
	assert.Equal(t, "C", c.UpdatedExclusions[0].Label)
}

func TestDiffRemovedWithoutDates(t *testing.T) {
	tr := abc()
	tr.Options = append(tr.Options, Option{Label: "Unused"})
	d := NewDraft(tr)
	d.ToggleDeleted(3)

	c := d.Diff()
	assert.Len(t, c.RemovedOptions, 1)
	assert.NotContains(t, c.DatesAffected, "Unused")
}

func TestDraftDoesNotTouchOriginal(t *testing.T) {
	tr := abc()
	d := NewDraft(tr)
	d.ToggleDeleted(0)
	d.Recolor(1, "#000000")
	d.Swap("B", "C")
	assert.Equal(t, abc(), tr)
	assert.Equal(t, abc(), d.Original)
}

func TestAddOption(t *testing.T) {
	d := NewDraft(abc())

	assert.ErrorIs(t, d.AddOption(Option{Label: "  "}), ErrInvalidTracker)
	assert.ErrorIs(t, d.AddOption(Option{Label: "A"}), ErrDuplicateLabel)

	d.ToggleDeleted(1)
	require.NoError(t, d.AddOption(Option{Label: "B", Color: "#000000"}))
	assert.Len(t, d.Options, 3)
	assert.False(t, d.Options[1].Deleted)
	assert.Equal(t, "#000000", d.Options[1].Color)
}

func TestMoveBounds(t *testing.T) {
	d := NewDraft(abc())
	assert.Equal(t, 0, d.Move(0, -1))
	assert.Equal(t, 1, d.Move(0, 1))
	assert.Equal(t, []string{"B", "A", "C"}, labelsOf(d.LiveOptions()))
}

func TestSwapAndMoveOptions(t *testing.T) {
	o := opts("A", "B", "C")
	assert.Equal(t, []string{"C", "B", "A"}, labelsOf(SwapOptions(o, "A", "C")))
	assert.Equal(t, []string{"A", "B", "C"}, labelsOf(SwapOptions(o, "A", "Z")))
	assert.Equal(t, []string{"A", "C", "B"}, labelsOf(MoveOption(o, "B", 1)))
	assert.Equal(t, []string{"A", "B", "C"}, labelsOf(MoveOption(o, "A", -1)))
	assert.Equal(t, []string{"A", "B", "C"}, labelsOf(o))
}

func TestGroupDatesByYear(t *testing.T) {
	got := GroupDatesByYear([]string{"2024-01-02", "2023-12-30", "2024-01-01"})
	assert.Equal(t, []DateGroup{
		{Year: "2023", Dates: []string{"2023-12-30"}},
		{Year: "2024", Dates: []string{"2024-01-01", "2024-01-02"}},
	}, got)
	assert.Empty(t, GroupDatesByYear(nil))
}

func labelsOf(o []Option) []string {
	out := make([]string, len(o))
	for i := range o {
		out[i] = o[i].Label
	}
	return out
}
