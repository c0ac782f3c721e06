package tracker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opts(labels ...string) []Option {
	out := make([]Option, len(labels))
	for i, l := range labels {
		out[i] = Option{Label: l, Color: "#22c55e", TextColor: "#000000"}
	}
	return out
}

func TestNew(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	tr, err := New("  Sleep ", " Health ", opts("Good", "Bad"), now)
	require.NoError(t, err)

	assert.Equal(t, "Sleep", tr.Name)
	assert.Equal(t, "Health", tr.Category)
	assert.Equal(t, 2024, tr.CurrentDate)
	assert.Equal(t, Data{2024: YearData{}}, tr.Data)

	id, err := uuid.Parse(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNewUniqueIDs(t *testing.T) {
	now := time.Now()
	a, err := New("a", "", opts("x"), now)
	require.NoError(t, err)
	b, err := New("b", "", opts("x"), now)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewValidation(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		tracker string
		options []Option
		wantErr error
	}{
		{"blank name", "  ", opts("a"), ErrInvalidTracker},
		{"no options", "x", nil, ErrInvalidTracker},
		{"blank label", "x", opts("a", " "), ErrInvalidTracker},
		{"duplicate label", "x", opts("a", "a"), ErrDuplicateLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tracker, "", tt.options, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Tracker{ID: "t1", Options: opts("A"), Data: Data{2024: {"2024-01-01": "A"}}}
	c := orig.Clone()
	c.Options[0].Label = "Z"
	c.Data[2024]["2024-01-01"] = "Z"
	c.Data[2025] = YearData{}

	assert.Equal(t, "A", orig.Options[0].Label)
	assert.Equal(t, "A", orig.Data[2024]["2024-01-01"])
	assert.NotContains(t, orig.Data, 2025)
}

func TestAppearanceDanglingLabel(t *testing.T) {
	tr := Tracker{Options: opts("A")}

	o := tr.Appearance("A")
	assert.Equal(t, "#22c55e", o.Color)

	n := tr.Appearance("Gone")
	assert.Equal(t, "Gone", n.Label)
	assert.Equal(t, NeutralOption.Color, n.Color)
}

func TestValueAndYears(t *testing.T) {
	tr := Tracker{Data: Data{
		2025: {"2025-02-01": "A"},
		2024: {"2024-01-01": "B", "2024-01-02": "A"},
	}}

	v, ok := tr.Value("2024-01-01")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	_, ok = tr.Value("not-a-date")
	assert.False(t, ok)

	assert.Equal(t, []int{2024, 2025}, tr.Years())
	assert.Equal(t, 3, tr.EntryCount())
}

func TestJSONWireFormat(t *testing.T) {
	tr := Tracker{
		ID:          "t1",
		Name:        "Sleep",
		Options:     []Option{{Label: "Good", Color: "#fff", TextColor: "#000", ExcludeFromSummary: true}},
		Data:        Data{2024: {"2024-01-01": "Good"}},
		CurrentDate: 2024,
	}
	b, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"t1","name":"Sleep","category":"",
		"options":[{"label":"Good","color":"#fff","textColor":"#000","excludeFromSummary":true}],
		"data":{"2024":{"2024-01-01":"Good"}},
		"currentDate":2024,"excludeFromDashboard":false
	}`, string(b))
}
