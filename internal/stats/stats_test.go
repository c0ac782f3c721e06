package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/habitr/internal/tracker"
)

func date(s string) time.Time {
	t, err := time.Parse(tracker.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t.Add(15 * time.Hour)
}

func goodBad() tracker.Tracker {
	return tracker.Tracker{
		ID: "t1",
		Options: []tracker.Option{
			{Label: "Good", Color: "#22c55e"},
			{Label: "Bad", Color: "#ef4444"},
		},
		Data: tracker.Data{2024: {
			"2024-01-01": "Good",
			"2024-01-02": "Bad",
		}},
		CurrentDate: 2024,
	}
}

// ============================================================
// Periods
// ============================================================

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" Week ")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)

	_, err = ParsePeriod("fortnight")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestPeriodLabels(t *testing.T) {
	want := []string{"All Time", "This Year", "This Month", "Previous 7 days", "Today"}
	for i, p := range Periods {
		assert.Equal(t, want[i], p.Label())
	}
}

// ============================================================
// Filtering
// ============================================================

func TestFlatten(t *testing.T) {
	tr := goodBad()
	tr.Data[2023] = tracker.YearData{"2023-12-31": "Bad"}
	assert.Equal(t, map[string]string{
		"2023-12-31": "Bad",
		"2024-01-01": "Good",
		"2024-01-02": "Bad",
	}, Flatten(tr))
}

func TestFilterByPeriod(t *testing.T) {
	flat := map[string]string{
		"2023-12-31": "a",
		"2024-01-26": "b",
		"2024-02-01": "c",
		"2024-02-07": "d",
		"2024-02-08": "e",
		"2024-02-09": "f",
		"garbage":    "g",
	}
	now := date("2024-02-08")

	tests := []struct {
		period Period
		want   []string
	}{
		{PeriodAll, []string{"2023-12-31", "2024-01-26", "2024-02-01", "2024-02-07", "2024-02-08", "2024-02-09", "garbage"}},
		{PeriodYear, []string{"2024-01-26", "2024-02-01", "2024-02-07", "2024-02-08", "2024-02-09"}},
		{PeriodMonth, []string{"2024-02-01", "2024-02-07", "2024-02-08", "2024-02-09"}},
		{PeriodWeek, []string{"2024-02-07", "2024-02-08"}},
		{PeriodToday, []string{"2024-02-08"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got := FilterByPeriod(flat, tt.period, now)
			keys := make([]string, 0, len(got))
			for k := range got {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.want, keys)
		})
	}
}

func TestFilterWeekBoundary(t *testing.T) {
	flat := map[string]string{"2024-02-02": "in", "2024-02-01": "out"}
	got := FilterByPeriod(flat, PeriodWeek, date("2024-02-08"))
	assert.Equal(t, map[string]string{"2024-02-02": "in"}, got)
}

func TestFilterTodayScenario(t *testing.T) {
	tr := goodBad()
	got := FilterByPeriod(Flatten(tr), PeriodToday, date("2024-01-01"))
	assert.Equal(t, map[string]string{"2024-01-01": "Good"}, got)

	s := Summarize(tr, PeriodToday, date("2024-01-01"))
	assert.Equal(t, 100.0, s.Rate)
}

func TestFilterWeekScenario(t *testing.T) {
	tr := goodBad()
	got := FilterByPeriod(Flatten(tr), PeriodWeek, date("2024-01-02"))
	assert.Len(t, got, 2)

	s := Summarize(tr, PeriodWeek, date("2024-01-02"))
	assert.InDelta(t, 28.571, s.Rate, 0.01)
}

// ============================================================
// Completion rate
// ============================================================

func TestPossibleEntries(t *testing.T) {
	now := date("2024-01-10")
	flat := map[string]string{"2024-01-01": "x", "2024-01-05": "y"}

	assert.Equal(t, 1, PossibleEntries(flat, PeriodToday, now))
	assert.Equal(t, 7, PossibleEntries(flat, PeriodWeek, now))
	assert.Equal(t, 28, PossibleEntries(flat, PeriodMonth, now))
	assert.Equal(t, 365, PossibleEntries(flat, PeriodYear, now))
	assert.Equal(t, 10, PossibleEntries(flat, PeriodAll, now))
}

func TestPossibleEntriesAllFloor(t *testing.T) {
	now := date("2024-01-10")
	assert.Equal(t, 1, PossibleEntries(nil, PeriodAll, now))
	assert.Equal(t, 1, PossibleEntries(map[string]string{"2024-03-01": "x"}, PeriodAll, now))
	assert.Equal(t, 1, PossibleEntries(map[string]string{"junk": "x"}, PeriodAll, now))
}

func TestCompletionRateEmptyAllTime(t *testing.T) {
	tr := tracker.Tracker{ID: "e", Options: goodBad().Options, Data: tracker.Data{2024: {}}}
	s := Summarize(tr, PeriodAll, date("2024-06-01"))
	assert.Equal(t, 0.0, s.Rate)
	assert.False(t, math.IsNaN(s.Rate))
	assert.Equal(t, 0.0, CompletionRate(0, 0))
}

func TestCompletionRateAllTimeIgnoresFutureEntries(t *testing.T) {
	tr := goodBad()
	tr.Data = tracker.Data{2024: {
		"2024-01-10": "Good",
		"2024-01-11": "Bad", "2024-01-12": "Good", "2024-02-01": "Good",
	}}
	s := Summarize(tr, PeriodAll, date("2024-01-10"))
	assert.Equal(t, 4, s.Entries)
	assert.Equal(t, 1, s.Possible)
	assert.Equal(t, 100.0, s.Rate)
}

func TestCompletionRateFullWeek(t *testing.T) {
	tr := goodBad()
	tr.Data = tracker.Data{2024: {}}
	now := date("2024-03-10")
	for i := range 7 {
		tr.Data[2024][now.AddDate(0, 0, -i).Format(tracker.DateLayout)] = "Good"
	}
	s := Summarize(tr, PeriodWeek, now)
	assert.Equal(t, 100.0, s.Rate)
}

// ============================================================
// Most common
// ============================================================

func TestMostCommon(t *testing.T) {
	tr := goodBad()
	got, ok := MostCommon(tr, map[string]string{
		"2024-01-01": "Good", "2024-01-02": "Bad", "2024-01-03": "Good",
	})
	require.True(t, ok)
	assert.Equal(t, "Good", got)
}

func TestMostCommonTieBreak(t *testing.T) {
	tr := goodBad()
	filtered := map[string]string{
		"2024-01-01": "Good", "2024-01-02": "Bad",
		"2024-01-03": "Good", "2024-01-04": "Bad",
	}
	for range 5 {
		got, ok := MostCommon(tr, filtered)
		require.True(t, ok)
		assert.Equal(t, "Bad", got, "equal counts: label seen last wins")
	}

	interleaved := map[string]string{
		"2024-01-01": "Good", "2024-01-02": "Bad",
		"2024-01-03": "Bad", "2024-01-04": "Good",
	}
	got, ok := MostCommon(tr, interleaved)
	require.True(t, ok)
	assert.Equal(t, "Good", got)

	filtered["2023-12-31"] = "Bad"
	filtered["2024-01-05"] = "Good"
	got, _ = MostCommon(tr, filtered)
	assert.Equal(t, "Good", got)
}

func TestMostCommonSkipsExcludedAndDangling(t *testing.T) {
	tr := goodBad()
	tr.Options[0].ExcludeFromSummary = true
	got, ok := MostCommon(tr, map[string]string{
		"2024-01-01": "Good", "2024-01-02": "Good",
		"2024-01-03": "Gone", "2024-01-04": "Gone", "2024-01-05": "Gone",
		"2024-01-06": "Bad",
	})
	require.True(t, ok)
	assert.Equal(t, "Bad", got)

	_, ok = MostCommon(tr, map[string]string{"2024-01-01": "Good"})
	assert.False(t, ok)
}

func TestOptionCounts(t *testing.T) {
	tr := goodBad()
	tr.Options = append(tr.Options, tracker.Option{Label: "Skip", ExcludeFromSummary: true})
	counts := OptionCounts(tr, map[string]string{
		"2024-01-01": "Bad", "2024-01-02": "Bad", "2024-01-03": "Skip",
	})
	require.Len(t, counts, 2)
	assert.Equal(t, "Good", counts[0].Option.Label)
	assert.Equal(t, 0, counts[0].Count)
	assert.Equal(t, 2, counts[1].Count)
}

// ============================================================
// Dashboard
// ============================================================

func TestDashboard(t *testing.T) {
	a := goodBad()
	b := goodBad()
	b.ID = "t2"
	b.Data = tracker.Data{2024: {}}
	hidden := goodBad()
	hidden.ID = "t3"
	hidden.ExcludeFromDashboard = true

	ov := Dashboard([]tracker.Tracker{a, hidden, b}, PeriodToday, date("2024-01-01"))
	require.Len(t, ov.Trackers, 2)
	assert.Equal(t, "t1", ov.Trackers[0].TrackerID)
	assert.Equal(t, "t2", ov.Trackers[1].TrackerID)
	assert.Equal(t, 50.0, ov.Overall)
}

func TestDashboardEmpty(t *testing.T) {
	ov := Dashboard(nil, PeriodAll, time.Now())
	assert.Empty(t, ov.Trackers)
	assert.Equal(t, 0.0, ov.Overall)
}

func TestFixedClock(t *testing.T) {
	at := date("2024-01-01")
	var c Clock = FixedClock(at)
	assert.True(t, c.Now().Equal(at))
	assert.False(t, SystemClock{}.Now().IsZero())
}
