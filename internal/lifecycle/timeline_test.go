package lifecycle

import (
	"math"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func at(h float64) time.Time {
	return t0.Add(time.Duration(h * float64(time.Hour)))
}

func resolvedAt(h float64) *time.Time {
	t := at(h)
	return &t
}

func statusEvent(h float64, from, to string) ChangelogEvent {
	return ChangelogEvent{At: at(h), Items: []FieldChange{{Field: "status", From: from, To: to}}}
}

func TestExtractTransitions_FiltersAndSorts(t *testing.T) {
	events := []ChangelogEvent{
		statusEvent(5, "In Progress", "Closed"),
		{At: at(1), Items: []FieldChange{{Field: "assignee", From: "", To: "alice"}}},
		{At: at(2), Items: []FieldChange{
			{Field: "priority", From: "Minor", To: "Major"},
			{Field: "Status", From: "Open", To: "In Progress"},
		}},
	}

	got := ExtractTransitions(events)
	require.Len(t, got, 2)
	assert.Equal(t, StatusTransition{From: "Open", To: "In Progress", At: at(2)}, got[0])
	assert.Equal(t, StatusTransition{From: "In Progress", To: "Closed", At: at(5)}, got[1])
}

func TestExtractTransitions_NoStatusChanges(t *testing.T) {
	events := []ChangelogEvent{{At: at(1), Items: []FieldChange{{Field: "labels", To: "x"}}}}
	assert.Empty(t, ExtractTransitions(events))
	assert.Empty(t, ExtractTransitions(nil))
}

func TestExtractTransitions_StableForTies(t *testing.T) {
	events := []ChangelogEvent{
		statusEvent(3, "B", "C"),
		statusEvent(1, "A", "B"),
		statusEvent(3, "C", "D"),
	}
	got := ExtractTransitions(events)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].From)
	assert.Equal(t, "B", got[1].From)
	assert.Equal(t, "C", got[2].From)
}

func TestExtractTransitions_SortedForAnyPermutation(t *testing.T) {
	base := []ChangelogEvent{
		statusEvent(0.5, "Open", "In Progress"),
		statusEvent(7, "In Progress", "Resolved"),
		statusEvent(3, "In Progress", "Blocked"),
		statusEvent(4, "Blocked", "In Progress"),
		statusEvent(9, "Resolved", "Closed"),
	}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		events := slices.Clone(base)
		rng.Shuffle(len(events), func(a, b int) { events[a], events[b] = events[b], events[a] })

		got := ExtractTransitions(events)
		require.Len(t, got, len(base))
		assert.True(t, slices.IsSortedFunc(got, func(a, b StatusTransition) int {
			return a.At.Compare(b.At)
		}), "permutation %d not sorted", i)
	}
}

func TestBuildIntervals_NoTransitions(t *testing.T) {
	rec := IssueRecord{Key: "KAFKA-1", Created: t0, Resolved: resolvedAt(10)}

	got, err := BuildIntervals(rec, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, InitialState, got[0].State)
	assert.InDelta(t, 10.0, got[0].Hours, 1e-9)
}

func TestBuildIntervals_Scenario(t *testing.T) {
	rec := IssueRecord{
		Key:      "KAFKA-2",
		Created:  t0,
		Resolved: resolvedAt(6),
		Changelog: []ChangelogEvent{
			statusEvent(5, "In Progress", "Closed"),
			statusEvent(2, "Open", "In Progress"),
		},
	}

	got, err := BuildIntervals(rec, ExtractTransitions(rec.Changelog))
	require.NoError(t, err)
	require.Len(t, got, 3)

	want := []struct {
		state string
		hours float64
	}{{"Open", 2}, {"In Progress", 3}, {"Closed", 1}}
	for i, w := range want {
		assert.Equal(t, w.state, got[i].State)
		assert.InDelta(t, w.hours, got[i].Hours, 1e-9)
	}
}

func TestBuildIntervals_SumEqualsLifetime(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 1; n <= 20; n++ {
		lifetime := 1 + rng.Float64()*500
		var events []ChangelogEvent
		for i := 0; i < n; i++ {
			events = append(events, statusEvent(rng.Float64()*lifetime, "S", "S"))
		}
		rec := IssueRecord{Key: "K", Created: t0, Resolved: resolvedAt(lifetime), Changelog: events}

		got, err := BuildIntervals(rec, ExtractTransitions(events))
		require.NoError(t, err)
		require.Len(t, got, n+1)

		sum := 0.0
		for _, iv := range got {
			assert.GreaterOrEqual(t, iv.Hours, 0.0)
			sum += iv.Hours
		}
		want := rec.Resolved.Sub(rec.Created).Hours()
		assert.LessOrEqual(t, math.Abs(sum-want), 1e-9)
	}
}

func TestBuildIntervals_ZeroLengthRetained(t *testing.T) {
	rec := IssueRecord{
		Key:      "K",
		Created:  t0,
		Resolved: resolvedAt(4),
		Changelog: []ChangelogEvent{
			statusEvent(2, "Open", "In Progress"),
			statusEvent(2, "In Progress", "Resolved"),
		},
	}
	got, err := BuildIntervals(rec, ExtractTransitions(rec.Changelog))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "In Progress", got[1].State)
	assert.Zero(t, got[1].Hours)
}

func TestBuildIntervals_Errors(t *testing.T) {
	tests := []struct {
		name string
		rec  IssueRecord
		want error
	}{
		{"MissingCreated", IssueRecord{Key: "K", Resolved: resolvedAt(1)}, ErrDataIncomplete},
		{"MissingResolved", IssueRecord{Key: "K", Created: t0}, ErrDataIncomplete},
		{"ResolvedBeforeCreated", IssueRecord{Key: "K", Created: t0, Resolved: resolvedAt(-1)}, ErrMalformedTimestamp},
		{"TransitionBeforeCreated", IssueRecord{
			Key: "K", Created: t0, Resolved: resolvedAt(3),
			Changelog: []ChangelogEvent{statusEvent(-2, "Open", "Closed")},
		}, ErrMalformedTimestamp},
		{"TransitionAfterResolved", IssueRecord{
			Key: "K", Created: t0, Resolved: resolvedAt(3),
			Changelog: []ChangelogEvent{statusEvent(5, "Open", "Closed")},
		}, ErrMalformedTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildIntervals(tt.rec, ExtractTransitions(tt.rec.Changelog))
			require.ErrorIs(t, err, tt.want)

			var ie *IssueError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, "K", ie.Key)
		})
	}
}

func TestBuildIntervals_RejectsUnsortedInput(t *testing.T) {
	rec := IssueRecord{Key: "K", Created: t0, Resolved: resolvedAt(10)}
	transitions := []StatusTransition{
		{From: "In Progress", To: "Closed", At: at(5)},
		{From: "Open", To: "In Progress", At: at(2)},
	}
	_, err := BuildIntervals(rec, transitions)
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

func TestResidency(t *testing.T) {
	intervals := []StateInterval{
		{State: "Open", Hours: 2},
		{State: "In Progress", Hours: 3},
		{State: "Open", Hours: 1.5},
	}
	got := Residency(intervals)
	assert.Equal(t, map[string]float64{"Open": 3.5, "In Progress": 3}, got)
}

func TestOpenHours(t *testing.T) {
	h, err := OpenHours(IssueRecord{Key: "K", Created: t0, Resolved: resolvedAt(12.5)})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, h, 1e-9)

	_, err = OpenHours(IssueRecord{Key: "K", Created: t0})
	assert.ErrorIs(t, err, ErrDataIncomplete)

	_, err = OpenHours(IssueRecord{Key: "K", Created: t0, Resolved: resolvedAt(-3)})
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

func TestWorkDuration(t *testing.T) {
	anchors := DefaultWorkAnchors()

	t.Run("FirstAnchorsWin", func(t *testing.T) {
		transitions := ExtractTransitions([]ChangelogEvent{
			statusEvent(1, "Open", "In Progress"),
			statusEvent(4, "In Progress", "Closed"),
			statusEvent(6, "Closed", "Reopened"),
			statusEvent(7, "Reopened", "In Progress"),
			statusEvent(9, "In Progress", "Closed"),
		})
		h, err := WorkDuration("K", transitions, anchors)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, h, 1e-9)
	})

	t.Run("MissingStart", func(t *testing.T) {
		transitions := ExtractTransitions([]ChangelogEvent{statusEvent(4, "Patch Available", "Closed")})
		_, err := WorkDuration("K", transitions, anchors)
		assert.ErrorIs(t, err, ErrDataIncomplete)
	})

	t.Run("MissingEnd", func(t *testing.T) {
		transitions := ExtractTransitions([]ChangelogEvent{statusEvent(4, "Reopened", "Open")})
		_, err := WorkDuration("K", transitions, anchors)
		assert.ErrorIs(t, err, ErrDataIncomplete)
	})

	t.Run("ClosedBeforeStartIsNegative", func(t *testing.T) {
		transitions := ExtractTransitions([]ChangelogEvent{
			statusEvent(2, "Open", "Closed"),
			statusEvent(5, "Closed", "Open"),
		})
		h, err := WorkDuration("K", transitions, anchors)
		require.NoError(t, err)
		assert.InDelta(t, -3.0, h, 1e-9)
	})
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "alice", Named("alice").Label(UnassignedLabel))
	assert.Equal(t, UnassignedLabel, Missing().Label(UnassignedLabel))
	assert.True(t, Named("").Missing)

	// A real user called "Unassigned" is not the missing sentinel.
	assert.NotEqual(t, Named(UnassignedLabel), Missing())
}
