package stats

import (
	"testing"
	"time"

	"issue-lifecycle/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(t time.Time) *time.Time { return &t }

func TestBuildDailySeries_Scenario(t *testing.T) {
	d := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	records := []lifecycle.IssueRecord{
		{Key: "A", Created: d, Resolved: ptr(d.AddDate(0, 0, 2))},
		{Key: "B", Created: d.AddDate(0, 0, 1), Resolved: ptr(d.AddDate(0, 0, 2).Add(3 * time.Hour))},
	}

	s := BuildDailySeries(records)
	require.Len(t, s.Days, 3)

	assert.Equal(t, DailyCount{Date: "2024-05-01", Created: 1, Closed: 0, CumulativeCreated: 1, CumulativeClosed: 0}, s.Days[0])
	assert.Equal(t, DailyCount{Date: "2024-05-02", Created: 1, Closed: 0, CumulativeCreated: 2, CumulativeClosed: 0}, s.Days[1])
	assert.Equal(t, DailyCount{Date: "2024-05-03", Created: 0, Closed: 2, CumulativeCreated: 2, CumulativeClosed: 2}, s.Days[2])
	assert.Zero(t, s.ExcludedCount)
}

func TestBuildDailySeries_DenseAndMonotonic(t *testing.T) {
	base := time.Date(2024, 2, 27, 12, 0, 0, 0, time.UTC)
	records := []lifecycle.IssueRecord{
		{Key: "A", Created: base, Resolved: ptr(base.AddDate(0, 0, 10))},
		{Key: "B", Created: base.AddDate(0, 0, 4)},
		{Key: "C", Created: base.AddDate(0, 0, 4), Resolved: ptr(base.AddDate(0, 0, 5))},
		{Key: "D"},
	}

	s := BuildDailySeries(records)
	require.Len(t, s.Days, 11)
	assert.Equal(t, "2024-02-27", s.Days[0].Date)
	assert.Equal(t, "2024-02-29", s.Days[2].Date)
	assert.Equal(t, "2024-03-08", s.Days[10].Date)

	for i := 1; i < len(s.Days); i++ {
		assert.GreaterOrEqual(t, s.Days[i].CumulativeCreated, s.Days[i-1].CumulativeCreated)
		assert.GreaterOrEqual(t, s.Days[i].CumulativeClosed, s.Days[i-1].CumulativeClosed)
	}
	last := s.Days[len(s.Days)-1]
	assert.Equal(t, 3, last.CumulativeCreated)
	assert.Equal(t, 2, last.CumulativeClosed)
	assert.Equal(t, 3, s.TotalCreated)
	assert.Equal(t, 2, s.TotalClosed)

	require.Equal(t, 1, s.ExcludedCount)
	assert.Equal(t, "D", s.Excluded[0].Key)
	assert.Equal(t, lifecycle.ErrDataIncomplete.Error(), s.Excluded[0].Kind)
}

func TestBuildDailySeries_UsesSourceOffset(t *testing.T) {
	tz := time.FixedZone("+0300", 3*60*60)
	// 23:30 UTC on the 1st is already the 2nd at +0300.
	created := time.Date(2024, 6, 2, 2, 30, 0, 0, tz)
	s := BuildDailySeries([]lifecycle.IssueRecord{{Key: "A", Created: created}})

	require.Len(t, s.Days, 1)
	assert.Equal(t, "2024-06-02", s.Days[0].Date)
}

func TestBuildDailySeries_Empty(t *testing.T) {
	s := BuildDailySeries(nil)
	assert.Empty(t, s.Days)
	assert.Zero(t, s.TotalCreated)
}
