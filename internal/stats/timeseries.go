package stats

import (
	"time"

	"issue-lifecycle/internal/lifecycle"
)

const dateLayout = "2006-01-02"

// DailyCount is one day of created/closed volume with running totals.
type DailyCount struct {
	Date              string `json:"date"`
	Created           int    `json:"created"`
	Closed            int    `json:"closed"`
	CumulativeCreated int    `json:"cumulativeCreated"`
	CumulativeClosed  int    `json:"cumulativeClosed"`
}

// DailySeries is a dense day-by-day series without gaps.
type DailySeries struct {
	Days          []DailyCount          `json:"days"`
	TotalCreated  int                   `json:"totalCreated"`
	TotalClosed   int                   `json:"totalClosed"`
	Excluded      []lifecycle.Exclusion `json:"excluded,omitempty"`
	ExcludedCount int                   `json:"excludedCount"`
}

// calendarDay maps an instant to midnight UTC of its calendar date in the
// instant's own offset, so days can be stepped without DST surprises.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BuildDailySeries counts creations and resolutions per calendar day over
// the full span of observed dates, zero-filling quiet days. Records without
// a creation timestamp are excluded; unresolved records only count as created.
func BuildDailySeries(records []lifecycle.IssueRecord) DailySeries {
	created := make(map[time.Time]int)
	closed := make(map[time.Time]int)
	var series DailySeries
	var first, last time.Time

	track := func(day time.Time) {
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}

	for _, rec := range records {
		if rec.Created.IsZero() {
			series.Excluded = append(series.Excluded, lifecycle.Exclusion{
				Key:    rec.Key,
				Kind:   lifecycle.ErrDataIncomplete.Error(),
				Detail: "missing creation timestamp",
			})
			continue
		}
		day := calendarDay(rec.Created)
		created[day]++
		series.TotalCreated++
		track(day)

		if rec.Resolved != nil && !rec.Resolved.IsZero() {
			day := calendarDay(*rec.Resolved)
			closed[day]++
			series.TotalClosed++
			track(day)
		}
	}
	series.ExcludedCount = len(series.Excluded)

	if first.IsZero() {
		return series
	}

	cumCreated, cumClosed := 0, 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		cumCreated += created[day]
		cumClosed += closed[day]
		series.Days = append(series.Days, DailyCount{
			Date:              day.Format(dateLayout),
			Created:           created[day],
			Closed:            closed[day],
			CumulativeCreated: cumCreated,
			CumulativeClosed:  cumClosed,
		})
	}
	return series
}
