package stats

import (
	"math"
	"slices"

	"issue-lifecycle/internal/lifecycle"

	"github.com/samber/lo"
)

// GroupByState collects the duration of every interval under its state label.
func GroupByState(perIssue [][]lifecycle.StateInterval) map[string][]float64 {
	byState := make(map[string][]float64)
	for _, intervals := range perIssue {
		for _, iv := range intervals {
			byState[iv.State] = append(byState[iv.State], iv.Hours)
		}
	}
	return byState
}

// StateDistribution summarizes how long tickets stayed in one state.
type StateDistribution struct {
	State      string    `json:"state"`
	Count      int       `json:"count"`
	TotalHours float64   `json:"totalHours"`
	P50        float64   `json:"p50"`
	P85        float64   `json:"p85"`
	P95        float64   `json:"p95"`
	Hours      []float64 `json:"hours"`
	Histogram  Histogram `json:"histogram"`
}

// SummarizeStates turns grouped durations into per-state distributions
// ordered by state name, each with a histogram of the given bin count.
func SummarizeStates(byState map[string][]float64, bins int) []StateDistribution {
	states := lo.Keys(byState)
	slices.Sort(states)

	results := make([]StateDistribution, 0, len(states))
	for _, state := range states {
		hours := byState[state]
		sorted := slices.Clone(hours)
		slices.Sort(sorted)

		results = append(results, StateDistribution{
			State:      state,
			Count:      len(hours),
			TotalHours: lo.Sum(hours),
			P50:        math.Round(Percentile(sorted, 0.50)*10) / 10,
			P85:        math.Round(Percentile(sorted, 0.85)*10) / 10,
			P95:        math.Round(Percentile(sorted, 0.95)*10) / 10,
			Hours:      hours,
			Histogram:  EqualWidthHistogram(hours, bins),
		})
	}
	return results
}
