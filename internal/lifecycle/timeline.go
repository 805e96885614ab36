package lifecycle

import (
	"slices"
	"strings"
	"time"
)

// InitialState labels the single interval of a ticket that never changed status.
const InitialState = "(no status change)"

// ExtractTransitions collects status changes from a changelog and orders
// them chronologically. Events sharing an instant keep their input order.
func ExtractTransitions(events []ChangelogEvent) []StatusTransition {
	var transitions []StatusTransition
	for _, e := range events {
		for _, itm := range e.Items {
			if strings.EqualFold(itm.Field, "status") {
				transitions = append(transitions, StatusTransition{
					From: itm.From,
					To:   itm.To,
					At:   e.At,
				})
			}
		}
	}

	slices.SortStableFunc(transitions, func(a, b StatusTransition) int {
		return a.At.Compare(b.At)
	})
	return transitions
}

// BuildIntervals splits a resolved ticket's lifetime into per-state
// intervals. transitions must be sorted, as returned by ExtractTransitions.
//
// The time before the first transition belongs to its From state, the time
// after the last transition belongs to its To state. Zero-length intervals
// are kept; a negative one means the timestamps are inconsistent and the
// ticket is rejected with ErrMalformedTimestamp.
func BuildIntervals(rec IssueRecord, transitions []StatusTransition) ([]StateInterval, error) {
	if rec.Created.IsZero() {
		return nil, issueErr(rec.Key, ErrDataIncomplete, "missing creation timestamp")
	}
	if rec.Resolved == nil || rec.Resolved.IsZero() {
		return nil, issueErr(rec.Key, ErrDataIncomplete, "missing resolution timestamp")
	}
	resolved := *rec.Resolved
	if resolved.Before(rec.Created) {
		return nil, issueErr(rec.Key, ErrMalformedTimestamp, "resolved %s before created %s",
			resolved.Format(time.RFC3339), rec.Created.Format(time.RFC3339))
	}

	if len(transitions) == 0 {
		return []StateInterval{newInterval(InitialState, rec.Created, resolved)}, nil
	}

	for i := 1; i < len(transitions); i++ {
		if transitions[i].At.Before(transitions[i-1].At) {
			return nil, issueErr(rec.Key, ErrMalformedTimestamp, "transitions are not in chronological order")
		}
	}
	first, last := transitions[0], transitions[len(transitions)-1]
	if first.At.Before(rec.Created) {
		return nil, issueErr(rec.Key, ErrMalformedTimestamp, "transition %q -> %q at %s precedes creation",
			first.From, first.To, first.At.Format(time.RFC3339))
	}
	if last.At.After(resolved) {
		return nil, issueErr(rec.Key, ErrMalformedTimestamp, "transition %q -> %q at %s follows resolution",
			last.From, last.To, last.At.Format(time.RFC3339))
	}

	intervals := make([]StateInterval, 0, len(transitions)+1)
	start := rec.Created
	for _, t := range transitions {
		intervals = append(intervals, newInterval(t.From, start, t.At))
		start = t.At
	}
	intervals = append(intervals, newInterval(last.To, last.At, resolved))

	return intervals, nil
}

func newInterval(state string, start, end time.Time) StateInterval {
	return StateInterval{
		State: state,
		Start: start,
		End:   end,
		Hours: end.Sub(start).Hours(),
	}
}

// Residency sums interval hours per state for a single ticket.
func Residency(intervals []StateInterval) map[string]float64 {
	residency := make(map[string]float64)
	for _, iv := range intervals {
		residency[iv.State] += iv.Hours
	}
	return residency
}

// OpenHours returns the time from creation to resolution in hours.
func OpenHours(rec IssueRecord) (float64, error) {
	if rec.Created.IsZero() {
		return 0, issueErr(rec.Key, ErrDataIncomplete, "missing creation timestamp")
	}
	if rec.Resolved == nil || rec.Resolved.IsZero() {
		return 0, issueErr(rec.Key, ErrDataIncomplete, "missing resolution timestamp")
	}
	if rec.Resolved.Before(rec.Created) {
		return 0, issueErr(rec.Key, ErrMalformedTimestamp, "resolved before created")
	}
	return rec.Resolved.Sub(rec.Created).Hours(), nil
}

// WorkAnchors names the states that start and end the work clock.
type WorkAnchors struct {
	Start []string
	End   string
}

// DefaultWorkAnchors starts the clock on entering In Progress or Open and
// stops it on entering Closed.
func DefaultWorkAnchors() WorkAnchors {
	return WorkAnchors{Start: []string{"In Progress", "Open"}, End: "Closed"}
}

// WorkDuration measures hours from the first transition into a start state
// to the first transition into the end state. Tickets lacking either anchor
// are rejected with ErrDataIncomplete. The result may be negative when the
// ticket closed before it started; callers classify that as underflow.
func WorkDuration(key string, transitions []StatusTransition, anchors WorkAnchors) (float64, error) {
	var started, closed *time.Time
	for i := range transitions {
		t := &transitions[i]
		if closed == nil && t.To == anchors.End {
			closed = &t.At
		} else if started == nil && slices.Contains(anchors.Start, t.To) {
			started = &t.At
		}
	}
	if started == nil {
		return 0, issueErr(key, ErrDataIncomplete, "no transition into %s", strings.Join(anchors.Start, "/"))
	}
	if closed == nil {
		return 0, issueErr(key, ErrDataIncomplete, "no transition into %s", anchors.End)
	}
	return closed.Sub(*started).Hours(), nil
}
