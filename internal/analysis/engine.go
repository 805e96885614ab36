package analysis

import (
	"fmt"
	"runtime"
	"time"

	"issue-lifecycle/internal/lifecycle"
	"issue-lifecycle/internal/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Options tunes a single analysis run.
type Options struct {
	Workers        int
	TopUsers       int
	HistogramBins  int
	StrictPriority bool
	Buckets        []stats.BucketBound
	Anchors        lifecycle.WorkAnchors
}

// DefaultOptions returns the dashboard defaults: top 30 users, 20 histogram
// bins and the standard resolution buckets.
func DefaultOptions() Options {
	return Options{
		Workers:       runtime.NumCPU(),
		TopUsers:      stats.DefaultTopUsers,
		HistogramBins: 20,
		Buckets:       stats.DefaultResolutionBuckets(),
		Anchors:       lifecycle.DefaultWorkAnchors(),
	}
}

// Derived holds the per-ticket results for one record, at the same index
// as the record in the input slice.
type Derived struct {
	Transitions []lifecycle.StatusTransition
	Intervals   []lifecycle.StateInterval
	IntervalErr error
	OpenHours   float64
	OpenErr     error
	WorkHours   float64
	WorkErr     error
}

// Engine runs the lifecycle analyses over a materialized record set.
type Engine struct {
	opts Options
}

// NewEngine creates an engine, filling unset options with defaults.
func NewEngine(opts Options) (*Engine, error) {
	def := DefaultOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = def.HistogramBins
	}
	if len(opts.Buckets) == 0 {
		opts.Buckets = def.Buckets
	}
	if len(opts.Anchors.Start) == 0 {
		opts.Anchors.Start = def.Anchors.Start
	}
	if opts.Anchors.End == "" {
		opts.Anchors.End = def.Anchors.End
	}
	if err := stats.ValidateBuckets(opts.Buckets); err != nil {
		return nil, fmt.Errorf("invalid duration buckets: %w", err)
	}
	return &Engine{opts: opts}, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Derive computes transitions, intervals and scalar durations for every
// record. Records are independent, so the work fans out over a bounded
// pool and each goroutine writes only its own slot.
func (e *Engine) Derive(records []lifecycle.IssueRecord) []Derived {
	out := make([]Derived, len(records))

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i := range records {
		g.Go(func() error {
			rec := records[i]
			d := &out[i]
			d.Transitions = lifecycle.ExtractTransitions(rec.Changelog)
			d.Intervals, d.IntervalErr = lifecycle.BuildIntervals(rec, d.Transitions)
			d.OpenHours, d.OpenErr = lifecycle.OpenHours(rec)
			d.WorkHours, d.WorkErr = lifecycle.WorkDuration(rec.Key, d.Transitions, e.opts.Anchors)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// DurationReport is a per-ticket scalar duration with its classifications.
type DurationReport struct {
	Hours         []float64             `json:"hours"`
	Median        float64               `json:"median"`
	Histogram     stats.Histogram       `json:"histogram"`
	Buckets       stats.BucketResult    `json:"buckets"`
	Excluded      []lifecycle.Exclusion `json:"excluded,omitempty"`
	ExcludedCount int                   `json:"excludedCount"`
}

// StateReport is the per-state residency distribution.
type StateReport struct {
	States        []stats.StateDistribution `json:"states"`
	Intervals     int                       `json:"intervals"`
	Excluded      []lifecycle.Exclusion     `json:"excluded,omitempty"`
	ExcludedCount int                       `json:"excludedCount"`
}

// Report bundles every analysis of one run. Issues counts the records that
// reached the engine; IngestionExcluded lists those rejected before that.
type Report struct {
	RunID                  string                     `json:"runId"`
	Issues                 int                        `json:"issues"`
	IngestionExcluded      []lifecycle.Exclusion      `json:"ingestionExcluded,omitempty"`
	IngestionExcludedCount int                        `json:"ingestionExcludedCount"`
	OpenTime               DurationReport             `json:"openTime"`
	States                 StateReport                `json:"states"`
	Timeline               stats.DailySeries          `json:"timeline"`
	Users                  stats.UserDistribution     `json:"users"`
	WorkTime               DurationReport             `json:"workTime"`
	Priorities             stats.PriorityDistribution `json:"priorities"`
}

// SetIngestion records the issues that could not be mapped to records.
func (r *Report) SetIngestion(excluded []lifecycle.Exclusion) {
	r.IngestionExcluded = excluded
	r.IngestionExcludedCount = len(excluded)
}

// Run performs every analysis. Only an absent record collection or a strict
// priority violation fails the run; per-ticket problems become exclusions.
func (e *Engine) Run(records []lifecycle.IssueRecord) (*Report, error) {
	if records == nil {
		return nil, lifecycle.ErrNoRecords
	}

	runID := uuid.NewString()
	start := time.Now()
	derived := e.Derive(records)

	priorities, err := stats.CountPriorities(records, e.opts.StrictPriority)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:      runID,
		Issues:     len(records),
		OpenTime:   e.openTime(records, derived),
		States:     e.states(records, derived),
		Timeline:   stats.BuildDailySeries(records),
		Users:      stats.CountUsers(records, e.opts.TopUsers),
		WorkTime:   e.workTime(records, derived),
		Priorities: priorities,
	}

	log.Info().
		Str("run", runID).
		Int("issues", report.Issues).
		Int("openTimeExcluded", report.OpenTime.ExcludedCount).
		Int("statesExcluded", report.States.ExcludedCount).
		Int("workTimeExcluded", report.WorkTime.ExcludedCount).
		Int("timelineExcluded", report.Timeline.ExcludedCount).
		Int("unknownPriorities", len(report.Priorities.Unknown)).
		Dur("elapsed", time.Since(start)).
		Msg("Analysis complete")

	return report, nil
}

// OpenTime analyzes creation-to-resolution time.
func (e *Engine) OpenTime(records []lifecycle.IssueRecord) (DurationReport, error) {
	if records == nil {
		return DurationReport{}, lifecycle.ErrNoRecords
	}
	return e.openTime(records, e.Derive(records)), nil
}

// States analyzes time spent per workflow state.
func (e *Engine) States(records []lifecycle.IssueRecord) (StateReport, error) {
	if records == nil {
		return StateReport{}, lifecycle.ErrNoRecords
	}
	return e.states(records, e.Derive(records)), nil
}

// WorkTime analyzes start-to-close work duration.
func (e *Engine) WorkTime(records []lifecycle.IssueRecord) (DurationReport, error) {
	if records == nil {
		return DurationReport{}, lifecycle.ErrNoRecords
	}
	return e.workTime(records, e.Derive(records)), nil
}

func (e *Engine) openTime(records []lifecycle.IssueRecord, derived []Derived) DurationReport {
	hours := make([]float64, 0, len(records))
	var excluded []lifecycle.Exclusion
	for i, d := range derived {
		if d.OpenErr != nil {
			excluded = append(excluded, exclude(records[i].Key, d.OpenErr))
			continue
		}
		hours = append(hours, d.OpenHours)
	}
	return e.durationReport(hours, excluded)
}

func (e *Engine) workTime(records []lifecycle.IssueRecord, derived []Derived) DurationReport {
	hours := make([]float64, 0, len(records))
	var excluded []lifecycle.Exclusion
	for i, d := range derived {
		if d.WorkErr != nil {
			excluded = append(excluded, exclude(records[i].Key, d.WorkErr))
			continue
		}
		hours = append(hours, d.WorkHours)
	}
	return e.durationReport(hours, excluded)
}

func (e *Engine) durationReport(hours []float64, excluded []lifecycle.Exclusion) DurationReport {
	return DurationReport{
		Hours:         hours,
		Median:        stats.CalculateMedianContinuous(hours),
		Histogram:     stats.EqualWidthHistogram(hours, e.opts.HistogramBins),
		Buckets:       stats.BucketDurations(hours, e.opts.Buckets),
		Excluded:      excluded,
		ExcludedCount: len(excluded),
	}
}

func (e *Engine) states(records []lifecycle.IssueRecord, derived []Derived) StateReport {
	perIssue := make([][]lifecycle.StateInterval, 0, len(records))
	var excluded []lifecycle.Exclusion
	intervals := 0
	for i, d := range derived {
		if d.IntervalErr != nil {
			excluded = append(excluded, exclude(records[i].Key, d.IntervalErr))
			continue
		}
		perIssue = append(perIssue, d.Intervals)
		intervals += len(d.Intervals)
	}
	return StateReport{
		States:        stats.SummarizeStates(stats.GroupByState(perIssue), e.opts.HistogramBins),
		Intervals:     intervals,
		Excluded:      excluded,
		ExcludedCount: len(excluded),
	}
}

// exclude converts a per-ticket error to an Exclusion and logs data-quality
// problems. Missing anchors are routine and only logged at debug level.
func exclude(key string, err error) lifecycle.Exclusion {
	ex := lifecycle.ToExclusion(key, err)
	if ex.Kind == lifecycle.ErrMalformedTimestamp.Error() {
		log.Warn().Str("issue", ex.Key).Str("kind", ex.Kind).Msg(ex.Detail)
	} else {
		log.Debug().Str("issue", ex.Key).Str("kind", ex.Kind).Msg(ex.Detail)
	}
	return ex
}
