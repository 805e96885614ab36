package mcp

import (
	"fmt"
	"time"

	"issue-lifecycle/internal/analysis"
	"issue-lifecycle/internal/lifecycle"
	"issue-lifecycle/internal/stats"
)

// maxListedExclusions caps the exclusion keys echoed back to the client;
// counts are always complete.
const maxListedExclusions = 50

// Response is the envelope every tool returns.
type Response struct {
	Data        any         `json:"data"`
	Diagnostics Diagnostics `json:"diagnostics"`
	Guidance    []string    `json:"_guidance,omitempty"`
}

// Diagnostics reports which issues did not contribute to a result and why.
type Diagnostics struct {
	Issues                 int                   `json:"issues"`
	ExcludedCount          int                   `json:"excludedCount"`
	Excluded               []lifecycle.Exclusion `json:"excluded,omitempty"`
	IngestionExcludedCount int                   `json:"ingestionExcludedCount"`
}

func (s *Server) wrap(data any, excluded []lifecycle.Exclusion, guidance ...string) Response {
	listed := excluded
	if len(listed) > maxListedExclusions {
		listed = listed[:maxListedExclusions]
	}
	return Response{
		Data: data,
		Diagnostics: Diagnostics{
			Issues:                 len(s.records),
			ExcludedCount:          len(excluded),
			Excluded:               listed,
			IngestionExcludedCount: len(s.ingestion),
		},
		Guidance: guidance,
	}
}

// DurationInput controls histogram resolution for duration tools.
type DurationInput struct {
	Bins int `json:"bins,omitempty" jsonschema:"number of equal-width histogram bins, default 20"`
}

func (s *Server) handleOpenTime(in DurationInput) (any, error) {
	e, err := s.engine(func(o *analysis.Options) {
		if in.Bins > 0 {
			o.HistogramBins = in.Bins
		}
	})
	if err != nil {
		return nil, err
	}
	res, err := e.OpenTime(s.records)
	if err != nil {
		return nil, err
	}
	return s.wrap(res, res.Excluded, overflowGuidance(res.Buckets)...), nil
}

func (s *Server) handleWorkDuration(in DurationInput) (any, error) {
	e, err := s.engine(func(o *analysis.Options) {
		if in.Bins > 0 {
			o.HistogramBins = in.Bins
		}
	})
	if err != nil {
		return nil, err
	}
	res, err := e.WorkTime(s.records)
	if err != nil {
		return nil, err
	}
	guidance := overflowGuidance(res.Buckets)
	if res.ExcludedCount > 0 {
		guidance = append(guidance, fmt.Sprintf(
			"%d issues never entered one of %v or never reached %q and are not part of this distribution.",
			res.ExcludedCount, e.Options().Anchors.Start, e.Options().Anchors.End))
	}
	return s.wrap(res, res.Excluded, guidance...), nil
}

func overflowGuidance(b stats.BucketResult) []string {
	var out []string
	if b.Overflow > 0 {
		out = append(out, fmt.Sprintf("%d of %d durations exceed the largest bucket and are reported as overflow.", b.Overflow, b.Total))
	}
	if b.Underflow > 0 {
		out = append(out, fmt.Sprintf("%d of %d durations are negative and are reported as underflow; check for closures recorded before work started.", b.Underflow, b.Total))
	}
	return out
}

// StateInput optionally narrows the residency result to one status.
type StateInput struct {
	State string `json:"state,omitempty" jsonschema:"only return this status"`
	Bins  int    `json:"bins,omitempty" jsonschema:"number of equal-width histogram bins, default 20"`
}

func (s *Server) handleStateResidency(in StateInput) (any, error) {
	e, err := s.engine(func(o *analysis.Options) {
		if in.Bins > 0 {
			o.HistogramBins = in.Bins
		}
	})
	if err != nil {
		return nil, err
	}
	res, err := e.States(s.records)
	if err != nil {
		return nil, err
	}
	if in.State != "" {
		var filtered []stats.StateDistribution
		for _, sd := range res.States {
			if sd.State == in.State {
				filtered = append(filtered, sd)
			}
		}
		if filtered == nil {
			return nil, fmt.Errorf("status %q does not occur in the changelog", in.State)
		}
		res.States = filtered
	}
	return s.wrap(res, res.Excluded), nil
}

// WindowInput restricts a daily series to an inclusive date window.
type WindowInput struct {
	From string `json:"from,omitempty" jsonschema:"first day to return, YYYY-MM-DD"`
	To   string `json:"to,omitempty" jsonschema:"last day to return, YYYY-MM-DD"`
}

func (s *Server) handleCreatedClosed(in WindowInput) (any, error) {
	for _, d := range []string{in.From, in.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
		}
	}

	series := stats.BuildDailySeries(s.records)
	if in.From != "" || in.To != "" {
		// Cumulative columns keep counting from the first day of the full span.
		days := make([]stats.DailyCount, 0, len(series.Days))
		for _, d := range series.Days {
			if (in.From == "" || d.Date >= in.From) && (in.To == "" || d.Date <= in.To) {
				days = append(days, d)
			}
		}
		series.Days = days
	}
	return s.wrap(series, series.Excluded), nil
}

// UserInput sets the ranking cut-off.
type UserInput struct {
	TopN int `json:"top_n,omitempty" jsonschema:"number of users to return, default 30; 0 uses the default"`
}

func (s *Server) handleUserDistribution(in UserInput) (any, error) {
	topN := s.cfg.Analysis.TopUsers
	if in.TopN > 0 {
		topN = in.TopN
	}
	dist := stats.CountUsers(s.records, topN)

	var guidance []string
	if dist.Other.Categories > 0 {
		guidance = append(guidance, fmt.Sprintf(
			"%d further users with %d assignments/reports in total are not listed.", dist.Other.Categories, dist.Other.Weight))
	}
	return s.wrap(dist, nil, guidance...), nil
}

// PriorityInput selects strict handling of unknown priorities.
type PriorityInput struct {
	Strict bool `json:"strict,omitempty" jsonschema:"fail instead of counting unknown priorities as Undefined"`
}

func (s *Server) handlePriority(in PriorityInput) (any, error) {
	dist, err := stats.CountPriorities(s.records, in.Strict || s.cfg.Analysis.StrictPriority)
	if err != nil {
		return nil, err
	}
	return s.wrap(dist, dist.Unknown), nil
}
