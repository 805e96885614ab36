package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"issue-lifecycle/internal/analysis"
	"issue-lifecycle/internal/lifecycle"

	"github.com/spf13/cobra"
)

var analyses = []string{"all", "open-time", "states", "timeline", "users", "work-time", "priority"}

var (
	reportAnalysis string
	reportFormat   string
	reportTop      int
	reportBins     int
	reportStrict   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the lifecycle analyses and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(analyses, reportAnalysis) {
			return fmt.Errorf("unknown analysis %q, expected one of %v", reportAnalysis, analyses)
		}
		if reportFormat != "json" && reportFormat != "text" {
			return fmt.Errorf("unknown format %q, expected json or text", reportFormat)
		}

		records, ingestion, err := loadRecords()
		if err != nil {
			return err
		}

		opts := cfg.Analysis
		if cmd.Flags().Changed("top") {
			opts.TopUsers = reportTop
		}
		if cmd.Flags().Changed("bins") {
			opts.HistogramBins = reportBins
		}
		if cmd.Flags().Changed("strict") {
			opts.StrictPriority = reportStrict
		}
		engine, err := analysis.NewEngine(opts)
		if err != nil {
			return err
		}

		report, err := engine.Run(records)
		if err != nil {
			return err
		}
		report.SetIngestion(ingestion)

		out := cmd.OutOrStdout()
		if reportFormat == "text" {
			writeText(out, report)
			return nil
		}
		return writeJSON(out, selectAnalysis(report, reportAnalysis))
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportAnalysis, "analysis", "a", "all", fmt.Sprintf("analysis to print, one of %v", analyses))
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "json", "output format: json or text")
	reportCmd.Flags().IntVar(&reportTop, "top", 30, "number of users to list; 0 lists everyone")
	reportCmd.Flags().IntVar(&reportBins, "bins", 20, "equal-width histogram bins")
	reportCmd.Flags().BoolVar(&reportStrict, "strict", false, "fail on priorities outside the canonical order")
}

// sectionOutput wraps a single analysis so run-level counts, including
// issues rejected at ingestion, are never lost from the output.
type sectionOutput struct {
	RunID                  string                `json:"runId"`
	Analysis               string                `json:"analysis"`
	Issues                 int                   `json:"issues"`
	IngestionExcluded      []lifecycle.Exclusion `json:"ingestionExcluded,omitempty"`
	IngestionExcludedCount int                   `json:"ingestionExcludedCount"`
	Data                   any                   `json:"data"`
}

func selectAnalysis(r *analysis.Report, name string) any {
	var data any
	switch name {
	case "open-time":
		data = r.OpenTime
	case "states":
		data = r.States
	case "timeline":
		data = r.Timeline
	case "users":
		data = r.Users
	case "work-time":
		data = r.WorkTime
	case "priority":
		data = r.Priorities
	default:
		return r
	}
	return sectionOutput{
		RunID:                  r.RunID,
		Analysis:               name,
		Issues:                 r.Issues,
		IngestionExcluded:      r.IngestionExcluded,
		IngestionExcludedCount: r.IngestionExcludedCount,
		Data:                   data,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
