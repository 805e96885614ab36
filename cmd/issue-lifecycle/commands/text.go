package commands

import (
	"fmt"
	"io"
	"strings"

	"issue-lifecycle/internal/analysis"
	"issue-lifecycle/internal/stats"

	"github.com/fatih/color"
)

// writeText prints a terminal summary of a report. Colors are disabled
// automatically by fatih/color when stdout is not a terminal.
func writeText(w io.Writer, r *analysis.Report) {
	header := color.New(color.FgCyan, color.Bold).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", header("Run"), gray(r.RunID))
	fmt.Fprintf(w, "Issues analyzed: %d", r.Issues)
	if r.IngestionExcludedCount > 0 {
		fmt.Fprintf(w, " %s", warn(fmt.Sprintf("(%d rejected at ingestion)", r.IngestionExcludedCount)))
	}
	fmt.Fprintln(w)

	section := func(title string, excluded int) {
		fmt.Fprintf(w, "\n%s", header(title))
		if excluded > 0 {
			fmt.Fprintf(w, " %s", warn(fmt.Sprintf("[%d excluded]", excluded)))
		}
		fmt.Fprintln(w)
	}

	section("Time open (hours)", r.OpenTime.ExcludedCount)
	writeBuckets(w, r.OpenTime.Buckets, warn)

	section("Time in status (hours)", r.States.ExcludedCount)
	for _, s := range r.States.States {
		fmt.Fprintf(w, "  %-24s n=%-6d p50=%-8.1f p85=%-8.1f p95=%.1f\n", s.State, s.Count, s.P50, s.P85, s.P95)
	}

	section("Created / closed", r.Timeline.ExcludedCount)
	if n := len(r.Timeline.Days); n > 0 {
		first, last := r.Timeline.Days[0], r.Timeline.Days[n-1]
		fmt.Fprintf(w, "  %s .. %s (%d days): %d created, %d closed\n",
			first.Date, last.Date, n, last.CumulativeCreated, last.CumulativeClosed)
	}

	section("Users", 0)
	for _, u := range r.Users.Users {
		fmt.Fprintf(w, "  %-30s %4d  (assignee %d, reporter %d)\n",
			u.Label, u.Total, u.ByRole[stats.RoleAssignee], u.ByRole[stats.RoleReporter])
	}
	if r.Users.Other.Categories > 0 {
		fmt.Fprintf(w, "  %s\n", gray(fmt.Sprintf("... %d more users, %d entries not shown", r.Users.Other.Categories, r.Users.Other.Weight)))
	}

	section("Work duration (hours)", r.WorkTime.ExcludedCount)
	writeBuckets(w, r.WorkTime.Buckets, warn)

	section("Priority", len(r.Priorities.Unknown))
	for _, p := range r.Priorities.Priorities {
		fmt.Fprintf(w, "  %-10s %5d %s\n", p.Priority, p.Count, strings.Repeat("#", bar(p.Count, r.Priorities.Total)))
	}
}

func writeBuckets(w io.Writer, b stats.BucketResult, warn func(a ...interface{}) string) {
	for _, bucket := range b.Buckets {
		fmt.Fprintf(w, "  %-10s %5d %s\n", bucket.Label, bucket.Count, strings.Repeat("#", bar(bucket.Count, b.Total)))
	}
	if b.Underflow > 0 {
		fmt.Fprintf(w, "  %-10s %5d\n", warn("underflow"), b.Underflow)
	}
	if b.Overflow > 0 {
		fmt.Fprintf(w, "  %-10s %5d\n", warn("overflow"), b.Overflow)
	}
}

// bar scales a count to at most 40 characters.
func bar(count, total int) int {
	if total == 0 {
		return 0
	}
	return count * 40 / total
}
