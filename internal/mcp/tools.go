package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools(server *sdk.Server) {
	sdk.AddTool(server, &sdk.Tool{
		Name: "analyze_open_time",
		Description: "Distribution of the time each closed issue stayed open (creation to resolution), in hours. " +
			"Returns an equal-width histogram and the fixed resolution-time buckets, including explicit underflow/overflow counts.",
	}, handle(s.handleOpenTime))

	sdk.AddTool(server, &sdk.Tool{
		Name: "analyze_state_residency",
		Description: "Time spent in each workflow status, reconstructed from the status changelog. " +
			"Returns one distribution per status with P50/P85/P95 and a histogram.",
	}, handle(s.handleStateResidency))

	sdk.AddTool(server, &sdk.Tool{
		Name: "analyze_created_closed",
		Description: "Daily created and closed issue counts on a gap-free date axis, with cumulative totals. " +
			"Optionally restricted to a date window (YYYY-MM-DD).",
	}, handle(s.handleCreatedClosed))

	sdk.AddTool(server, &sdk.Tool{
		Name: "analyze_user_distribution",
		Description: "Issue counts per user split by role (assignee, reporter), ranked by total. " +
			"Entries beyond top_n are dropped from the list and summarized under 'other'.",
	}, handle(s.handleUserDistribution))

	sdk.AddTool(server, &sdk.Tool{
		Name: "analyze_work_duration",
		Description: "Time from the first transition into a start status (default In Progress/Open) to the first transition into Closed, " +
			"bucketed into fixed hour ranges. Issues lacking either transition are excluded and counted.",
	}, handle(s.handleWorkDuration))

	sdk.AddTool(server, &sdk.Tool{
		Name:        "analyze_priority",
		Description: "Issue counts per priority in canonical order (Critical, Blocker, Major, Minor, Trivial, Undefined).",
	}, handle(s.handlePriority))
}

// handle adapts a plain handler to the SDK's typed tool handler.
func handle[In any](h func(In) (any, error)) sdk.ToolHandlerFor[In, any] {
	return func(ctx context.Context, req *sdk.CallToolRequest, in In) (*sdk.CallToolResult, any, error) {
		out, err := h(in)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	}
}
