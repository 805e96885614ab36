package stats

import (
	"cmp"
	"fmt"
	"slices"

	"issue-lifecycle/internal/lifecycle"

	"github.com/samber/lo"
)

// Roles used when counting users.
const (
	RoleAssignee = "Assignee"
	RoleReporter = "Reporter"
)

// DefaultTopUsers is the display cut-off for user rankings.
const DefaultTopUsers = 30

// Observation is one weighted occurrence of a category under a role.
// Fallback labels the category when it is missing; missing values with
// different fallbacks are counted apart.
type Observation struct {
	Category lifecycle.Category
	Fallback string
	Role     string
	Weight   int
}

// CategoryCount is one category's weight split by role.
type CategoryCount struct {
	Category lifecycle.Category `json:"category"`
	Label    string             `json:"label"`
	ByRole   map[string]int     `json:"byRole"`
	Total    int                `json:"total"`
}

type tallyKey struct {
	cat      lifecycle.Category
	fallback string
}

// Tally sums observation weights per category and role. The result is
// ordered by descending total, then label.
func Tally(obs []Observation) []CategoryCount {
	index := make(map[tallyKey]int)
	var counts []CategoryCount
	for _, o := range obs {
		key := tallyKey{cat: o.Category}
		if o.Category.Missing {
			key.fallback = o.Fallback
		}
		i, ok := index[key]
		if !ok {
			i = len(counts)
			index[key] = i
			counts = append(counts, CategoryCount{
				Category: o.Category,
				Label:    o.Category.Label(o.Fallback),
				ByRole:   make(map[string]int),
			})
		}
		counts[i].ByRole[o.Role] += o.Weight
		counts[i].Total += o.Weight
	}

	slices.SortFunc(counts, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return counts
}

// TruncatedTail describes the categories dropped by a top-N cut.
type TruncatedTail struct {
	Categories int `json:"categories"`
	Weight     int `json:"weight"`
}

// UserDistribution ranks users by total involvement. Truncation is lossy:
// entries beyond TopN are removed from Users and only summarized in Other.
type UserDistribution struct {
	Users       []CategoryCount `json:"users"`
	TopN        int             `json:"topN"`
	Other       TruncatedTail   `json:"other"`
	TotalWeight int             `json:"totalWeight"`
}

// CountUsers counts each ticket once for its assignee and once for its
// reporter, ranks users by descending total and keeps the first topN.
// A topN of zero or less keeps everyone.
func CountUsers(records []lifecycle.IssueRecord, topN int) UserDistribution {
	obs := make([]Observation, 0, 2*len(records))
	for _, rec := range records {
		obs = append(obs,
			Observation{Category: rec.Assignee, Fallback: lifecycle.UnassignedLabel, Role: RoleAssignee, Weight: 1},
			Observation{Category: rec.Reporter, Fallback: lifecycle.UnknownReporterLabel, Role: RoleReporter, Weight: 1},
		)
	}

	users := Tally(obs)
	dist := UserDistribution{
		TopN:        topN,
		TotalWeight: lo.SumBy(users, func(u CategoryCount) int { return u.Total }),
	}
	if topN > 0 && len(users) > topN {
		tail := users[topN:]
		dist.Other = TruncatedTail{
			Categories: len(tail),
			Weight:     lo.SumBy(tail, func(u CategoryCount) int { return u.Total }),
		}
		users = users[:topN]
	}
	dist.Users = users
	return dist
}

// PriorityOrder is the canonical severity order; Undefined is the catch-all.
var PriorityOrder = []string{"Critical", "Blocker", "Major", "Minor", "Trivial", lifecycle.UndefinedLabel}

// PriorityCount is the number of tickets at one priority.
type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

// PriorityDistribution lists every canonical priority in order, zero-filled.
type PriorityDistribution struct {
	Priorities []PriorityCount       `json:"priorities"`
	Total      int                   `json:"total"`
	Unknown    []lifecycle.Exclusion `json:"unknown,omitempty"`
}

// CountPriorities counts tickets per canonical priority. A missing priority
// or the tracker's own "Undefined" value counts as Undefined. A value outside the canonical order also counts as
// Undefined and is reported in Unknown, unless strict is set, in which case
// the first such value fails the whole count with ErrUnknownCategory.
func CountPriorities(records []lifecycle.IssueRecord, strict bool) (PriorityDistribution, error) {
	counts := make(map[string]int, len(PriorityOrder))
	var dist PriorityDistribution

	for _, rec := range records {
		p := rec.Priority
		switch {
		case p.Missing:
			counts[lifecycle.UndefinedLabel]++
		case slices.Contains(PriorityOrder, p.Name):
			counts[p.Name]++
		default:
			if strict {
				return PriorityDistribution{}, fmt.Errorf("issue %s priority %q: %w", rec.Key, p.Name, lifecycle.ErrUnknownCategory)
			}
			counts[lifecycle.UndefinedLabel]++
			dist.Unknown = append(dist.Unknown, lifecycle.Exclusion{
				Key:    rec.Key,
				Kind:   lifecycle.ErrUnknownCategory.Error(),
				Detail: fmt.Sprintf("priority %q counted as %s", p.Name, lifecycle.UndefinedLabel),
			})
		}
		dist.Total++
	}

	dist.Priorities = make([]PriorityCount, len(PriorityOrder))
	for i, name := range PriorityOrder {
		dist.Priorities[i] = PriorityCount{Priority: name, Count: counts[name]}
	}
	return dist, nil
}
