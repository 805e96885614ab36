package lifecycle

import "time"

// IssueRecord is the normalized form of one ticket and its raw changelog.
type IssueRecord struct {
	Key      string
	Created  time.Time
	Resolved *time.Time
	// Status is the ticket's current status as reported by the tracker.
	Status    string
	Assignee  Category
	Reporter  Category
	Priority  Category
	Changelog []ChangelogEvent
}

// ChangelogEvent is a timestamped group of field changes.
type ChangelogEvent struct {
	At    time.Time
	Items []FieldChange
}

// FieldChange is a single field change within a changelog event.
type FieldChange struct {
	Field string
	From  string
	To    string
}

// StatusTransition is a status change derived from the changelog.
type StatusTransition struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	At   time.Time `json:"at"`
}

// StateInterval is a contiguous span during which a ticket held one state.
type StateInterval struct {
	State string    `json:"state"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Hours float64   `json:"hours"`
}

// Category is a discrete attribute value (user, priority) where a missing
// value is its own variant rather than a placeholder string.
type Category struct {
	Name    string `json:"name,omitempty"`
	Missing bool   `json:"missing,omitempty"`
}

// Fallback labels for missing categories.
const (
	UnassignedLabel      = "Unassigned"
	UnknownReporterLabel = "Unknown Reporter"
	UndefinedLabel       = "Undefined"
)

// Named returns a present category value. An empty name is treated as missing.
func Named(name string) Category {
	if name == "" {
		return Category{Missing: true}
	}
	return Category{Name: name}
}

// Missing returns the sentinel for an absent value.
func Missing() Category {
	return Category{Missing: true}
}

// Label returns the display label, using fallback for a missing value.
func (c Category) Label(fallback string) string {
	if c.Missing {
		return fallback
	}
	return c.Name
}
