package jira

import "time"

// SearchResponse is the top-level container of a Jira search export.
type SearchResponse struct {
	Total  int        `json:"total"`
	Issues []IssueDTO `json:"issues"`
}

// IssueDTO represents a single issue in the Jira search response.
type IssueDTO struct {
	Key       string        `json:"key"`
	Fields    FieldsDTO     `json:"fields"`
	Changelog *ChangelogDTO `json:"changelog,omitempty"`
}

// FieldsDTO contains the specific fields we care about.
type FieldsDTO struct {
	Status struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"status"`
	ResolutionDate string       `json:"resolutiondate"`
	Created        string       `json:"created"`
	Assignee       *UserDTO     `json:"assignee"`
	Reporter       *UserDTO     `json:"reporter"`
	Priority       *PriorityDTO `json:"priority"`
}

// UserDTO is an assignee or reporter. Jira sends null for nobody.
type UserDTO struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
}

// PriorityDTO is the issue priority. Jira sends null when unset.
type PriorityDTO struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// ChangelogDTO contains historical transitions.
type ChangelogDTO struct {
	Histories []HistoryDTO `json:"histories"`
}

// HistoryDTO is a single entry in the changelog.
type HistoryDTO struct {
	Created string    `json:"created"`
	Items   []ItemDTO `json:"items"`
}

// ItemDTO is a single field change within a history entry.
type ItemDTO struct {
	Field      string `json:"field"`
	FromString string `json:"fromString"`
	ToString   string `json:"toString"`
	From       string `json:"from"` // ID
	To         string `json:"to"`   // ID
}

// TimeLayout is the strict Jira timestamp format.
const TimeLayout = "2006-01-02T15:04:05.000-0700"

// fallbackLayouts cover exports without milliseconds (Go accepts an optional
// fractional second after the seconds field when parsing) and exports that
// have been round-tripped through RFC 3339 tooling.
var fallbackLayouts = []string{
	"2006-01-02T15:04:05Z0700",
	time.RFC3339Nano,
}

// ParseTime parses a Jira timestamp.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, fbErr := time.Parse(layout, s); fbErr == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
