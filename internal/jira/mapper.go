package jira

import (
	"errors"

	"issue-lifecycle/internal/lifecycle"

	"github.com/rs/zerolog/log"
)

// MapIssue transforms a Jira DTO into an IssueRecord. A missing creation
// timestamp is ErrDataIncomplete; any unparseable timestamp is
// ErrMalformedTimestamp. A missing resolution date leaves Resolved nil.
func MapIssue(item IssueDTO) (lifecycle.IssueRecord, error) {
	rec := lifecycle.IssueRecord{
		Key:      item.Key,
		Status:   item.Fields.Status.Name,
		Assignee: userCategory(item.Fields.Assignee),
		Reporter: userCategory(item.Fields.Reporter),
		Priority: lifecycle.Missing(),
	}
	if p := item.Fields.Priority; p != nil {
		rec.Priority = lifecycle.Named(p.Name)
	}

	if item.Fields.Created == "" {
		return rec, &lifecycle.IssueError{Key: item.Key, Kind: lifecycle.ErrDataIncomplete, Detail: "missing created field"}
	}
	created, err := ParseTime(item.Fields.Created)
	if err != nil {
		return rec, malformed(item.Key, "created", err)
	}
	rec.Created = created

	if item.Fields.ResolutionDate != "" {
		resolved, err := ParseTime(item.Fields.ResolutionDate)
		if err != nil {
			return rec, malformed(item.Key, "resolutiondate", err)
		}
		rec.Resolved = &resolved
	}

	if item.Changelog != nil {
		rec.Changelog = make([]lifecycle.ChangelogEvent, 0, len(item.Changelog.Histories))
		for _, h := range item.Changelog.Histories {
			at, err := ParseTime(h.Created)
			if err != nil {
				return rec, malformed(item.Key, "changelog history", err)
			}
			ev := lifecycle.ChangelogEvent{At: at, Items: make([]lifecycle.FieldChange, 0, len(h.Items))}
			for _, itm := range h.Items {
				ev.Items = append(ev.Items, lifecycle.FieldChange{
					Field: itm.Field,
					From:  itm.FromString,
					To:    itm.ToString,
				})
			}
			rec.Changelog = append(rec.Changelog, ev)
		}
	}

	return rec, nil
}

func userCategory(u *UserDTO) lifecycle.Category {
	if u == nil {
		return lifecycle.Missing()
	}
	if u.DisplayName != "" {
		return lifecycle.Named(u.DisplayName)
	}
	return lifecycle.Named(u.Name)
}

func malformed(key, field string, err error) error {
	return &lifecycle.IssueError{Key: key, Kind: lifecycle.ErrMalformedTimestamp, Detail: field + ": " + err.Error()}
}

// MapIssues maps every DTO, excluding those that fail. The returned slice is
// never nil so an empty export is distinguishable from a missing one.
func MapIssues(items []IssueDTO) ([]lifecycle.IssueRecord, []lifecycle.Exclusion) {
	records := make([]lifecycle.IssueRecord, 0, len(items))
	var excluded []lifecycle.Exclusion
	for _, item := range items {
		rec, err := MapIssue(item)
		if err != nil {
			ex := lifecycle.ToExclusion(item.Key, err)
			if errors.Is(err, lifecycle.ErrMalformedTimestamp) {
				log.Warn().Str("issue", item.Key).Str("kind", ex.Kind).Msg(ex.Detail)
			} else {
				log.Debug().Str("issue", item.Key).Str("kind", ex.Kind).Msg(ex.Detail)
			}
			excluded = append(excluded, ex)
			continue
		}
		records = append(records, rec)
	}
	return records, excluded
}
