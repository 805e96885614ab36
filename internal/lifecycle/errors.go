package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrDataIncomplete marks a ticket missing a timestamp required by an analysis.
	ErrDataIncomplete = errors.New("DataIncomplete")
	// ErrMalformedTimestamp marks an unparseable or causally inverted instant.
	ErrMalformedTimestamp = errors.New("MalformedTimestamp")
	// ErrUnknownCategory marks a value outside a declared canonical ordering.
	ErrUnknownCategory = errors.New("UnknownCategory")
	// ErrNoRecords is returned when no record collection was supplied at all.
	ErrNoRecords = errors.New("no issue records supplied")
)

// IssueError is a per-ticket failure. It unwraps to one of the sentinel kinds.
type IssueError struct {
	Key    string
	Kind   error
	Detail string
}

func (e *IssueError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Key, e.Kind, e.Detail)
}

func (e *IssueError) Unwrap() error {
	return e.Kind
}

func issueErr(key string, kind error, format string, args ...any) *IssueError {
	return &IssueError{Key: key, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Exclusion is the reportable form of a ticket left out of an analysis.
type Exclusion struct {
	Key    string `json:"key"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// ToExclusion converts an error into an Exclusion. Errors that are not
// IssueErrors are reported under the given key with an empty kind.
func ToExclusion(key string, err error) Exclusion {
	var ie *IssueError
	if errors.As(err, &ie) {
		return Exclusion{Key: ie.Key, Kind: ie.Kind.Error(), Detail: ie.Detail}
	}
	return Exclusion{Key: key, Detail: err.Error()}
}
