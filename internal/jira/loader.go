package jira

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"issue-lifecycle/internal/lifecycle"

	"github.com/rs/zerolog/log"
)

const maxLineSize = 64 << 20

// Decode reads issues from a Jira search export ({"issues": [...]}), a bare
// JSON array of issues, or JSON Lines with one issue per line. Any decoding
// error fails the whole batch.
func Decode(r io.Reader) ([]IssueDTO, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read issues: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []IssueDTO{}, nil
	}

	if trimmed[0] == '[' {
		var issues []IssueDTO
		if err := json.Unmarshal(trimmed, &issues); err != nil {
			return nil, fmt.Errorf("failed to decode issue array: %w", err)
		}
		return issues, nil
	}

	// A search export is recognized by its "issues" key, even when the
	// value is null.
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		if raw, ok := envelope["issues"]; ok {
			var issues []IssueDTO
			if err := json.Unmarshal(raw, &issues); err != nil {
				return nil, fmt.Errorf("failed to decode search export: %w", err)
			}
			if issues == nil {
				issues = []IssueDTO{}
			}
			return issues, nil
		}
	}

	issues := make([]IssueDTO, 0)
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var issue IssueDTO
		if err := json.Unmarshal(raw, &issue); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", line, err)
		}
		issues = append(issues, issue)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading issues: %w", err)
	}
	return issues, nil
}

// LoadFile decodes an export file and maps it to records.
func LoadFile(path string) ([]lifecycle.IssueRecord, []lifecycle.Exclusion, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open issues file: %w", err)
	}
	defer file.Close()

	dtos, err := Decode(file)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	records, excluded := MapIssues(dtos)
	log.Info().
		Str("path", path).
		Int("issues", len(dtos)).
		Int("excluded", len(excluded)).
		Msg("Loaded issues from export")
	return records, excluded, nil
}
