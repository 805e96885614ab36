package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"issue-lifecycle/internal/jira"
)

type GeneratorConfig struct {
	Scenario     string
	Distribution string // "uniform" or "weibull"
	Count        int
	Seed         int64
	Now          time.Time
}

var (
	users      = []string{"Alice Moreau", "Bob Okafor", "Chen Wei", "Dana Kowalski", "Emil Strand", "Fatima Haddad", "Goran Petrovic"}
	priorities = []string{"Critical", "Blocker", "Major", "Major", "Minor", "Minor", "Trivial"}
	zones      = []*time.Location{time.UTC, time.FixedZone("CET", 3600), time.FixedZone("EST", -5*3600)}
)

// Generate builds closed issues with randomized status walks. Changelog
// histories are emitted out of order, as some exports do.
func Generate(cfg GeneratorConfig) []jira.IssueDTO {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	issues := make([]jira.IssueDTO, 0, cfg.Count)

	// Roughly one arrival per day, finishing before cfg.Now.
	tArrival := cfg.Now.AddDate(0, 0, -cfg.Count-30)

	for i := 0; i < cfg.Count; i++ {
		key := fmt.Sprintf("MOCK-%d", i+1)
		loc := zones[rng.Intn(len(zones))]
		arrival := tArrival.Add(time.Duration(i*24)*time.Hour + time.Duration(rng.Intn(86400))*time.Second).In(loc)

		k, lambda := 2.5, 9.5
		switch cfg.Scenario {
		case "chaos":
			k, lambda = 0.8, 12.0
		case "drift":
			ratio := float64(i) / float64(cfg.Count)
			k = 2.5 - (1.7 * ratio)
			lambda = 9.5 + (2.5 * ratio)
		}

		var totalDays float64
		if cfg.Distribution == "weibull" {
			totalDays = weibullSample(rng, k, lambda)
		} else {
			totalDays = 6.0 + rng.Float64()*5.0
			if cfg.Scenario == "chaos" && rng.Float64() < 0.2 {
				totalDays += 10 + rng.Float64()*15
			}
			if cfg.Scenario == "drift" && i > cfg.Count/2 {
				totalDays *= 2.0
			}
		}

		walk := statusWalk(rng)
		histories := make([]jira.HistoryDTO, 0, len(walk)-1)
		at := arrival
		step := time.Duration(totalDays*24*float64(time.Hour)) / time.Duration(len(walk)-1)
		for j := 1; j < len(walk); j++ {
			jitter := time.Duration(rng.Float64() * float64(step) * 0.5)
			at = at.Add(step/2 + jitter)
			items := []jira.ItemDTO{{Field: "status", FromString: walk[j-1], ToString: walk[j]}}
			if rng.Float64() < 0.3 {
				items = append(items, jira.ItemDTO{Field: "assignee", FromString: "", ToString: pick(rng, users)})
			}
			histories = append(histories, jira.HistoryDTO{Created: at.Format(jira.TimeLayout), Items: items})
		}
		rng.Shuffle(len(histories), func(a, b int) { histories[a], histories[b] = histories[b], histories[a] })

		dto := jira.IssueDTO{Key: key, Changelog: &jira.ChangelogDTO{Histories: histories}}
		dto.Fields.Status.Name = walk[len(walk)-1]
		dto.Fields.Created = arrival.Format(jira.TimeLayout)
		dto.Fields.ResolutionDate = at.Format(jira.TimeLayout)
		if rng.Float64() >= 0.1 {
			dto.Fields.Assignee = &jira.UserDTO{DisplayName: pick(rng, users)}
		}
		if rng.Float64() >= 0.05 {
			dto.Fields.Reporter = &jira.UserDTO{DisplayName: pick(rng, users)}
		}
		if rng.Float64() >= 0.1 {
			name := pick(rng, priorities)
			if cfg.Scenario == "chaos" && rng.Float64() < 0.05 {
				name = "Highest"
			}
			dto.Fields.Priority = &jira.PriorityDTO{Name: name}
		}

		issues = append(issues, dto)
	}

	return issues
}

// statusWalk returns a workflow path ending in Closed. Some issues are
// reopened once, some skip review.
func statusWalk(rng *rand.Rand) []string {
	walk := []string{"Open", "In Progress"}
	if rng.Float64() < 0.7 {
		walk = append(walk, "In Review")
	}
	walk = append(walk, "Resolved")
	if rng.Float64() < 0.15 {
		walk = append(walk, "Reopened", "In Progress", "Resolved")
	}
	return append(walk, "Closed")
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes the issues either as JSON Lines or as a Jira search response.
func Save(path string, issues []jira.IssueDTO, jsonl bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if jsonl {
		enc := json.NewEncoder(w)
		for _, issue := range issues {
			if err := enc.Encode(issue); err != nil {
				return err
			}
		}
	} else {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jira.SearchResponse{Total: len(issues), Issues: issues}); err != nil {
			return err
		}
	}
	return w.Flush()
}
