package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"issue-lifecycle/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, drift")
	distribution := flag.String("distribution", "uniform", "Distribution to use: uniform, weibull")
	out := flag.String("out", "./.cache/issues.json", "Output file")
	jsonl := flag.Bool("jsonl", false, "Write JSON Lines instead of a search response")
	count := flag.Int("count", 200, "Number of issues to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Count:        *count,
		Seed:         *seed,
		Now:          time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Count: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Count, *out)

	issues := engine.Generate(cfg)
	if err := engine.Save(*out, issues, *jsonl); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
