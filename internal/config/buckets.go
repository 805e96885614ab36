package config

import (
	"fmt"
	"os"

	"issue-lifecycle/internal/stats"

	"gopkg.in/yaml.v3"
)

// BucketFile is the YAML layout of a custom duration bucket set:
//
//	buckets:
//	  - {label: "<1d", lower: 0, upper: 24}
//	  - {label: "1-7d", lower: 24, upper: 168}
type BucketFile struct {
	Buckets []stats.BucketBound `yaml:"buckets"`
}

// LoadBuckets reads and validates a bucket set from a YAML file.
func LoadBuckets(path string) ([]stats.BucketBound, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bucket file: %w", err)
	}

	var file BucketFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := stats.ValidateBuckets(file.Buckets); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file.Buckets, nil
}
