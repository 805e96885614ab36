package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"issue-lifecycle/internal/analysis"
	"issue-lifecycle/internal/lifecycle"
	"issue-lifecycle/internal/stats"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath   string
	LogDir     string
	IssuesFile string

	Analysis analysis.Options
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))

	issuesFile := getEnv("ISSUES_FILE", "")
	if issuesFile != "" && !filepath.IsAbs(issuesFile) {
		issuesFile = filepath.Join(dataPath, issuesFile)
	}

	buckets := stats.DefaultResolutionBuckets()
	if path := getEnv("BUCKETS_FILE", ""); path != "" {
		buckets, err = LoadBuckets(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Int("buckets", len(buckets)).Msg("Loaded duration buckets")
	}

	cfg := &AppConfig{
		DataPath:   dataPath,
		LogDir:     logDir,
		IssuesFile: issuesFile,
		Analysis: analysis.Options{
			Workers:        getEnvInt("WORKERS", runtime.NumCPU()),
			TopUsers:       getEnvInt("TOP_USERS", stats.DefaultTopUsers),
			HistogramBins:  getEnvInt("HISTOGRAM_BINS", 20),
			StrictPriority: getEnvBool("STRICT_PRIORITY", false),
			Buckets:        buckets,
			Anchors: lifecycle.WorkAnchors{
				Start: getEnvList("WORK_START_STATES", []string{"In Progress", "Open"}),
				End:   getEnv("WORK_END_STATE", "Closed"),
			},
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric setting")
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
