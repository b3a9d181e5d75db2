package orchestrator

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	// DefaultPipelineTimeout bounds a single changelog resolution
	DefaultPipelineTimeout = getTimeoutOrDefault("CHANGELOG_PIPELINE_TIMEOUT", 2*time.Minute, 5*time.Second)
	// DefaultConcurrency is the number of release pairs resolved in parallel
	DefaultConcurrency = getCountOrDefault("CHANGELOG_CONCURRENCY", 1, 1)
)

// isTestEnvironment detects if we're running in a test environment
func isTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, ".test") || strings.Contains(arg, "go test") {
			return true
		}
	}
	return os.Getenv("GO_TEST") == "true" || os.Getenv("TEST_MODE") == "true"
}

// getTimeoutOrDefault returns production timeout or test timeout based on environment
func getTimeoutOrDefault(envVar string, prodDefault, testDefault time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil {
			return duration
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}

// getCountOrDefault returns a positive count from envVar or the default for the environment
func getCountOrDefault(envVar string, prodDefault, testDefault int) int {
	if env := os.Getenv(envVar); env != "" {
		if count, err := strconv.Atoi(env); err == nil && count > 0 {
			return count
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}
