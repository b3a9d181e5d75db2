package repository

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
)

var (
	// DefaultRetryCount is the number of retries for transient platform failures
	DefaultRetryCount = uint64(getRetryCountOrDefault("CHANGELOG_RETRY_COUNT", 3))
	// DefaultRetryDelay is the initial delay for exponential backoff
	DefaultRetryDelay = getDurationOrDefault("CHANGELOG_RETRY_DELAY", 500*time.Millisecond)
)

func getDurationOrDefault(envVar string, def time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if d, err := time.ParseDuration(env); err == nil {
			return d
		}
	}
	return def
}

func getRetryCountOrDefault(envVar string, def int) int {
	if env := os.Getenv(envVar); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// doWithRetry runs fn, retrying with exponential backoff while transient(err) holds.
// The final error is returned unwrapped.
func doWithRetry(ctx context.Context, transient func(error) bool, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && transient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
