package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// statusError is returned by downloadToTempFile for non-200 responses.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("download returned %d", e.code)
}

// retryPolicy bounds download retries. The zero value makes a single attempt.
type retryPolicy struct {
	attempts int
	delay    time.Duration
	maxDelay time.Duration
}

var defaultDownloadRetry = retryPolicy{attempts: 3, delay: 500 * time.Millisecond, maxDelay: 4 * time.Second}

// isRetryableDownload reports whether a failed download is worth repeating.
// Cancellation and 4xx responses other than 429 are final.
func isRetryableDownload(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// backoff returns the exponential delay before retry number attempt (0-based),
// capped at maxDelay.
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.delay <= 0 {
		return 0
	}
	delay := p.delay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if p.maxDelay > 0 && delay >= p.maxDelay {
			return p.maxDelay
		}
	}
	if p.maxDelay > 0 && delay > p.maxDelay {
		delay = p.maxDelay
	}
	return delay
}

// waitForBackoff sleeps for delay or returns early when ctx is done.
func waitForBackoff(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// downloadWithRetry repeats downloadToTempFile under p while the failure is retryable.
func downloadWithRetry(ctx context.Context, client httpDoer, url, dir string, p retryPolicy) (string, error) {
	attempts := max(p.attempts, 1)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := waitForBackoff(ctx, p.backoff(attempt-1)); err != nil {
				return "", err
			}
		}
		path, err := downloadToTempFile(ctx, client, url, dir)
		if err == nil {
			return path, nil
		}
		lastErr = err
		if !isRetryableDownload(err) {
			break
		}
	}
	return "", lastErr
}
