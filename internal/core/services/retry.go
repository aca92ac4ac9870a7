package services

import (
	"context"
	"time"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/logger"
)

// DefaultMaxAttempts bounds retries of retriable external calls.
const DefaultMaxAttempts = 3

// baseBackoff is the delay before the first retry; it doubles per attempt.
const baseBackoff = 500 * time.Millisecond

// retry runs fn up to attempts times, backing off between tries.
// Only errors the domain classifies as retriable are retried;
// validation and configuration errors surface immediately.
func retry(ctx context.Context, attempts int, op string, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	backoff := baseBackoff
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !domain.Retriable(err) || attempt == attempts {
			break
		}

		logger.Debug("%s failed (attempt %d/%d), retrying in %s: %v", op, attempt, attempts, backoff, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
