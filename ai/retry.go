// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"context"
	"log/slog"
	"time"
)

// RetryWithBackoff retries an operation with exponential backoff.
// maxAttempts: maximum number of attempts (must be > 0)
// baseDelay: base delay between retries (doubles on each retry)
// Returns the error from the last attempt if all attempts fail.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "error", lastErr)

		// Don't sleep after the last attempt
		if attempt == maxAttempts {
			break
		}

		// Calculate exponential backoff: baseDelay * 2^(attempt-1)
		delay := baseDelay << (attempt - 1)

		// Sleep with context awareness
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// retryingOracle retries failed completions with exponential backoff.
type retryingOracle struct {
	next        Oracle
	maxAttempts int
	baseDelay   time.Duration
}

// WithRetry wraps oracle so that transport failures are retried up to
// maxAttempts times in total. maxAttempts <= 1 returns oracle unchanged.
func WithRetry(oracle Oracle, maxAttempts int, baseDelay time.Duration) Oracle {
	if maxAttempts <= 1 {
		return oracle
	}
	return &retryingOracle{
		next:        oracle,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// Complete calls the wrapped oracle until it succeeds or attempts run out.
func (r *retryingOracle) Complete(ctx context.Context, messages []Message) (string, error) {
	var reply string
	err := RetryWithBackoff(ctx, func() error {
		var err error
		reply, err = r.next.Complete(ctx, messages)
		return err
	}, r.maxAttempts, r.baseDelay)
	if err != nil {
		return "", err
	}
	return reply, nil
}
