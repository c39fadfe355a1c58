/*
Copyright 2025 Alarmstat Contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// RetryConfig configures retry behavior for history fetches.
type RetryConfig struct {
	// MaxRetries is the maximum number of attempts (default: 3).
	// Values below 1 still make a single attempt.
	MaxRetries int

	// InitialDelay is the initial delay between retries (default: 1s)
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries (default: 20s)
	// Delays are capped at this value even with exponential backoff
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier (default: 2.0 for exponential backoff)
	Multiplier float64

	// Retryable reports whether a failed attempt is worth repeating.
	// Nil retries every error.
	Retryable func(error) bool
}

// DefaultRetryConfig returns the retry settings used when none are configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     20 * time.Second,
		Multiplier:   2.0,
	}
}

// RetryWithBackoff executes an operation with exponential backoff retry logic.
// CloudWatch throttles DescribeAlarmHistory aggressively when several
// windows page through the same alarm at once, so transient failures are
// expected.
//
// The operation is retried up to config.MaxRetries times. If all attempts
// fail the last error is returned wrapped with the operation name. An error
// rejected by config.Retryable is returned at once.
//
// Example usage:
//
//	err := RetryWithBackoff(ctx, DefaultRetryConfig(), log, "fetch history", func() error {
//	    records, err = fetcher.FetchHistory(ctx, name, start, end)
//	    return err
//	})
func RetryWithBackoff(
	ctx context.Context,
	config RetryConfig,
	log logr.Logger,
	operationName string,
	operation func() error,
) error {
	attempts := max(config.MaxRetries, 1)
	retryDelay := config.InitialDelay

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 1 {
				log.Info("operation succeeded after retries",
					"operation", operationName,
					"attempts", attempt)
			}
			return nil
		}

		if config.Retryable != nil && !config.Retryable(err) {
			return fmt.Errorf("%s failed: %w", operationName, err)
		}
		if attempt == attempts {
			return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, err)
		}

		log.Error(err, "operation failed",
			"operation", operationName,
			"attempt", attempt,
			"max_retries", attempts,
			"next_retry_delay", retryDelay)

		select {
		case <-time.After(retryDelay):
			retryDelay = time.Duration(float64(retryDelay) * config.Multiplier)
			if retryDelay > config.MaxDelay {
				retryDelay = config.MaxDelay
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
