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
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxRetries:   attempts,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// TestRetryWithBackoff_Success tests successful operation on first attempt.
func TestRetryWithBackoff_Success(t *testing.T) {
	callCount := 0
	err := RetryWithBackoff(context.Background(), DefaultRetryConfig(), logr.Discard(), "test-operation", func() error {
		callCount++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, callCount, "operation should be called once")
}

// TestRetryWithBackoff_SuccessAfterRetries tests success after several failures.
func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	callCount := 0
	startTime := time.Now()
	err := RetryWithBackoff(context.Background(), fastRetryConfig(5), logr.Discard(), "test-operation", func() error {
		callCount++
		if callCount < 3 {
			return errors.New("throttled")
		}
		return nil
	})
	duration := time.Since(startTime)

	require.NoError(t, err)
	assert.Equal(t, 3, callCount)
	// 10ms then 20ms (capped)
	assert.GreaterOrEqual(t, duration, 30*time.Millisecond)
}

// TestRetryWithBackoff_ExhaustedRetries tests permanent failure after exhausting retries.
func TestRetryWithBackoff_ExhaustedRetries(t *testing.T) {
	callCount := 0
	expectedErr := errors.New("persistent failure")
	err := RetryWithBackoff(context.Background(), fastRetryConfig(3), logr.Discard(), "test-operation", func() error {
		callCount++
		return expectedErr
	})

	require.Error(t, err)
	assert.Equal(t, 3, callCount, "operation should be called MaxRetries times")
	assert.Contains(t, err.Error(), "test-operation failed after 3 attempts")
	assert.ErrorIs(t, err, expectedErr, "should wrap original error")
}

// TestRetryWithBackoff_ZeroRetries tests that a zero budget still attempts once.
func TestRetryWithBackoff_ZeroRetries(t *testing.T) {
	callCount := 0
	err := RetryWithBackoff(context.Background(), fastRetryConfig(0), logr.Discard(), "test-operation", func() error {
		callCount++
		return errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, callCount)
	assert.Contains(t, err.Error(), "failed after 1 attempts")
}

// TestRetryWithBackoff_ContextCanceled tests that context cancellation stops retries.
func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := DefaultRetryConfig()
	config.InitialDelay = 100 * time.Millisecond

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	callCount := 0
	err := RetryWithBackoff(ctx, config, logr.Discard(), "test-operation", func() error {
		callCount++
		return errors.New("will fail")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, callCount, "operation should be called once before cancellation")
}

// TestRetryWithBackoff_MaxDelayCap tests that delays are capped at MaxDelay.
func TestRetryWithBackoff_MaxDelayCap(t *testing.T) {
	config := RetryConfig{
		MaxRetries:   4,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     15 * time.Millisecond,
		Multiplier:   4.0,
	}

	var delays []time.Duration
	lastCallTime := time.Now()
	callCount := 0
	_ = RetryWithBackoff(context.Background(), config, logr.Discard(), "test-operation", func() error {
		callCount++
		if callCount > 1 {
			delays = append(delays, time.Since(lastCallTime))
		}
		lastCallTime = time.Now()
		return errors.New("will fail")
	})

	require.Len(t, delays, 3)
	// 10ms, then 40ms capped to 15ms twice
	assert.GreaterOrEqual(t, delays[1], 15*time.Millisecond)
	assert.Less(t, delays[2], 40*time.Millisecond, "third delay should be capped")
}

// TestRetryWithBackoff_NonRetryable tests that an error rejected by
// Retryable ends the loop after one attempt.
func TestRetryWithBackoff_NonRetryable(t *testing.T) {
	denied := errors.New("AccessDenied")
	config := fastRetryConfig(5)
	config.Retryable = func(err error) bool { return !errors.Is(err, denied) }

	callCount := 0
	err := RetryWithBackoff(context.Background(), config, logr.Discard(), "test-operation", func() error {
		callCount++
		return denied
	})

	require.Error(t, err)
	assert.Equal(t, 1, callCount, "non-retryable error should not be retried")
	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "test-operation failed")
	assert.NotContains(t, err.Error(), "attempts")
}

// TestRetryWithBackoff_RetryableUntilSuccess tests that errors accepted by
// Retryable are still retried.
func TestRetryWithBackoff_RetryableUntilSuccess(t *testing.T) {
	config := fastRetryConfig(3)
	config.Retryable = func(error) bool { return true }

	callCount := 0
	err := RetryWithBackoff(context.Background(), config, logr.Discard(), "test-operation", func() error {
		callCount++
		if callCount < 3 {
			return errors.New("Throttling")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, callCount)
}
