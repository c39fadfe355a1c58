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
	"time"

	"github.com/go-logr/logr"

	"github.com/nextdoor/alarmstat/pkg/alarm"
)

// HistoryFetcher returns the raw alarm history records of alarmName whose
// timestamps fall in [start, end]. Implementations must return every page.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, alarmName string, start, end time.Time) ([]alarm.RawRecord, error)
}

// HistoryFetcherFunc adapts a function to HistoryFetcher.
type HistoryFetcherFunc func(ctx context.Context, alarmName string, start, end time.Time) ([]alarm.RawRecord, error)

// FetchHistory calls f.
func (f HistoryFetcherFunc) FetchHistory(ctx context.Context, alarmName string, start, end time.Time) ([]alarm.RawRecord, error) {
	return f(ctx, alarmName, start, end)
}

// RetryingFetcher wraps a HistoryFetcher with RetryWithBackoff.
type RetryingFetcher struct {
	Fetcher HistoryFetcher
	Config  RetryConfig
	Log     logr.Logger
}

// NewRetryingFetcher wraps fetcher with the given retry settings.
func NewRetryingFetcher(fetcher HistoryFetcher, config RetryConfig, log logr.Logger) *RetryingFetcher {
	return &RetryingFetcher{Fetcher: fetcher, Config: config, Log: log}
}

// FetchHistory fetches history, retrying failed attempts with backoff.
func (f *RetryingFetcher) FetchHistory(ctx context.Context, alarmName string, start, end time.Time) ([]alarm.RawRecord, error) {
	var records []alarm.RawRecord
	err := RetryWithBackoff(ctx, f.Config, f.Log.WithValues("alarm_name", alarmName), "fetch alarm history", func() error {
		var err error
		records, err = f.Fetcher.FetchHistory(ctx, alarmName, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
