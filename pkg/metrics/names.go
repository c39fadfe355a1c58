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

package metrics

// This file exports metric name constants for consumers that query
// alarmstat metrics (for example dashboards built on the node exporter
// textfile collector). For label names see labels.go.

// Pipeline metrics
//
// These count what flows through, and what is dropped by, the
// record → event → episode pipeline.

const (
	// MetricHistoryRecordsTotal counts raw alarm history records fetched.
	// Type: Counter
	// Labels: none
	MetricHistoryRecordsTotal = "alarmstat_history_records_total"

	// MetricRecordsDiscardedTotal counts records dropped because they had
	// no usable timestamp.
	// Type: Counter
	// Labels: none
	MetricRecordsDiscardedTotal = "alarmstat_records_discarded_total"

	// MetricEventsSkippedTotal counts events whose new state could not be
	// read. They leave the episode state machine unchanged.
	// Type: Counter
	// Labels: none
	MetricEventsSkippedTotal = "alarmstat_events_skipped_total"

	// MetricEpisodesTotal counts triggered episodes after clipping.
	// Type: Counter
	// Labels: window
	MetricEpisodesTotal = "alarmstat_episodes_total"
)

// Fetch metrics

const (
	// MetricFetchFailuresTotal counts history fetches that failed after
	// all retries.
	// Type: Counter
	// Labels: window
	MetricFetchFailuresTotal = "alarmstat_fetch_failures_total"

	// MetricFetchDurationSeconds measures how long a history fetch took,
	// retries included.
	// Type: Histogram
	// Labels: window
	MetricFetchDurationSeconds = "alarmstat_fetch_duration_seconds"
)

// Report metrics

const (
	// MetricDailyOccurrences is the number of episodes that started on a
	// given UTC day.
	// Type: Gauge
	// Labels: alarm_name, window, day
	MetricDailyOccurrences = "alarmstat_daily_occurrences"

	// MetricDailyAverageDurationMinutes is the mean duration of the
	// episodes that started on a given UTC day. Days without episodes
	// have no series.
	// Type: Gauge
	// Labels: alarm_name, window, day
	MetricDailyAverageDurationMinutes = "alarmstat_daily_average_duration_minutes"
)
