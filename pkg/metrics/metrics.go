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

// Package metrics provides Prometheus metrics for alarmstat runs.
// They expose what the history pipeline fetched and dropped and the
// per-day statistics it produced, so a scheduled run can feed the node
// exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nextdoor/alarmstat/pkg/alarm"
)

// Metrics holds all Prometheus metrics for a report run.
type Metrics struct {
	// HistoryRecords counts raw history records returned by CloudWatch.
	HistoryRecords prometheus.Counter

	// RecordsDiscarded counts records without a usable timestamp.
	RecordsDiscarded prometheus.Counter

	// EventsSkipped counts events with an unreadable new state.
	EventsSkipped prometheus.Counter

	// Episodes counts clipped episodes per window.
	// Labels: window
	Episodes *prometheus.CounterVec

	// FetchFailures counts windows whose history fetch failed.
	// Labels: window
	FetchFailures *prometheus.CounterVec

	// FetchDuration measures history fetch latency, retries included.
	// Labels: window
	FetchDuration *prometheus.HistogramVec

	// DailyOccurrences holds the episode count per UTC day.
	// Labels: alarm_name, window, day
	DailyOccurrences *prometheus.GaugeVec

	// DailyAverageDuration holds the mean episode duration in minutes per
	// UTC day. Days with no episodes have no series rather than a zero.
	// Labels: alarm_name, window, day
	DailyAverageDuration *prometheus.GaugeVec
}

// NewMetrics creates and registers all metrics with the provided registry.
// Registering twice on the same registry panics.
//
// Example usage:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewMetrics(reg)
//	m.RecordResult("api-5xx", "last_7_days", result)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HistoryRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricHistoryRecordsTotal,
			Help: "Raw alarm history records fetched from CloudWatch",
		}),

		RecordsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRecordsDiscardedTotal,
			Help: "History records discarded for lack of a usable timestamp",
		}),

		EventsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricEventsSkippedTotal,
			Help: "State-change events skipped because the new state could not be read",
		}),

		Episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricEpisodesTotal,
			Help: "Triggered episodes found within a lookback window",
		}, []string{LabelWindow}),

		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricFetchFailuresTotal,
			Help: "Alarm history fetches that failed after all retries",
		}, []string{LabelWindow}),

		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: MetricFetchDurationSeconds,
			Help: "Time taken to fetch alarm history for a window",
			// Paging a month of history with retries can take a while
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{LabelWindow}),

		DailyOccurrences: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricDailyOccurrences,
			Help: "Number of triggered episodes that started on a UTC day",
		}, []string{LabelAlarmName, LabelWindow, LabelDay}),

		DailyAverageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricDailyAverageDurationMinutes,
			Help: "Mean duration in minutes of the episodes that started on a UTC day",
		}, []string{LabelAlarmName, LabelWindow, LabelDay}),
	}

	reg.MustRegister(
		m.HistoryRecords,
		m.RecordsDiscarded,
		m.EventsSkipped,
		m.Episodes,
		m.FetchFailures,
		m.FetchDuration,
		m.DailyOccurrences,
		m.DailyAverageDuration,
	)

	return m
}

// ObserveFetch records the duration of one window's history fetch and,
// when err is non-nil, counts it as a failure.
func (m *Metrics) ObserveFetch(window string, records int, duration time.Duration, err error) {
	m.FetchDuration.WithLabelValues(window).Observe(duration.Seconds())
	if err != nil {
		m.FetchFailures.WithLabelValues(window).Inc()
		return
	}
	m.HistoryRecords.Add(float64(records))
}

// RecordResult records the outcome of one window's analysis for an alarm.
// Each day of the window gets an occurrence gauge, including zero days.
func (m *Metrics) RecordResult(alarmName, window string, res alarm.Result) {
	m.RecordsDiscarded.Add(float64(res.Discarded))
	m.EventsSkipped.Add(float64(res.Skipped))
	m.Episodes.WithLabelValues(window).Add(float64(len(res.Episodes)))

	for _, stat := range res.Stats {
		day := stat.Day.String()
		m.DailyOccurrences.WithLabelValues(alarmName, window, day).Set(float64(stat.Count))
		if stat.AverageDurationMinutes != nil {
			m.DailyAverageDuration.WithLabelValues(alarmName, window, day).Set(*stat.AverageDurationMinutes)
		}
	}
}

// WriteTextfile writes everything gathered from g to path in the Prometheus
// text format. The file is written atomically so the node exporter never
// reads a partial file.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
