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

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestMetricNameConstants verifies that the exported metric name constants
// match the names the collectors actually register under.
func TestMetricNameConstants(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	tests := []struct {
		name         string
		constant     string
		actualMetric prometheus.Collector
	}{
		{name: "HistoryRecords", constant: MetricHistoryRecordsTotal, actualMetric: m.HistoryRecords},
		{name: "RecordsDiscarded", constant: MetricRecordsDiscardedTotal, actualMetric: m.RecordsDiscarded},
		{name: "EventsSkipped", constant: MetricEventsSkippedTotal, actualMetric: m.EventsSkipped},
		{name: "Episodes", constant: MetricEpisodesTotal, actualMetric: m.Episodes},
		{name: "FetchFailures", constant: MetricFetchFailuresTotal, actualMetric: m.FetchFailures},
		{name: "FetchDuration", constant: MetricFetchDurationSeconds, actualMetric: m.FetchDuration},
		{name: "DailyOccurrences", constant: MetricDailyOccurrences, actualMetric: m.DailyOccurrences},
		{name: "DailyAverageDuration", constant: MetricDailyAverageDurationMinutes, actualMetric: m.DailyAverageDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := getMetricDesc(tt.actualMetric)
			if desc == nil {
				t.Fatalf("could not get metric description for %s", tt.name)
			}

			actualName := getMetricName(desc)
			if actualName != tt.constant {
				t.Errorf("metric name mismatch for %s: constant=%q, actual=%q",
					tt.name, tt.constant, actualName)
			}
		})
	}
}

// TestMetricNameConstantsFormat verifies that all metric name constants
// follow Prometheus naming conventions and share the alarmstat_ prefix.
func TestMetricNameConstantsFormat(t *testing.T) {
	constants := map[string]string{
		"MetricHistoryRecordsTotal":         MetricHistoryRecordsTotal,
		"MetricRecordsDiscardedTotal":       MetricRecordsDiscardedTotal,
		"MetricEventsSkippedTotal":          MetricEventsSkippedTotal,
		"MetricEpisodesTotal":               MetricEpisodesTotal,
		"MetricFetchFailuresTotal":          MetricFetchFailuresTotal,
		"MetricFetchDurationSeconds":        MetricFetchDurationSeconds,
		"MetricDailyOccurrences":            MetricDailyOccurrences,
		"MetricDailyAverageDurationMinutes": MetricDailyAverageDurationMinutes,
	}

	seen := make(map[string]string)
	for name, value := range constants {
		if other, ok := seen[value]; ok {
			t.Errorf("%s duplicates %s: %q", name, other, value)
		}
		seen[value] = name

		if !strings.HasPrefix(value, "alarmstat_") {
			t.Errorf("%s is missing the alarmstat_ prefix: %q", name, value)
		}

		for _, char := range value {
			isLowercase := char >= 'a' && char <= 'z'
			isDigit := char >= '0' && char <= '9'
			isUnderscore := char == '_'
			if !isLowercase && !isDigit && !isUnderscore {
				t.Errorf("%s contains invalid character: %q", name, value)
				break
			}
		}
	}
}

// getMetricDesc extracts the prometheus.Desc from a metric collector.
// This is a helper function needed because Prometheus doesn't expose
// the metric name directly on the collector.
func getMetricDesc(collector prometheus.Collector) *prometheus.Desc {
	// Create a channel to receive the metric description
	descChan := make(chan *prometheus.Desc, 1)

	// Prometheus collectors implement Describe() which sends their Desc to a channel
	go func() {
		collector.Describe(descChan)
		close(descChan)
	}()

	// Read the first (and typically only) description
	return <-descChan
}

// getMetricName extracts the metric name from a prometheus.Desc.
// We need to use String() and parse it because Prometheus doesn't
// expose the name directly.
func getMetricName(desc *prometheus.Desc) string {
	// The String() output looks like: Desc{fqName: "metric_name", help: "...", ...}
	// We need to extract "metric_name" from this string
	str := desc.String()

	// Find the start of the fqName value (after "fqName: \"")
	start := 0
	prefix := "fqName: \""
	for i := 0; i < len(str)-len(prefix); i++ {
		if str[i:i+len(prefix)] == prefix {
			start = i + len(prefix)
			break
		}
	}

	if start == 0 {
		return ""
	}

	// Find the end of the fqName value (the closing quote)
	end := start
	for end < len(str) && str[end] != '"' {
		end++
	}

	if end >= len(str) {
		return ""
	}

	return str[start:end]
}
