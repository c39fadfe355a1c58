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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextdoor/alarmstat/pkg/alarm"
)

func ptr(f float64) *float64 { return &f }

func sampleResult() alarm.Result {
	day1 := alarm.DayOf(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	return alarm.Result{
		Stats: []alarm.DailyStatistic{
			{Day: day1, Count: 2, AverageDurationMinutes: ptr(7.5)},
			{Day: day1.AddDays(1), Count: 0},
		},
		Episodes:  make([]alarm.Episode, 2),
		Discarded: 1,
		Skipped:   3,
	}
}

// TestNewMetrics verifies that NewMetrics registers every metric.
func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveFetch("last_1_days", 4, time.Second, nil)
	m.ObserveFetch("last_1_days", 0, time.Second, errors.New("throttled"))
	m.RecordResult("api-5xx", "last_1_days", sampleResult())

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, name := range []string{
		MetricHistoryRecordsTotal,
		MetricRecordsDiscardedTotal,
		MetricEventsSkippedTotal,
		MetricEpisodesTotal,
		MetricFetchFailuresTotal,
		MetricFetchDurationSeconds,
		MetricDailyOccurrences,
		MetricDailyAverageDurationMinutes,
	} {
		assert.True(t, names[name], "metric %s should be registered", name)
	}
}

// TestNewMetrics_DoubleRegistration verifies that registering twice on
// the same registry panics.
func TestNewMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewMetrics(reg)

	assert.Panics(t, func() {
		_ = NewMetrics(reg)
	}, "double registration should panic")
}

func TestObserveFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveFetch("last_7_days", 120, 2*time.Second, nil)
	m.ObserveFetch("last_7_days", 0, time.Second, errors.New("access denied"))
	m.ObserveFetch("last_30_days", 10, time.Second, nil)

	assert.Equal(t, 130.0, testutil.ToFloat64(m.HistoryRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues("last_7_days")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues("last_30_days")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.FetchDuration))
}

func TestRecordResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordResult("api-5xx", "last_1_days", sampleResult())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsDiscarded))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsSkipped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Episodes.WithLabelValues("last_1_days")))

	expected := `
		# HELP alarmstat_daily_occurrences Number of triggered episodes that started on a UTC day
		# TYPE alarmstat_daily_occurrences gauge
		alarmstat_daily_occurrences{alarm_name="api-5xx",day="2024-01-01",window="last_1_days"} 2
		alarmstat_daily_occurrences{alarm_name="api-5xx",day="2024-01-02",window="last_1_days"} 0
	`
	require.NoError(t, testutil.CollectAndCompare(m.DailyOccurrences, strings.NewReader(expected)))

	// A day without episodes has no average series.
	assert.Equal(t, 1, testutil.CollectAndCount(m.DailyAverageDuration))
	assert.Equal(t, 7.5, testutil.ToFloat64(m.DailyAverageDuration.WithLabelValues("api-5xx", "last_1_days", "2024-01-01")))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RecordResult("api-5xx", "last_1_days", sampleResult())

	path := filepath.Join(t.TempDir(), "alarmstat.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `alarmstat_daily_occurrences{alarm_name="api-5xx",day="2024-01-01",window="last_1_days"} 2`)
}

func TestWriteTextfile_BadPath(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewMetrics(reg)

	err := WriteTextfile(reg, filepath.Join(t.TempDir(), "missing", "alarmstat.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write metrics")
}
