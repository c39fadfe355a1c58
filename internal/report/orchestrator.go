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
	"golang.org/x/sync/errgroup"

	"github.com/nextdoor/alarmstat/pkg/alarm"
	"github.com/nextdoor/alarmstat/pkg/metrics"
)

// DefaultConcurrency is the number of windows fetched at once when
// Orchestrator.Concurrency is not set.
const DefaultConcurrency = 4

// Orchestrator computes every lookback window of an alarm. Windows are
// independent: each one fetches its own history and runs the full
// pipeline, and a failure in one never affects another.
type Orchestrator struct {
	Fetcher HistoryFetcher

	// Metrics is optional. When nil nothing is recorded.
	Metrics *metrics.Metrics

	Log logr.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// Concurrency bounds how many windows are fetched at once.
	Concurrency int

	// AssumedState is the state an alarm is taken to be in before each
	// window opens. Nil leaves it unknown.
	AssumedState *alarm.State
}

// NewOrchestrator creates an Orchestrator with default clock and concurrency.
func NewOrchestrator(fetcher HistoryFetcher, m *metrics.Metrics, log logr.Logger) *Orchestrator {
	return &Orchestrator{
		Fetcher:     fetcher,
		Metrics:     m,
		Log:         log,
		Clock:       time.Now,
		Concurrency: DefaultConcurrency,
	}
}

// Run computes one WindowReport per lookback, in the order given. The
// current time is read once so every window shares the same end.
func (o *Orchestrator) Run(ctx context.Context, alarmName string, lookbacks []int) []WindowReport {
	now := o.now()
	reports := make([]WindowReport, len(lookbacks))

	var g errgroup.Group
	g.SetLimit(o.concurrency())
	for i, days := range lookbacks {
		i, days := i, days
		g.Go(func() error {
			reports[i] = o.runWindow(ctx, alarmName, days, now)
			return nil
		})
	}
	// runWindow never returns an error; failures travel on the report.
	_ = g.Wait()

	return reports
}

// RunAll runs every alarm in turn. Alarms share no state.
func (o *Orchestrator) RunAll(ctx context.Context, alarmNames []string, lookbacks []int) []EntityReport {
	reports := make([]EntityReport, 0, len(alarmNames))
	for _, name := range alarmNames {
		reports = append(reports, EntityReport{
			AlarmName: name,
			Windows:   o.Run(ctx, name, lookbacks),
		})
	}
	return reports
}

func (o *Orchestrator) runWindow(ctx context.Context, alarmName string, days int, now time.Time) WindowReport {
	label := WindowLabel(days)
	w := alarm.LookbackWindow(now, days)
	report := WindowReport{Label: label, Days: days, Window: w}
	log := o.Log.WithValues("alarm_name", alarmName, "window", label)

	start := time.Now()
	records, err := o.Fetcher.FetchHistory(ctx, alarmName, w.Start, w.End)
	duration := time.Since(start)
	if o.Metrics != nil {
		o.Metrics.ObserveFetch(label, len(records), duration, err)
	}
	if err != nil {
		log.Error(err, "failed to fetch alarm history")
		report.Err = fmt.Errorf("failed to fetch history for %s: %w", label, err)
		return report
	}

	report.Result = alarm.Analyze(records, w, alarm.Options{AssumedState: o.AssumedState})

	if report.Result.Discarded > 0 {
		log.Info("discarded history records without timestamp", "count", report.Result.Discarded)
	}
	log.V(1).Info("window analyzed",
		"records", len(records),
		"episodes", len(report.Result.Episodes),
		"skipped_events", report.Result.Skipped,
		"duration_seconds", duration.Seconds())

	if o.Metrics != nil {
		o.Metrics.RecordResult(alarmName, label, report.Result)
	}
	return report
}

func (o *Orchestrator) now() time.Time {
	if o.Clock == nil {
		return time.Now().UTC()
	}
	return o.Clock().UTC()
}

func (o *Orchestrator) concurrency() int {
	if o.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return o.Concurrency
}
