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

package report_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nextdoor/alarmstat/internal/report"
	"github.com/nextdoor/alarmstat/pkg/alarm"
)

func stateChange(ts time.Time, from, to string) alarm.RawRecord {
	return alarm.RawRecord{
		Timestamp: ts,
		Payload:   []byte(fmt.Sprintf(`{"oldStateValue":%q,"newStateValue":%q}`, from, to)),
	}
}

// staticFetcher returns the records of its history that fall in the
// requested range, like CloudWatch does.
func staticFetcher(history []alarm.RawRecord) report.HistoryFetcherFunc {
	return func(_ context.Context, _ string, start, end time.Time) ([]alarm.RawRecord, error) {
		w := alarm.Window{Start: start, End: end}
		var out []alarm.RawRecord
		for _, rec := range history {
			if w.Contains(rec.Timestamp) {
				out = append(out, rec)
			}
		}
		return out, nil
	}
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx  context.Context
		now  time.Time
		orch *report.Orchestrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	})

	newOrchestrator := func(f report.HistoryFetcher) *report.Orchestrator {
		o := report.NewOrchestrator(f, nil, logr.Discard())
		o.Clock = func() time.Time { return now }
		return o
	}

	Context("with an episode that spans a window boundary", func() {
		BeforeEach(func() {
			// ALARM from 2 days ago until 20 hours ago.
			orch = newOrchestrator(staticFetcher([]alarm.RawRecord{
				stateChange(now.Add(-48*time.Hour), "OK", "ALARM"),
				stateChange(now.Add(-20*time.Hour), "ALARM", "OK"),
			}))
		})

		It("only sees the part inside the short window", func() {
			reports := orch.Run(ctx, "api-5xx", []int{1, 7})
			Expect(reports).To(HaveLen(2))

			short := reports[0]
			Expect(short.Err).NotTo(HaveOccurred())
			// The opening event is outside the 1-day window, so nothing opens.
			Expect(short.Result.Episodes).To(BeEmpty())

			long := reports[1]
			Expect(long.Err).NotTo(HaveOccurred())
			Expect(long.Result.Episodes).To(HaveLen(1))
			Expect(long.Result.Episodes[0].Duration()).To(Equal(28 * time.Hour))
		})

		It("attributes the whole duration to the start day", func() {
			reports := orch.Run(ctx, "api-5xx", []int{7})
			var nonZero []alarm.DailyStatistic
			for _, s := range reports[0].Result.Stats {
				if s.Count > 0 {
					nonZero = append(nonZero, s)
				}
			}
			Expect(nonZero).To(HaveLen(1))
			Expect(nonZero[0].Day.String()).To(Equal("2024-03-13"))
			Expect(*nonZero[0].AverageDurationMinutes).To(BeNumerically("~", 28*60, 1e-9))
		})
	})

	Context("with an alarm still firing", func() {
		BeforeEach(func() {
			orch = newOrchestrator(staticFetcher([]alarm.RawRecord{
				stateChange(now.Add(-30*time.Minute), "OK", "ALARM"),
			}))
		})

		It("closes the episode at the window end and marks it open", func() {
			reports := orch.Run(ctx, "api-5xx", []int{1})
			Expect(reports[0].Result.Episodes).To(ConsistOf(alarm.Episode{
				Start: now.Add(-30 * time.Minute),
				End:   now,
				Open:  true,
			}))
		})
	})

	Context("when every fetch fails", func() {
		BeforeEach(func() {
			orch = newOrchestrator(report.HistoryFetcherFunc(
				func(context.Context, string, time.Time, time.Time) ([]alarm.RawRecord, error) {
					return nil, errors.New("AccessDenied")
				}))
		})

		It("reports each window failure without statistics", func() {
			entities := orch.RunAll(ctx, []string{"api-5xx", "queue-depth"}, []int{1, 7, 30})
			Expect(entities).To(HaveLen(2))
			for _, e := range entities {
				Expect(e.Windows).To(HaveLen(3))
				for _, w := range e.Windows {
					Expect(w.Err).To(MatchError(ContainSubstring("AccessDenied")))
					Expect(w.Result.Stats).To(BeEmpty())
				}
			}
			Expect(report.AllFailed(entities)).To(BeTrue())
		})
	})

	Context("with no history at all", func() {
		BeforeEach(func() {
			orch = newOrchestrator(staticFetcher(nil))
		})

		It("still emits one zero entry per day", func() {
			reports := orch.Run(ctx, "api-5xx", []int{30})
			Expect(reports[0].Result.Stats).To(HaveLen(31))
			for _, s := range reports[0].Result.Stats {
				Expect(s.Count).To(BeZero())
				Expect(s.AverageDurationMinutes).To(BeNil())
			}
		})
	})
})
