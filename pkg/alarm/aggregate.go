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

package alarm

// Aggregate buckets episodes by the UTC day they started on and returns
// one DailyStatistic per day from startDay to endDay inclusive, in
// ascending order. Days without episodes are present with a zero count
// and a nil average.
//
// An episode's whole duration is attributed to its start day even when
// it runs past midnight. Episodes starting outside the range are ignored.
func Aggregate(episodes []Episode, startDay, endDay Day) []DailyStatistic {
	days := DaysBetween(startDay, endDay)
	durations := make(map[Day][]float64, len(days))
	for _, ep := range episodes {
		d := DayOf(ep.Start)
		if d.Before(startDay) || d.After(endDay) {
			continue
		}
		durations[d] = append(durations[d], ep.Duration().Minutes())
	}

	stats := make([]DailyStatistic, 0, len(days))
	for _, d := range days {
		stats = append(stats, newDailyStatistic(d, durations[d]))
	}
	return stats
}

func newDailyStatistic(d Day, minutes []float64) DailyStatistic {
	stat := DailyStatistic{Day: d, Count: len(minutes)}
	if len(minutes) == 0 {
		return stat
	}
	var total float64
	for _, m := range minutes {
		total += m
	}
	avg := total / float64(len(minutes))
	stat.AverageDurationMinutes = &avg
	return stat
}
