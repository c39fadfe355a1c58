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

import (
	"time"
)

// Window is a closed time range [Start, End] over which history is analyzed.
type Window struct {
	Start time.Time
	End   time.Time
}

// LookbackWindow returns the window covering the n days before now.
func LookbackWindow(now time.Time, days int) Window {
	now = now.UTC()
	return Window{
		Start: now.AddDate(0, 0, -days),
		End:   now,
	}
}

// Contains reports whether t lies within [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// FirstDay returns the UTC calendar date of the window start.
func (w Window) FirstDay() Day {
	return DayOf(w.Start)
}

// LastDay returns the UTC calendar date of the window end.
func (w Window) LastDay() Day {
	return DayOf(w.End)
}

// Days returns every UTC calendar date touched by the window.
func (w Window) Days() []Day {
	return DaysBetween(w.FirstDay(), w.LastDay())
}

// Clip intersects ep with w. The second return value is false when the
// clipped interval is empty or inverted, in which case the episode
// should be dropped.
func Clip(ep Episode, w Window) (Episode, bool) {
	start := ep.Start
	if w.Start.After(start) {
		start = w.Start
	}
	end := ep.End
	if w.End.Before(end) {
		end = w.End
	}
	if !end.After(start) {
		return Episode{}, false
	}
	return Episode{Start: start, End: end, Open: ep.Open}, true
}

// ClipAll clips every episode to w and drops the ones that collapse.
func ClipAll(episodes []Episode, w Window) []Episode {
	clipped := make([]Episode, 0, len(episodes))
	for _, ep := range episodes {
		if c, ok := Clip(ep, w); ok {
			clipped = append(clipped, c)
		}
	}
	return clipped
}
