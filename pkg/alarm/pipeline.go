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

// Options tunes a single Analyze run.
type Options struct {
	// AssumedState is the state the alarm is taken to be in before the
	// window opens. Nil leaves it unknown.
	AssumedState *State
}

// Result is the output of Analyze for one window.
type Result struct {
	Window   Window
	Stats    []DailyStatistic
	Episodes []Episode

	// Discarded counts records dropped for lack of a timestamp.
	Discarded int

	// Skipped counts events whose new state could not be read.
	Skipped int
}

// Analyze runs the full pipeline over the records of one window:
// normalize, build episodes, clip them to w and aggregate per day over
// every UTC day the window touches. It has no side effects and returns
// identical output for identical input.
func Analyze(records []RawRecord, w Window, opts Options) Result {
	events, discarded := NormalizeAll(records)
	skipped := 0
	for _, ev := range events {
		if !ev.Parsed() {
			skipped++
		}
	}

	episodes := ClipAll(BuildEpisodes(events, w, opts.AssumedState), w)
	return Result{
		Window:    w,
		Stats:     Aggregate(episodes, w.FirstDay(), w.LastDay()),
		Episodes:  episodes,
		Discarded: discarded,
		Skipped:   skipped,
	}
}
