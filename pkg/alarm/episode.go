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
	"slices"
	"time"
)

// Tracker is the state of the episode scan. It is a value: Step returns
// the next Tracker and never modifies the receiver.
type Tracker struct {
	// Current is the last known alarm state, nil before any state is known.
	Current *State

	open     bool
	openedAt time.Time
}

// NewTracker starts a scan. assumed is the state the alarm is taken to be
// in before the first event; nil means unknown. When assumed is
// StateTriggered an episode is opened at windowStart.
func NewTracker(assumed *State, windowStart time.Time) Tracker {
	t := Tracker{Current: assumed}
	if isTriggered(assumed) {
		t.open = true
		t.openedAt = windowStart
	}
	return t
}

// Open reports whether an episode is in progress and when it started.
func (t Tracker) Open() (time.Time, bool) {
	return t.openedAt, t.open
}

// Step applies one event. The returned Episode is valid only when the
// bool is true, which happens when the event moves the alarm out of
// StateTriggered.
//
// Events without a new state leave the tracker unchanged. Repeated
// StateTriggered events do not open a second episode.
func (t Tracker) Step(ev Event) (Tracker, Episode, bool) {
	if ev.New == nil {
		return t, Episode{}, false
	}

	next := Tracker{Current: ev.New, open: t.open, openedAt: t.openedAt}
	var (
		closed Episode
		emit   bool
	)
	switch {
	case isTriggered(ev.New) && !isTriggered(t.Current):
		next.open = true
		next.openedAt = ev.Timestamp
	case !isTriggered(ev.New) && isTriggered(t.Current) && t.open:
		closed = Episode{Start: t.openedAt, End: ev.Timestamp}
		emit = true
		next.open = false
		next.openedAt = time.Time{}
	}
	return next, closed, emit
}

// Finish closes an episode still open at the end of the scan, ending it
// at windowEnd.
func (t Tracker) Finish(windowEnd time.Time) (Episode, bool) {
	if !isTriggered(t.Current) || !t.open {
		return Episode{}, false
	}
	return Episode{Start: t.openedAt, End: windowEnd, Open: true}, true
}

// SortEvents returns a copy of events in ascending timestamp order.
// Events sharing a timestamp keep their relative input order.
func SortEvents(events []Event) []Event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}

// BuildEpisodes reconstructs StateTriggered episodes from events, which
// may be in any order. An episode still open after the last event ends
// at w.End. Episodes ending before they start are dropped; the result is
// not yet clipped to w.
func BuildEpisodes(events []Event, w Window, assumed *State) []Episode {
	t := NewTracker(assumed, w.Start)
	var episodes []Episode
	for _, ev := range SortEvents(events) {
		var (
			ep   Episode
			done bool
		)
		t, ep, done = t.Step(ev)
		if done {
			episodes = append(episodes, ep)
		}
	}
	if ep, ok := t.Finish(w.End); ok {
		episodes = append(episodes, ep)
	}

	return slices.DeleteFunc(episodes, func(ep Episode) bool {
		return ep.End.Before(ep.Start)
	})
}

func isTriggered(s *State) bool {
	return s != nil && *s == StateTriggered
}
