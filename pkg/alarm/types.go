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

// Package alarm reconstructs alarm episodes from CloudWatch alarm history
// and reduces them to per-day occurrence statistics.
//
// The pipeline is strictly downstream and free of I/O:
//
//	RawRecord -> Event -> Episode -> clipped Episode -> DailyStatistic
//
// Retrieval of history records (pagination, credentials, throttling) and
// rendering of the resulting statistics live outside this package.
package alarm

import (
	"time"
)

// State is the state an alarm reports in a history record.
type State string

// Known alarm states. The string values match the CloudWatch API.
const (
	StateTriggered    State = "ALARM"
	StateNormal       State = "OK"
	StateInsufficient State = "INSUFFICIENT_DATA"
	StateUnknown      State = "UNKNOWN"
)

// ParseState maps a raw state value onto the known enumeration.
// Any value outside the enumeration, including the empty string, is StateUnknown.
func ParseState(s string) State {
	switch State(s) {
	case StateTriggered, StateNormal, StateInsufficient:
		return State(s)
	default:
		return StateUnknown
	}
}

// Ptr returns a pointer to a copy of s.
func (s State) Ptr() *State {
	return &s
}

// RawRecord is a single alarm history item as handed over by the fetcher.
type RawRecord struct {
	// Timestamp of the history item. The zero value means the record
	// carries no usable timestamp.
	Timestamp time.Time

	// Payload is the HistoryData blob. Nil or empty means absent.
	Payload []byte
}

// Event is a normalized state transition.
// Previous and New are nil when the payload could not be read.
type Event struct {
	Timestamp time.Time
	Previous  *State
	New       *State
}

// Parsed reports whether the event carries a new state.
func (e Event) Parsed() bool {
	return e.New != nil
}

// Episode is an interval during which the alarm was in StateTriggered.
type Episode struct {
	Start time.Time
	End   time.Time

	// Open is set when the alarm had not left StateTriggered by the end
	// of the scan and End was taken from the window.
	Open bool
}

// Duration returns End - Start.
func (e Episode) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// DailyStatistic summarizes the episodes that started on one UTC day.
type DailyStatistic struct {
	Day   Day `json:"day"`
	Count int `json:"count"`

	// AverageDurationMinutes is nil when Count is zero, so that "no
	// occurrences" stays distinct from "occurrences of zero length".
	AverageDurationMinutes *float64 `json:"averageDurationMinutes"`
}
