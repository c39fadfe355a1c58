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
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nestedRecord(ts time.Time, from, to State) RawRecord {
	payload := fmt.Sprintf(`{"version":"1.0","oldState":{"stateValue":%q},"newState":{"stateValue":%q}}`, from, to)
	return RawRecord{Timestamp: ts, Payload: []byte(payload)}
}

func TestAnalyze_ExampleScenario(t *testing.T) {
	window := Window{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
	}
	records := []RawRecord{
		nestedRecord(time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), StateTriggered, StateNormal),
		nestedRecord(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), StateNormal, StateTriggered),
	}

	res := Analyze(records, window, Options{})

	require.Len(t, res.Stats, 2)
	assert.Equal(t, "2024-01-01", res.Stats[0].Day.String())
	assert.Equal(t, 1, res.Stats[0].Count)
	require.NotNil(t, res.Stats[0].AverageDurationMinutes)
	assert.InDelta(t, 30.0, *res.Stats[0].AverageDurationMinutes, 1e-9)

	assert.Equal(t, "2024-01-02", res.Stats[1].Day.String())
	assert.Equal(t, 0, res.Stats[1].Count)
	assert.Nil(t, res.Stats[1].AverageDurationMinutes)
}

func TestAnalyze_Idempotent(t *testing.T) {
	window := Window{Start: at(-3 * 24 * 60), End: at(90)}
	records := []RawRecord{
		nestedRecord(at(-2*24*60), StateNormal, StateTriggered),
		{Timestamp: at(-24 * 60), Payload: []byte("{broken")},
		nestedRecord(at(-24*60+45), StateTriggered, StateNormal),
		nestedRecord(at(30), StateNormal, StateTriggered),
		{Payload: []byte(`{"newStateValue":"OK"}`)},
	}

	first := Analyze(records, window, Options{})
	second := Analyze(records, window, Options{})

	assert.Equal(t, first, second)
	assert.Equal(t, 1, first.Discarded)
	assert.Equal(t, 1, first.Skipped)
	require.Len(t, first.Episodes, 2)
	assert.True(t, first.Episodes[1].Open)
	assert.Equal(t, at(90), first.Episodes[1].End)
}

func TestAnalyze_Completeness(t *testing.T) {
	for _, days := range []int{1, 7, 30} {
		t.Run(fmt.Sprintf("last_%d_days", days), func(t *testing.T) {
			w := LookbackWindow(at(0), days)
			res := Analyze(nil, w, Options{})

			want := int(w.LastDay().Start().Sub(w.FirstDay().Start()).Hours()/24) + 1
			assert.Len(t, res.Stats, want)
			assert.Empty(t, res.Episodes)
		})
	}
}

func TestAnalyze_EpisodeOutsideWindowContributesNothing(t *testing.T) {
	window := Window{Start: at(0), End: at(24 * 60)}
	records := []RawRecord{
		nestedRecord(at(-120), StateNormal, StateTriggered),
		nestedRecord(at(-60), StateTriggered, StateNormal),
	}

	res := Analyze(records, window, Options{})

	assert.Empty(t, res.Episodes)
	for _, s := range res.Stats {
		assert.Zero(t, s.Count)
	}
}

func TestAnalyze_AssumedTriggeredClippedToWindow(t *testing.T) {
	window := Window{Start: at(0), End: at(24 * 60)}
	records := []RawRecord{
		nestedRecord(at(20), StateTriggered, StateNormal),
	}

	res := Analyze(records, window, Options{AssumedState: StateTriggered.Ptr()})

	require.Len(t, res.Episodes, 1)
	assert.Equal(t, Episode{Start: at(0), End: at(20)}, res.Episodes[0])
	assert.Equal(t, 1, res.Stats[0].Count)
	assert.InDelta(t, 20.0, *res.Stats[0].AverageDurationMinutes, 1e-9)
}

func TestAnalyze_EmptyStateValueClosesEpisode(t *testing.T) {
	window := Window{Start: at(-600), End: at(300)}
	records := []RawRecord{
		{Timestamp: at(0), Payload: []byte(`{"newState":{"stateValue":"ALARM"}}`)},
		{Timestamp: at(30), Payload: []byte(`{"newState":{"stateValue":""}}`)},
	}

	res := Analyze(records, window, Options{})

	require.Len(t, res.Episodes, 1)
	assert.Equal(t, at(0), res.Episodes[0].Start)
	assert.Equal(t, at(30), res.Episodes[0].End)
	assert.False(t, res.Episodes[0].Open)
	assert.Zero(t, res.Skipped)
}
