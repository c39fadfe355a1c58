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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	jan1 := Day{Year: 2024, Month: time.January, Day: 1}
	jan3 := jan1.AddDays(2)

	t.Run("one entry per day with no gaps", func(t *testing.T) {
		stats := Aggregate(nil, jan1, jan3)
		require.Len(t, stats, 3)
		for i, s := range stats {
			assert.Equal(t, jan1.AddDays(i), s.Day)
			assert.Zero(t, s.Count)
			assert.Nil(t, s.AverageDurationMinutes)
		}
	})

	t.Run("mean duration per start day", func(t *testing.T) {
		episodes := []Episode{
			{Start: at(0), End: at(30)},
			{Start: at(60), End: at(150)},
			{Start: at(24 * 60), End: at(24*60 + 15)},
		}
		stats := Aggregate(episodes, jan1, jan3)
		require.Len(t, stats, 3)

		assert.Equal(t, 2, stats[0].Count)
		require.NotNil(t, stats[0].AverageDurationMinutes)
		assert.InDelta(t, 60.0, *stats[0].AverageDurationMinutes, 1e-9)

		assert.Equal(t, 1, stats[1].Count)
		require.NotNil(t, stats[1].AverageDurationMinutes)
		assert.InDelta(t, 15.0, *stats[1].AverageDurationMinutes, 1e-9)

		assert.Zero(t, stats[2].Count)
		assert.Nil(t, stats[2].AverageDurationMinutes)
	})

	t.Run("episode spanning midnight counts only on its start day", func(t *testing.T) {
		// 2024-01-01T23:00Z to 2024-01-02T01:00Z
		episodes := []Episode{{Start: at(13 * 60), End: at(15 * 60)}}
		stats := Aggregate(episodes, jan1, jan3)

		assert.Equal(t, 1, stats[0].Count)
		assert.InDelta(t, 120.0, *stats[0].AverageDurationMinutes, 1e-9)
		assert.Zero(t, stats[1].Count)
	})

	t.Run("episodes outside the range are ignored", func(t *testing.T) {
		episodes := []Episode{
			{Start: at(-24 * 60), End: at(-24*60 + 5)},
			{Start: at(5 * 24 * 60), End: at(5*24*60 + 5)},
		}
		stats := Aggregate(episodes, jan1, jan3)
		for _, s := range stats {
			assert.Zero(t, s.Count)
		}
	})

	t.Run("zero length episode is a counted occurrence", func(t *testing.T) {
		stats := Aggregate([]Episode{{Start: at(0), End: at(0)}}, jan1, jan1)
		require.Len(t, stats, 1)
		assert.Equal(t, 1, stats[0].Count)
		require.NotNil(t, stats[0].AverageDurationMinutes)
		assert.Zero(t, *stats[0].AverageDurationMinutes)
	})

	t.Run("inverted range yields nothing", func(t *testing.T) {
		assert.Empty(t, Aggregate(nil, jan3, jan1))
	})
}
