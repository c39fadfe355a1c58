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

package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nextdoor/alarmstat/internal/report"
	"github.com/nextdoor/alarmstat/pkg/alarm"
)

// JSONRenderer writes the whole run as a single JSON document.
type JSONRenderer struct {
	RunID       string
	GeneratedAt time.Time
}

type jsonDocument struct {
	RunID       string      `json:"runId,omitempty"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Alarms      []jsonAlarm `json:"alarms"`
}

type jsonAlarm struct {
	AlarmName string       `json:"alarmName"`
	Windows   []jsonWindow `json:"windows"`
}

type jsonWindow struct {
	Label            string                 `json:"label"`
	LookbackDays     int                    `json:"lookbackDays"`
	Start            time.Time              `json:"start"`
	End              time.Time              `json:"end"`
	Error            string                 `json:"error,omitempty"`
	Episodes         int                    `json:"episodes"`
	DiscardedRecords int                    `json:"discardedRecords"`
	SkippedEvents    int                    `json:"skippedEvents"`
	Days             []alarm.DailyStatistic `json:"days"`
}

// Render implements Renderer.
func (r JSONRenderer) Render(w io.Writer, reports []report.EntityReport) error {
	doc := jsonDocument{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt.UTC(),
		Alarms:      make([]jsonAlarm, 0, len(reports)),
	}
	for _, entity := range reports {
		a := jsonAlarm{AlarmName: entity.AlarmName, Windows: make([]jsonWindow, 0, len(entity.Windows))}
		for _, win := range entity.Windows {
			jw := jsonWindow{
				Label:        win.Label,
				LookbackDays: win.Days,
				Start:        win.Window.Start,
				End:          win.Window.End,
				Days:         []alarm.DailyStatistic{},
			}
			if win.Failed() {
				jw.Error = win.Err.Error()
			} else {
				jw.Episodes = len(win.Result.Episodes)
				jw.DiscardedRecords = win.Result.Discarded
				jw.SkippedEvents = win.Result.Skipped
				jw.Days = win.Result.Stats
			}
			a.Windows = append(a.Windows, jw)
		}
		doc.Alarms = append(doc.Alarms, a)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
