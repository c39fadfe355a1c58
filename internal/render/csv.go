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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nextdoor/alarmstat/internal/report"
)

var csvHeader = []string{"section", "date_utc", "count", "avg_duration_minutes"}

// CSVRenderer writes one row per day per window. The section column is
// the window label, prefixed with "<alarm>/" when more than one alarm is
// reported. Failed windows contribute no rows.
type CSVRenderer struct{}

// Render implements Renderer.
func (CSVRenderer) Render(w io.Writer, reports []report.EntityReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entity := range reports {
		for _, win := range entity.Windows {
			if win.Failed() {
				continue
			}
			section := win.Label
			if len(reports) > 1 {
				section = entity.AlarmName + "/" + win.Label
			}
			for _, stat := range win.Result.Stats {
				row := []string{
					section,
					stat.Day.String(),
					strconv.Itoa(stat.Count),
					formatAverage(stat.AverageDurationMinutes, 6, ""),
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
