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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/nextdoor/alarmstat/internal/report"
)

var tableHeader = []string{"date(UTC)", "count", "avg_duration_min"}

// TableRenderer prints one console table per alarm window.
type TableRenderer struct{}

// Render implements Renderer.
func (TableRenderer) Render(w io.Writer, reports []report.EntityReport) error {
	return renderSections(w, reports, false)
}

// MarkdownRenderer prints one markdown table per alarm window, suitable
// for pasting into a ticket or runbook.
type MarkdownRenderer struct{}

// Render implements Renderer.
func (MarkdownRenderer) Render(w io.Writer, reports []report.EntityReport) error {
	return renderSections(w, reports, true)
}

func renderSections(w io.Writer, reports []report.EntityReport, markdown bool) error {
	for _, entity := range reports {
		for _, win := range entity.Windows {
			title := sectionTitle(entity.AlarmName, win.Label)
			if markdown {
				if _, err := fmt.Fprintf(w, "\n### %s\n\n", title); err != nil {
					return err
				}
			} else {
				if _, err := fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", len(title))); err != nil {
					return err
				}
			}

			if win.Failed() {
				if _, err := fmt.Fprintf(w, "error: %v\n", win.Err); err != nil {
					return err
				}
				continue
			}

			table := tablewriter.NewWriter(w)
			table.SetHeader(tableHeader)
			table.SetAutoFormatHeaders(false)
			table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
			if markdown {
				table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
				table.SetCenterSeparator("|")
			}
			for _, stat := range win.Result.Stats {
				table.Append([]string{
					stat.Day.String(),
					strconv.Itoa(stat.Count),
					formatAverage(stat.AverageDurationMinutes, 2, "N/A"),
				})
			}
			table.Render()
		}
	}
	return nil
}
