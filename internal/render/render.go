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

// Package render writes report results as console tables, markdown, CSV
// or JSON.
package render

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nextdoor/alarmstat/internal/report"
	"github.com/nextdoor/alarmstat/pkg/config"
)

// Renderer writes a set of entity reports to w.
type Renderer interface {
	Render(w io.Writer, reports []report.EntityReport) error
}

// ForFormat returns the renderer for one of the config.Format* values.
// An empty format selects the console table.
func ForFormat(format, runID string, generatedAt time.Time) (Renderer, error) {
	switch format {
	case "", config.FormatTable:
		return TableRenderer{}, nil
	case config.FormatMarkdown:
		return MarkdownRenderer{}, nil
	case config.FormatCSV:
		return CSVRenderer{}, nil
	case config.FormatJSON:
		return JSONRenderer{RunID: runID, GeneratedAt: generatedAt}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// sectionTitle is the heading printed above each window's rows.
func sectionTitle(alarmName, label string) string {
	return fmt.Sprintf("Alarm '%s' - %s (UTC)", alarmName, label)
}

// formatAverage renders an optional average with the given precision,
// using absent when there were no occurrences.
func formatAverage(avg *float64, precision int, absent string) string {
	if avg == nil {
		return absent
	}
	return strconv.FormatFloat(*avg, 'f', precision, 64)
}
