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

// Package report runs the alarm history pipeline over several lookback
// windows per alarm and collects the results for rendering.
package report

import (
	"fmt"

	"github.com/nextdoor/alarmstat/pkg/alarm"
)

// WindowLabel returns the label used for a lookback of days, e.g.
// "last_7_days". The same label is used in output sections and metrics.
func WindowLabel(days int) string {
	return fmt.Sprintf("last_%d_days", days)
}

// WindowReport is the outcome of one lookback window for one alarm.
// Exactly one of Result and Err is meaningful.
type WindowReport struct {
	Label  string
	Days   int
	Window alarm.Window
	Result alarm.Result
	Err    error
}

// Failed reports whether the window could not be computed.
func (r WindowReport) Failed() bool {
	return r.Err != nil
}

// EntityReport holds the window reports of one alarm, in lookback order.
type EntityReport struct {
	AlarmName string
	Windows   []WindowReport
}

// Failed reports whether every window of the alarm failed.
func (r EntityReport) Failed() bool {
	if len(r.Windows) == 0 {
		return false
	}
	for _, w := range r.Windows {
		if !w.Failed() {
			return false
		}
	}
	return true
}

// AllFailed reports whether every window of every alarm failed.
func AllFailed(reports []EntityReport) bool {
	if len(reports) == 0 {
		return false
	}
	for _, r := range reports {
		if !r.Failed() {
			return false
		}
	}
	return true
}
