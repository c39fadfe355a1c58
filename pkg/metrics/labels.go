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

package metrics

// Metric label name constants.
const (
	// LabelAlarmName identifies the CloudWatch alarm a series belongs to.
	LabelAlarmName = "alarm_name"

	// LabelWindow is the lookback window label, e.g. "last_7_days".
	LabelWindow = "window"

	// LabelDay is a UTC calendar date in YYYY-MM-DD form.
	LabelDay = "day"
)
