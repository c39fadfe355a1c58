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

package aws

import (
	"context"
	"time"

	"github.com/nextdoor/alarmstat/pkg/alarm"
)

// HistorySource reads alarm history for one account. It satisfies the
// history fetcher used by the report orchestrator.
type HistorySource struct {
	Client  Client
	Account AccountConfig
}

// NewHistorySource creates a HistorySource for the given account.
func NewHistorySource(client Client, account AccountConfig) *HistorySource {
	return &HistorySource{Client: client, Account: account}
}

// FetchHistory returns the raw state updates of alarmName in [start, end].
func (s *HistorySource) FetchHistory(ctx context.Context, alarmName string, start, end time.Time) ([]alarm.RawRecord, error) {
	cw, err := s.Client.CloudWatch(ctx, s.Account)
	if err != nil {
		return nil, err
	}
	return cw.DescribeAlarmHistory(ctx, alarmName, start, end)
}
