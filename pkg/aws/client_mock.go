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
	"sync"
	"time"

	"github.com/nextdoor/alarmstat/pkg/alarm"
)

// MockClient is a mock implementation of the Client interface for testing.
// It provides configurable responses and tracks method calls.
type MockClient struct {
	mu sync.RWMutex

	// CloudWatchClients maps AccountID to MockCloudWatchClient
	CloudWatchClients map[string]*MockCloudWatchClient

	// AssumeRoleCalls tracks all AssumeRole attempts
	AssumeRoleCalls []AssumeRoleCall

	// CloudWatchError can be set to simulate client creation errors
	CloudWatchError error
}

// AssumeRoleCall records an AssumeRole operation for testing.
type AssumeRoleCall struct {
	AccountID     string
	AssumeRoleARN string
	SessionName   string
}

// NewMockClient creates a new MockClient with initialized maps.
func NewMockClient() *MockClient {
	return &MockClient{
		CloudWatchClients: make(map[string]*MockCloudWatchClient),
		AssumeRoleCalls:   []AssumeRoleCall{},
	}
}

// CloudWatch returns a mock CloudWatchClient for the specified account.
func (m *MockClient) CloudWatch(_ context.Context, accountConfig AccountConfig) (CloudWatchClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CloudWatchError != nil {
		return nil, m.CloudWatchError
	}

	// Track AssumeRole call if ARN is specified
	if accountConfig.AssumeRoleARN != "" {
		m.AssumeRoleCalls = append(m.AssumeRoleCalls, AssumeRoleCall{
			AccountID:     accountConfig.AccountID,
			AssumeRoleARN: accountConfig.AssumeRoleARN,
			SessionName:   accountConfig.sessionName(),
		})
	}

	// Return existing client or create new one
	client, exists := m.CloudWatchClients[accountConfig.AccountID]
	if !exists {
		client = NewMockCloudWatchClient()
		m.CloudWatchClients[accountConfig.AccountID] = client
	}

	return client, nil
}

// HistoryCall records the arguments of a DescribeAlarmHistory call.
type HistoryCall struct {
	AlarmName string
	Start     time.Time
	End       time.Time
}

// MockCloudWatchClient is a mock implementation of CloudWatchClient for testing.
type MockCloudWatchClient struct {
	mu sync.RWMutex

	// History maps alarm name to the records returned for it.
	// Records are filtered to the requested range like the real API.
	History map[string][]alarm.RawRecord

	// Alarms is the set of alarm names AlarmExists reports as present.
	Alarms map[string]bool

	// HistoryErrors maps alarm name to an error to return for it.
	HistoryErrors map[string]error

	// Error injection for testing error paths
	DescribeAlarmHistoryError error
	AlarmExistsError          error

	// HistoryCalls tracks DescribeAlarmHistory calls in order
	HistoryCalls []HistoryCall

	// AlarmExistsCallCount tracks AlarmExists calls
	AlarmExistsCallCount int
}

// NewMockCloudWatchClient creates a new MockCloudWatchClient.
func NewMockCloudWatchClient() *MockCloudWatchClient {
	return &MockCloudWatchClient{
		History:       make(map[string][]alarm.RawRecord),
		Alarms:        make(map[string]bool),
		HistoryErrors: make(map[string]error),
	}
}

// DescribeAlarmHistory returns the mock history for alarmName. Records with
// a timestamp outside [start, end] are left out; records without a
// timestamp are always returned.
func (m *MockCloudWatchClient) DescribeAlarmHistory(
	_ context.Context,
	alarmName string,
	start, end time.Time,
) ([]alarm.RawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HistoryCalls = append(m.HistoryCalls, HistoryCall{AlarmName: alarmName, Start: start, End: end})

	if m.DescribeAlarmHistoryError != nil {
		return nil, m.DescribeAlarmHistoryError
	}
	if err := m.HistoryErrors[alarmName]; err != nil {
		return nil, err
	}

	w := alarm.Window{Start: start, End: end}
	filtered := []alarm.RawRecord{}
	for _, rec := range m.History[alarmName] {
		if !rec.Timestamp.IsZero() && !w.Contains(rec.Timestamp) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered, nil
}

// AlarmExists reports whether alarmName is in Alarms.
func (m *MockCloudWatchClient) AlarmExists(_ context.Context, alarmName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlarmExistsCallCount++

	if m.AlarmExistsError != nil {
		return false, m.AlarmExistsError
	}
	return m.Alarms[alarmName], nil
}

// AddHistory appends records for alarmName and marks the alarm as existing
// (helper for tests).
func (m *MockCloudWatchClient) AddHistory(alarmName string, records ...alarm.RawRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.History[alarmName] = append(m.History[alarmName], records...)
	m.Alarms[alarmName] = true
}

// Calls returns a copy of the recorded DescribeAlarmHistory calls.
func (m *MockCloudWatchClient) Calls() []HistoryCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]HistoryCall, len(m.HistoryCalls))
	copy(calls, m.HistoryCalls)
	return calls
}
