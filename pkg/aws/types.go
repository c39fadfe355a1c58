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

// Package aws provides abstractions for interacting with AWS services.
//
// This file contains pure data structure definitions with no logic.

package aws

// History item types accepted by DescribeAlarmHistory. Only state updates
// carry the transitions needed to rebuild alarm episodes.
const (
	HistoryItemTypeStateUpdate = "StateUpdate"
)

// maxRecordsPerPage is the largest page DescribeAlarmHistory returns.
const maxRecordsPerPage int32 = 100

// AccountConfig represents configuration for accessing an AWS account.
// Supports both the default credential chain and AssumeRole-based access.
type AccountConfig struct {
	// AccountID is the AWS account ID (e.g., "111111111111").
	// Empty means the account of the default credential chain.
	AccountID string

	// Name is a human-readable name for this account (e.g., "Production")
	Name string

	// AssumeRoleARN is the ARN of the role to assume for cross-account access.
	// If empty, uses the default credential chain.
	// Example: "arn:aws:iam::111111111111:role/alarmstat-reader"
	AssumeRoleARN string

	// ExternalID is an optional external ID for AssumeRole operations.
	ExternalID string

	// SessionName is the name to use for AssumeRole sessions.
	// Defaults to "alarmstat-<account id>" if not specified.
	SessionName string

	// Region is the AWS region alarms are read from.
	Region string
}

// cacheKey identifies a per-account, per-region SDK client.
func (a AccountConfig) cacheKey() string {
	return a.AccountID + ":" + a.Region
}

// sessionName returns the AssumeRole session name for this account.
func (a AccountConfig) sessionName() string {
	if a.SessionName != "" {
		return a.SessionName
	}
	return "alarmstat-" + a.AccountID
}
