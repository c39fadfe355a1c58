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

// Client is the main interface for interacting with AWS services.
// It hands out CloudWatch clients with built-in support for
// cross-account AssumeRole operations.
type Client interface {
	// CloudWatch returns a CloudWatchClient for the specified account configuration.
	// If accountConfig.AssumeRoleARN is set, it will assume that role.
	// Otherwise, it uses the default credential chain.
	CloudWatch(ctx context.Context, accountConfig AccountConfig) (CloudWatchClient, error)
}

// CloudWatchClient provides access to the CloudWatch alarm APIs.
type CloudWatchClient interface {
	// DescribeAlarmHistory returns every state update recorded for the
	// alarm between start and end, following pagination to the end.
	// Records are returned in the order the API produced them, which is
	// newest first.
	DescribeAlarmHistory(ctx context.Context, alarmName string, start, end time.Time) ([]alarm.RawRecord, error)

	// AlarmExists reports whether a metric or composite alarm with the
	// given name exists.
	AlarmExists(ctx context.Context, alarmName string) (bool, error)
}

// ClientConfig configures the AWS client creation.
type ClientConfig struct {
	// DefaultRegion is the default AWS region for API calls
	DefaultRegion string

	// MaxRetries is the maximum number of attempts the SDK retryer makes
	// for a single API call. Default: 3
	MaxRetries int

	// HTTPTimeout is the timeout for HTTP requests to AWS APIs
	// Default: 30 seconds
	HTTPTimeout time.Duration
}

// NewClient creates a new AWS client with the specified configuration.
// The client handles credential management, AssumeRole operations and
// SDK-level retries.
//
// For testing with LocalStack, use NewClientWithEndpoint instead.
func NewClient(ctx context.Context, config ClientConfig) (Client, error) {
	return NewClientWithEndpoint(ctx, config, "")
}

// NewClientWithEndpoint creates a new AWS client with a custom endpoint URL.
// This is primarily used for testing with LocalStack.
//
// For LocalStack testing, pass "http://localhost:4566" as endpointURL.
func NewClientWithEndpoint(ctx context.Context, config ClientConfig, endpointURL string) (Client, error) {
	return NewRealClient(ctx, config, endpointURL)
}
