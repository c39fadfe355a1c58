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
	"fmt"
	"strings"
)

// Validator checks that alarms can be read before a report is produced.
type Validator interface {
	// ValidateAlarms verifies that the account is reachable (including
	// AssumeRole if configured) and that every named alarm exists.
	ValidateAlarms(ctx context.Context, accountConfig AccountConfig, alarmNames []string) error
}

// AccountValidator implements the Validator interface using a Client.
type AccountValidator struct {
	client Client
}

// NewAccountValidator creates a new AccountValidator that uses the provided
// AWS client to validate account access.
func NewAccountValidator(client Client) *AccountValidator {
	return &AccountValidator{
		client: client,
	}
}

// ValidateAlarms creates a CloudWatch client for the account, which
// triggers AssumeRole when configured, then looks up each alarm.
//
// All alarms are checked before returning so the error lists every
// missing or unreadable alarm at once.
func (v *AccountValidator) ValidateAlarms(ctx context.Context, accountConfig AccountConfig, alarmNames []string) error {
	cw, err := v.client.CloudWatch(ctx, accountConfig)
	if err != nil {
		return fmt.Errorf("failed to create CloudWatch client for account %s: %w",
			accountLabel(accountConfig), err)
	}

	var failed []string
	for _, name := range alarmNames {
		exists, err := cw.AlarmExists(ctx, name)
		switch {
		case err != nil:
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
		case !exists:
			failed = append(failed, fmt.Sprintf("%s: not found", name))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to validate %d/%d alarms in account %s: %s",
			len(failed), len(alarmNames), accountLabel(accountConfig), strings.Join(failed, "; "))
	}
	return nil
}

// accountLabel names an account in error messages.
func accountLabel(a AccountConfig) string {
	if a.AccountID == "" {
		return "default"
	}
	return a.AccountID
}
