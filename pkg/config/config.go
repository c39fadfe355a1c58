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

// Package config provides configuration management for alarmstat.
//
// A report run needs:
//   - the CloudWatch alarms to analyze
//   - the lookback windows to compute
//   - optionally an AWS account and IAM role to assume
//   - output and retry settings
//
// Configuration can be loaded from a YAML file, environment variables and
// command-line flags. Uses Viper for configuration management with
// explicit env binding.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nextdoor/alarmstat/pkg/alarm"
)

// Output formats understood by the report command.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// DefaultLookbackDays are the windows reported when none are configured.
var DefaultLookbackDays = []int{1, 7, 30}

// Config represents the complete alarmstat configuration.
type Config struct {
	// Alarms is the list of CloudWatch alarm names to report on.
	// Each alarm is analyzed independently.
	Alarms []string `yaml:"alarms"`

	// LookbackDays is the list of lookback windows, in days.
	// Default: [1, 7, 30]
	LookbackDays []int `yaml:"lookbackDays,omitempty"`

	// DefaultRegion is the AWS region alarms are read from.
	// Default: us-west-2
	DefaultRegion string `yaml:"defaultRegion,omitempty"`

	// Account is the AWS account to read alarms from. When nil the
	// default credential chain is used as is.
	Account *AWSAccount `yaml:"account,omitempty"`

	// EndpointURL overrides the AWS endpoint (LocalStack testing only).
	EndpointURL string `yaml:"endpointURL,omitempty"`

	// LogLevel controls the verbosity of logs.
	// Valid values: debug, info, warn, error
	// Default: info
	LogLevel string `yaml:"logLevel,omitempty"`

	// Concurrency is the number of windows fetched in parallel.
	// Default: 4
	Concurrency int `yaml:"concurrency,omitempty"`

	// AssumedState is the state an alarm is taken to be in before each
	// window opens. Empty leaves it unknown, which is the default.
	// Valid values: "", ALARM, OK, INSUFFICIENT_DATA
	AssumedState string `yaml:"assumedState,omitempty"`

	// Retry configures retries of a failed history fetch.
	Retry RetryConfig `yaml:"retry,omitempty"`

	// Output controls where and how results are written.
	Output OutputConfig `yaml:"output,omitempty"`
}

// RetryConfig contains settings for retrying history fetches.
type RetryConfig struct {
	// MaxRetries is the maximum number of attempts per window.
	// Default: 3
	MaxRetries int `yaml:"maxRetries,omitempty"`

	// InitialDelay is the delay before the first retry.
	// Format: Go duration string (e.g., "1s", "500ms")
	// Default: 1s
	InitialDelay string `yaml:"initialDelay,omitempty"`

	// MaxDelay caps the exponential backoff.
	// Default: 20s
	MaxDelay string `yaml:"maxDelay,omitempty"`
}

// OutputConfig contains settings for report output.
type OutputConfig struct {
	// Format is one of table, markdown, csv, json.
	// Default: table
	Format string `yaml:"format,omitempty"`

	// Path is the file the report is written to. Empty writes to stdout.
	Path string `yaml:"path,omitempty"`

	// CSVPath additionally writes the report as CSV to this file.
	CSVPath string `yaml:"csvPath,omitempty"`

	// MetricsFile writes run metrics in Prometheus text format to this
	// file, for the node exporter textfile collector.
	MetricsFile string `yaml:"metricsFile,omitempty"`
}

// AWSAccount represents the AWS account alarms are read from.
type AWSAccount struct {
	// AccountID is the 12-digit AWS account ID.
	AccountID string `yaml:"accountId"`

	// Name is a human-readable name for the account.
	// Used in logs and report output.
	Name string `yaml:"name,omitempty"`

	// AssumeRoleARN is the IAM role ARN to assume for accessing this account.
	// Format: arn:aws:iam::ACCOUNT_ID:role/ROLE_NAME
	// If empty, the default credential chain must already point at the account.
	AssumeRoleARN string `yaml:"assumeRoleArn,omitempty"`

	// ExternalID is passed to AssumeRole when set.
	ExternalID string `yaml:"externalId,omitempty"`

	// Region overrides Config.DefaultRegion for this account.
	Region string `yaml:"region,omitempty"`
}

// Load loads configuration from a YAML file. An empty path skips the file
// and only applies defaults and environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (ALARMSTAT_* prefix)
//  2. Configuration file values
//  3. Default values
//
// Command-line flags are applied by the caller on top of the result,
// after which Validate should be called.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("lookbackDays", DefaultLookbackDays)
	v.SetDefault("defaultRegion", "us-west-2")
	v.SetDefault("logLevel", "info")
	v.SetDefault("concurrency", 4)
	v.SetDefault("retry.maxRetries", 3)
	v.SetDefault("retry.initialDelay", "1s")
	v.SetDefault("retry.maxDelay", "20s")
	v.SetDefault("output.format", FormatTable)

	// Viper's automatic mapping doesn't handle camelCase to
	// SCREAMING_SNAKE_CASE, so each key is bound explicitly.
	v.SetEnvPrefix("ALARMSTAT")
	_ = v.BindEnv("defaultRegion", "ALARMSTAT_DEFAULT_REGION")
	_ = v.BindEnv("endpointURL", "ALARMSTAT_ENDPOINT_URL")
	_ = v.BindEnv("logLevel", "ALARMSTAT_LOG_LEVEL")
	_ = v.BindEnv("concurrency", "ALARMSTAT_CONCURRENCY")
	_ = v.BindEnv("assumedState", "ALARMSTAT_ASSUMED_STATE")
	_ = v.BindEnv("retry.maxRetries", "ALARMSTAT_RETRY_MAX_RETRIES")
	_ = v.BindEnv("retry.initialDelay", "ALARMSTAT_RETRY_INITIAL_DELAY")
	_ = v.BindEnv("retry.maxDelay", "ALARMSTAT_RETRY_MAX_DELAY")
	_ = v.BindEnv("output.format", "ALARMSTAT_OUTPUT_FORMAT")
	_ = v.BindEnv("output.metricsFile", "ALARMSTAT_OUTPUT_METRICS_FILE")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.validateSettings(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete and valid.
func (c *Config) Validate() error {
	if len(c.Alarms) == 0 {
		return fmt.Errorf("at least one alarm must be configured")
	}
	seen := make(map[string]bool)
	for _, name := range c.Alarms {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("alarm name must not be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate alarm: %s", name)
		}
		seen[name] = true
	}
	return c.validateSettings()
}

// validateSettings checks everything except the alarm list, which may
// still come from flags when a file is loaded.
func (c *Config) validateSettings() error {
	for _, days := range c.LookbackDays {
		if days <= 0 {
			return fmt.Errorf("invalid lookback %d: must be a positive number of days", days)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("invalid concurrency %d: must not be negative", c.Concurrency)
	}

	if c.AssumedState != "" && alarm.ParseState(c.AssumedState) == alarm.StateUnknown {
		return fmt.Errorf("invalid assumed state %q, must be one of: ALARM, OK, INSUFFICIENT_DATA", c.AssumedState)
	}

	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("invalid retry max retries %d: must not be negative", c.Retry.MaxRetries)
	}
	if c.Retry.InitialDelay != "" {
		if _, err := time.ParseDuration(c.Retry.InitialDelay); err != nil {
			return fmt.Errorf("invalid retry initial delay %q: %w", c.Retry.InitialDelay, err)
		}
	}
	if c.Retry.MaxDelay != "" {
		if _, err := time.ParseDuration(c.Retry.MaxDelay); err != nil {
			return fmt.Errorf("invalid retry max delay %q: %w", c.Retry.MaxDelay, err)
		}
	}

	switch c.Output.Format {
	case "", FormatTable, FormatMarkdown, FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("invalid output format %q, must be one of: table, markdown, csv, json", c.Output.Format)
	}

	if c.Account != nil {
		if err := c.Account.Validate(); err != nil {
			return fmt.Errorf("invalid account: %w", err)
		}
	}

	return nil
}

// Validate checks that the AWS account configuration is valid.
func (a *AWSAccount) Validate() error {
	if !isValidAccountID(a.AccountID) {
		return fmt.Errorf("invalid account ID %q: must be 12 digits", a.AccountID)
	}

	if a.AssumeRoleARN == "" {
		return nil
	}

	if !isValidIAMRoleARN(a.AssumeRoleARN) {
		return fmt.Errorf(
			"invalid AssumeRole ARN %q: must be in format arn:aws:iam::ACCOUNT_ID:role/ROLE_NAME",
			a.AssumeRoleARN,
		)
	}

	// The role must live in the configured account.
	arnAccountID := AccountIDFromARN(a.AssumeRoleARN)
	if arnAccountID != a.AccountID {
		return fmt.Errorf("AssumeRole ARN account ID %q does not match configured account ID %q", arnAccountID, a.AccountID)
	}

	return nil
}

// isValidAccountID checks if a string is a valid 12-digit AWS account ID.
func isValidAccountID(accountID string) bool {
	matched, _ := regexp.MatchString(`^\d{12}$`, accountID)
	return matched
}

// isValidIAMRoleARN checks if a string is a valid IAM role ARN.
// Valid format: arn:aws:iam::123456789012:role/RoleName
// Also accepts the aws-us-gov and aws-cn partitions.
func isValidIAMRoleARN(arn string) bool {
	matched, _ := regexp.MatchString(`^arn:(aws|aws-us-gov|aws-cn):iam::\d{12}:role/[a-zA-Z0-9+=,.@\-_/]+$`, arn)
	return matched
}

// AccountIDFromARN extracts the account ID from an IAM role ARN.
// Returns empty string if the ARN is invalid.
func AccountIDFromARN(arn string) string {
	// ARN format: arn:aws:iam::123456789012:role/RoleName
	parts := strings.Split(arn, ":")
	if len(parts) >= 5 {
		return parts[4]
	}
	return ""
}

// GetLookbackDays returns the configured lookback windows, or
// DefaultLookbackDays when none are set.
func (c *Config) GetLookbackDays() []int {
	if len(c.LookbackDays) == 0 {
		return DefaultLookbackDays
	}
	return c.LookbackDays
}

// GetRegion returns the account region when set, else DefaultRegion.
func (c *Config) GetRegion() string {
	if c.Account != nil && c.Account.Region != "" {
		return c.Account.Region
	}
	return c.DefaultRegion
}

// GetAssumedState returns the parsed assumed pre-window state, or nil when unset.
func (c *Config) GetAssumedState() *alarm.State {
	if c.AssumedState == "" {
		return nil
	}
	return alarm.ParseState(c.AssumedState).Ptr()
}

// GetRetryInitialDelay returns the parsed initial retry delay.
// Returns 1 second if not configured.
func (c *Config) GetRetryInitialDelay() time.Duration {
	return parseDurationOr(c.Retry.InitialDelay, time.Second)
}

// GetRetryMaxDelay returns the parsed maximum retry delay.
// Returns 20 seconds if not configured.
func (c *Config) GetRetryMaxDelay() time.Duration {
	return parseDurationOr(c.Retry.MaxDelay, 20*time.Second)
}

// parseDurationOr parses s, returning fallback when s is empty or invalid.
// Validate rejects invalid values, so the fallback only covers unset fields.
func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
