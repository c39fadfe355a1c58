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

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/nextdoor/alarmstat/internal/logging"
	"github.com/nextdoor/alarmstat/internal/report"
	"github.com/nextdoor/alarmstat/pkg/aws"
	"github.com/nextdoor/alarmstat/pkg/config"
)

// ExitCodeError signals a non-zero exit code without being a runtime error.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// enhanceError wraps an error with context and suggestions for common AWS issues.
func enhanceError(action string, err error) error {
	msg := err.Error()

	var hint string
	switch {
	case strings.Contains(msg, "no EC2 IMDS role found"),
		strings.Contains(msg, "failed to retrieve credentials"):
		hint = "Configure AWS credentials: set AWS_PROFILE or run 'aws sso login'"
	case strings.Contains(msg, "ExpiredToken"):
		hint = "AWS credentials expired. Refresh your session and retry"
	case strings.Contains(msg, "AccessDenied"):
		hint = "Insufficient permissions. The role needs cloudwatch:DescribeAlarmHistory and cloudwatch:DescribeAlarms"
	case strings.Contains(msg, "Throttling"), strings.Contains(msg, "Rate exceeded"):
		hint = "CloudWatch rate limit hit. Retry with lower --concurrency"
	}

	if hint != "" {
		return fmt.Errorf("%s: %w\n  hint: %s", action, err, hint)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// loadConfig reads the config file and applies any flags that were set on
// the command line on top of it.
func loadConfig(opts *globalOptions, flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("alarm-name") {
		cfg.Alarms = opts.alarms
	}
	if flags.Changed("region") {
		cfg.DefaultRegion = opts.region
		if cfg.Account != nil {
			cfg.Account.Region = ""
		}
	}
	if flags.Changed("endpoint-url") {
		cfg.EndpointURL = opts.endpointURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if opts.accountID != "" || opts.assumeRoleARN != "" {
		if cfg.Account == nil {
			cfg.Account = &config.AWSAccount{}
		}
		if opts.assumeRoleARN != "" {
			cfg.Account.AssumeRoleARN = opts.assumeRoleARN
		}
		switch {
		case opts.accountID != "":
			cfg.Account.AccountID = opts.accountID
		case cfg.Account.AccountID == "":
			cfg.Account.AccountID = config.AccountIDFromARN(opts.assumeRoleARN)
		}
	}
	return cfg, nil
}

// newLogger builds the run logger from the config.
func newLogger(cfg *config.Config, verbose bool) (logr.Logger, error) {
	return logging.New(logging.Options{Level: cfg.LogLevel, Development: verbose})
}

// accountConfig maps the configured account onto the AWS client's view.
func accountConfig(cfg *config.Config) aws.AccountConfig {
	account := aws.AccountConfig{Region: cfg.GetRegion()}
	if cfg.Account != nil {
		account.AccountID = cfg.Account.AccountID
		account.Name = cfg.Account.Name
		account.AssumeRoleARN = cfg.Account.AssumeRoleARN
		account.ExternalID = cfg.Account.ExternalID
	}
	return account
}

// newAWSClient creates the AWS client for the configured region and endpoint.
func newAWSClient(ctx context.Context, deps dependencies, cfg *config.Config) (aws.Client, error) {
	client, err := deps.newClient(ctx, aws.ClientConfig{
		DefaultRegion: cfg.GetRegion(),
	}, cfg.EndpointURL)
	if err != nil {
		return nil, enhanceError("initialize AWS client", err)
	}
	return client, nil
}

// retryConfig converts the configured retry settings.
func retryConfig(cfg *config.Config) report.RetryConfig {
	rc := report.DefaultRetryConfig()
	if cfg.Retry.MaxRetries > 0 {
		rc.MaxRetries = cfg.Retry.MaxRetries
	}
	rc.InitialDelay = cfg.GetRetryInitialDelay()
	rc.MaxDelay = cfg.GetRetryMaxDelay()
	rc.Retryable = aws.IsRetryable
	return rc
}

// parseDays turns trailing positional arguments into extra lookbacks, so
// "--days 1 7 30" works as well as "--days 1,7,30".
func parseDays(args []string) ([]int, error) {
	days := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("unexpected argument %q: lookbacks must be whole days", arg)
		}
		days = append(days, n)
	}
	return days, nil
}

// openOutput returns stdout when path is empty, else the created file.
// The returned close function is always safe to call.
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}
