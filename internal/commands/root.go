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

// Package commands implements the alarmstat command line.
package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextdoor/alarmstat/pkg/aws"
)

// BuildInfo is injected at link time and printed by the version command.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// dependencies are the seams tests replace.
type dependencies struct {
	newClient func(ctx context.Context, cfg aws.ClientConfig, endpointURL string) (aws.Client, error)
	clock     func() time.Time
}

func defaultDependencies() dependencies {
	return dependencies{
		newClient: aws.NewClientWithEndpoint,
		clock:     time.Now,
	}
}

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath    string
	verbose       bool
	logLevel      string
	region        string
	endpointURL   string
	accountID     string
	assumeRoleARN string
	alarms        []string
}

// Execute runs the root command with injected build info.
func Execute(info BuildInfo) error {
	return NewRootCommand(info).Execute()
}

// NewRootCommand builds the alarmstat command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	return newRootCommand(info, defaultDependencies())
}

func newRootCommand(info BuildInfo, deps dependencies) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "alarmstat",
		Short: "alarmstat - CloudWatch alarm episode statistics",
		Long: `alarmstat rebuilds the periods a CloudWatch alarm spent in ALARM from its
state-change history and reports, for each UTC day of one or more lookback
windows, how many episodes started and how long they lasted on average.

Credentials come from the default AWS credential chain, optionally
assuming a role in another account.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.region, "region", "", "AWS region (default from config, else us-west-2)")
	flags.StringVar(&opts.endpointURL, "endpoint-url", "", "Override the AWS endpoint (LocalStack)")
	flags.StringVar(&opts.accountID, "account-id", "", "AWS account ID the alarms live in")
	flags.StringVar(&opts.assumeRoleARN, "assume-role-arn", "", "IAM role to assume before reading alarms")
	flags.StringArrayVar(&opts.alarms, "alarm-name", nil, "CloudWatch alarm name, exact match (repeatable)")

	root.AddCommand(
		newReportCommand(opts, deps),
		newValidateCommand(opts, deps),
		newVersionCommand(info),
	)
	return root
}
