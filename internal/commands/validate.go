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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextdoor/alarmstat/pkg/aws"
)

func newValidateCommand(global *globalOptions, deps dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check credentials and that every alarm exists",
		Long: `Resolve credentials (assuming the configured role, if any) and look up each
configured alarm with DescribeAlarms. Every missing or unreadable alarm is
listed before exiting non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log, err := newLogger(cfg, global.verbose)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := newAWSClient(ctx, deps, cfg)
			if err != nil {
				return err
			}

			account := accountConfig(cfg)
			log.Info("validating alarms", "alarms", cfg.Alarms, "region", account.Region)
			if err := aws.NewAccountValidator(client).ValidateAlarms(ctx, account, cfg.Alarms); err != nil {
				return enhanceError("validate alarms", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK: %d alarm(s) readable in %s\n", len(cfg.Alarms), account.Region)
			return nil
		},
	}
}
