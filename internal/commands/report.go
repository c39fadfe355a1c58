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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nextdoor/alarmstat/internal/render"
	"github.com/nextdoor/alarmstat/internal/report"
	"github.com/nextdoor/alarmstat/pkg/aws"
	"github.com/nextdoor/alarmstat/pkg/config"
	"github.com/nextdoor/alarmstat/pkg/metrics"
)

type reportOptions struct {
	days         []int
	format       string
	outputFile   string
	csvFile      string
	metricsFile  string
	concurrency  int
	assumedState string
	timeout      time.Duration
}

func newReportCommand(global *globalOptions, deps dependencies) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report daily alarm occurrences and durations",
		Long: `Fetch the state-change history of each alarm and report, for every UTC day
in each lookback window, the number of ALARM episodes that started that day
and their mean duration in minutes.

Each window is computed independently. A window whose history cannot be
fetched is reported as failed without affecting the others.`,
		Example: `  alarmstat report --alarm-name api-5xx --days 1 7 30 --csv out.csv
  alarmstat report -c alarmstat.yaml --format json -o report.json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, global, opts, deps)
		},
	}

	f := cmd.Flags()
	f.IntSliceVar(&opts.days, "days", nil, "Lookback windows in days (default from config, else 1,7,30)")
	f.StringVar(&opts.format, "format", "", "Output format: table, markdown, csv, json")
	f.StringVarP(&opts.outputFile, "output", "o", "", "Output file path (default: stdout)")
	f.StringVar(&opts.csvFile, "csv", "", "Also write the report as CSV to this path")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this path")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Windows fetched in parallel (default from config, else 4)")
	f.StringVar(&opts.assumedState, "assumed-state", "", "State assumed before each window: ALARM, OK, INSUFFICIENT_DATA")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "Overall report timeout")
	return cmd
}

func runReport(cmd *cobra.Command, args []string, global *globalOptions, opts *reportOptions, deps dependencies) error {
	cfg, err := loadConfig(global, cmd.Flags())
	if err != nil {
		return err
	}
	if err := applyReportFlags(cfg, cmd, args, opts); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cfg, global.verbose)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	log = log.WithValues("run_id", runID)

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	client, err := newAWSClient(ctx, deps, cfg)
	if err != nil {
		return err
	}
	account := accountConfig(cfg)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	fetcher := report.NewRetryingFetcher(aws.NewHistorySource(client, account), retryConfig(cfg), log)
	orch := report.NewOrchestrator(fetcher, m, log)
	orch.Clock = deps.clock
	orch.Concurrency = cfg.Concurrency
	orch.AssumedState = cfg.GetAssumedState()

	lookbacks := cfg.GetLookbackDays()
	log.Info("starting report",
		"alarms", cfg.Alarms,
		"lookback_days", lookbacks,
		"region", account.Region)

	generatedAt := deps.clock().UTC()
	results := orch.RunAll(ctx, cfg.Alarms, lookbacks)

	if err := writeReport(cmd, cfg, results, runID, generatedAt); err != nil {
		return err
	}

	if cfg.Output.MetricsFile != "" {
		if err := metrics.WriteTextfile(reg, cfg.Output.MetricsFile); err != nil {
			return err
		}
		log.V(1).Info("wrote metrics", "path", cfg.Output.MetricsFile)
	}

	if report.AllFailed(results) {
		return enhanceError("every window failed", firstError(results))
	}
	log.Info("report completed", "alarms", len(results))
	return nil
}

// applyReportFlags overrides config values with report flags that were set.
func applyReportFlags(cfg *config.Config, cmd *cobra.Command, args []string, opts *reportOptions) error {
	flags := cmd.Flags()
	if len(args) > 0 && !flags.Changed("days") {
		return fmt.Errorf("unexpected arguments %v", args)
	}
	if flags.Changed("days") {
		extra, err := parseDays(args)
		if err != nil {
			return err
		}
		cfg.LookbackDays = append(append([]int{}, opts.days...), extra...)
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("output") {
		cfg.Output.Path = opts.outputFile
	}
	if flags.Changed("csv") {
		cfg.Output.CSVPath = opts.csvFile
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = opts.metricsFile
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if flags.Changed("assumed-state") {
		cfg.AssumedState = opts.assumedState
	}
	return nil
}

// writeReport renders results in the configured format, plus the CSV copy
// when a CSV path is configured.
func writeReport(cmd *cobra.Command, cfg *config.Config, results []report.EntityReport, runID string, generatedAt time.Time) error {
	renderer, err := render.ForFormat(cfg.Output.Format, runID, generatedAt)
	if err != nil {
		return err
	}

	w, closeOutput, err := openOutput(cmd.OutOrStdout(), cfg.Output.Path)
	if err != nil {
		return err
	}
	if err := renderer.Render(w, results); err != nil {
		_ = closeOutput()
		return fmt.Errorf("render report: %w", err)
	}
	if err := closeOutput(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	if cfg.Output.CSVPath == "" {
		return nil
	}
	cw, closeCSV, err := openOutput(cmd.OutOrStdout(), cfg.Output.CSVPath)
	if err != nil {
		return err
	}
	if err := (render.CSVRenderer{}).Render(cw, results); err != nil {
		_ = closeCSV()
		return fmt.Errorf("write CSV: %w", err)
	}
	if err := closeCSV(); err != nil {
		return fmt.Errorf("close CSV file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\nWrote CSV: %s\n", cfg.Output.CSVPath)
	return nil
}

// firstError returns the first window error in results.
func firstError(results []report.EntityReport) error {
	for _, r := range results {
		for _, w := range r.Windows {
			if w.Err != nil {
				return w.Err
			}
		}
	}
	return nil
}
