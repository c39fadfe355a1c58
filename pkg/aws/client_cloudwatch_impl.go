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
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/nextdoor/alarmstat/pkg/alarm"
)

// cloudWatchAPI is the subset of the CloudWatch SDK client used here.
// It lets tests page through canned responses without a network.
type cloudWatchAPI interface {
	cloudwatch.DescribeAlarmHistoryAPIClient
	cloudwatch.DescribeAlarmsAPIClient
}

// alarmTypes covers both metric and composite alarms. Without it the API
// only returns metric alarms.
var alarmTypes = []types.AlarmType{
	types.AlarmTypeMetricAlarm,
	types.AlarmTypeCompositeAlarm,
}

// RealCloudWatchClient is a production implementation of CloudWatchClient
// that makes real API calls to CloudWatch using the AWS SDK v2.
type RealCloudWatchClient struct {
	client cloudWatchAPI
	region string
}

// NewRealCloudWatchClient creates a CloudWatch client from an SDK config
// whose credentials come from either the default credential chain or an
// STS AssumeRole operation.
func NewRealCloudWatchClient(cfg aws.Config, endpointURL string) *RealCloudWatchClient {
	cwOpts := []func(*cloudwatch.Options){}
	if endpointURL != "" {
		// Override endpoint for LocalStack testing
		cwOpts = append(cwOpts, func(o *cloudwatch.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
		})
	}

	return &RealCloudWatchClient{
		client: cloudwatch.NewFromConfig(cfg, cwOpts...),
		region: cfg.Region,
	}
}

// DescribeAlarmHistory returns every StateUpdate history item for the
// alarm in [start, end], following NextToken until the last page.
func (c *RealCloudWatchClient) DescribeAlarmHistory(
	ctx context.Context,
	alarmName string,
	start, end time.Time,
) ([]alarm.RawRecord, error) {
	input := &cloudwatch.DescribeAlarmHistoryInput{
		AlarmName:       aws.String(alarmName),
		AlarmTypes:      alarmTypes,
		HistoryItemType: types.HistoryItemType(HistoryItemTypeStateUpdate),
		StartDate:       aws.Time(start.UTC()),
		EndDate:         aws.Time(end.UTC()),
		MaxRecords:      aws.Int32(maxRecordsPerPage),
	}

	var records []alarm.RawRecord
	paginator := cloudwatch.NewDescribeAlarmHistoryPaginator(c.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe alarm history for %s in %s: %w", alarmName, c.region, err)
		}
		for _, item := range page.AlarmHistoryItems {
			records = append(records, toRawRecord(item))
		}
	}

	return records, nil
}

// AlarmExists reports whether a metric or composite alarm named alarmName exists.
func (c *RealCloudWatchClient) AlarmExists(ctx context.Context, alarmName string) (bool, error) {
	out, err := c.client.DescribeAlarms(ctx, &cloudwatch.DescribeAlarmsInput{
		AlarmNames: []string{alarmName},
		AlarmTypes: alarmTypes,
		MaxRecords: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("failed to describe alarm %s in %s: %w", alarmName, c.region, err)
	}
	return len(out.MetricAlarms)+len(out.CompositeAlarms) > 0, nil
}

// toRawRecord converts an SDK history item. A missing timestamp maps to
// the zero time and a missing HistoryData to a nil payload.
func toRawRecord(item types.AlarmHistoryItem) alarm.RawRecord {
	var rec alarm.RawRecord
	if item.Timestamp != nil {
		rec.Timestamp = item.Timestamp.UTC()
	}
	if item.HistoryData != nil {
		rec.Payload = []byte(*item.HistoryData)
	}
	return rec
}
