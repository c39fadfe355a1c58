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
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Defaults applied when ClientConfig leaves a field unset.
const (
	defaultMaxRetries  = 3
	defaultHTTPTimeout = 30 * time.Second
)

// stsAPI is the subset of the STS client used for AssumeRole.
type stsAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// RealClient is a production implementation of the Client interface that
// makes real calls to AWS APIs using the AWS SDK v2.
//
// This implementation handles:
//   - Credential management using AWS SDK default credential chain
//   - STS AssumeRole operations for cross-account access
//   - SDK retries with the standard retryer
//   - Region-aware API calls
//
// For testing, use MockClient instead.
type RealClient struct {
	config      ClientConfig
	baseConfig  aws.Config
	stsClient   stsAPI
	endpointURL string // Optional endpoint URL (for LocalStack testing)

	mu       sync.Mutex
	cwClient map[string]*RealCloudWatchClient // Cached per account and region
}

// NewRealClient creates a new RealClient with the specified configuration.
// The client uses the AWS SDK default credential chain for authentication.
//
// For LocalStack testing, set endpointURL to "http://localhost:4566".
func NewRealClient(ctx context.Context, cfg ClientConfig, endpointURL string) (*RealClient, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}

	// Load AWS configuration using default credential chain
	// This will automatically use:
	// 1. Environment variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)
	// 2. Shared credentials file (~/.aws/credentials)
	// 3. IAM role (if running on EC2 or ECS)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.DefaultRegion),
		awsconfig.WithRetryMaxAttempts(cfg.MaxRetries),
		// A buildable client keeps custom CA bundles (AWS_CA_BUNDLE,
		// profile ca_bundle) working.
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(cfg.HTTPTimeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	stsOpts := []func(*sts.Options){}
	if endpointURL != "" {
		stsOpts = append(stsOpts, func(o *sts.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
		})
	}

	return &RealClient{
		config:      cfg,
		baseConfig:  awsCfg,
		stsClient:   sts.NewFromConfig(awsCfg, stsOpts...),
		endpointURL: endpointURL,
		cwClient:    make(map[string]*RealCloudWatchClient),
	}, nil
}

// CloudWatch returns a CloudWatchClient for the specified account configuration.
// If accountConfig.AssumeRoleARN is set, it will assume that role using STS.
// The client is cached per account and region to avoid repeated AssumeRole calls.
func (c *RealClient) CloudWatch(ctx context.Context, accountConfig AccountConfig) (CloudWatchClient, error) {
	if accountConfig.Region == "" {
		accountConfig.Region = c.config.DefaultRegion
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := accountConfig.cacheKey()
	if client, ok := c.cwClient[key]; ok {
		return client, nil
	}

	creds, err := c.getCredentials(ctx, accountConfig)
	if err != nil {
		return nil, err
	}

	cfg := c.baseConfig.Copy()
	cfg.Region = accountConfig.Region
	cfg.Credentials = creds

	client := NewRealCloudWatchClient(cfg, c.endpointURL)
	c.cwClient[key] = client
	return client, nil
}

// getCredentials returns credentials for the specified account.
// If AssumeRoleARN is set, it performs an STS AssumeRole operation.
// Otherwise, it returns the default credentials from the credential chain.
func (c *RealClient) getCredentials(ctx context.Context, accountConfig AccountConfig) (aws.CredentialsProvider, error) {
	if accountConfig.AssumeRoleARN == "" {
		return c.baseConfig.Credentials, nil
	}

	input := &sts.AssumeRoleInput{
		RoleArn:         aws.String(accountConfig.AssumeRoleARN),
		RoleSessionName: aws.String(accountConfig.sessionName()),
	}
	if accountConfig.ExternalID != "" {
		input.ExternalId = aws.String(accountConfig.ExternalID)
	}

	result, err := c.stsClient.AssumeRole(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to assume role %s: %w", accountConfig.AssumeRoleARN, err)
	}
	if result.Credentials == nil {
		return nil, fmt.Errorf("assume role %s returned no credentials", accountConfig.AssumeRoleARN)
	}

	// Return static credentials from the assumed role
	return credentials.NewStaticCredentialsProvider(
		aws.ToString(result.Credentials.AccessKeyId),
		aws.ToString(result.Credentials.SecretAccessKey),
		aws.ToString(result.Credentials.SessionToken),
	), nil
}
