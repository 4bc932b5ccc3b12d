// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package s3client builds the AWS SDK clients used to provision a bucket.
// The same loaded configuration backs the S3, STS and KMS clients so that a
// custom endpoint, static credentials or an assumed role apply uniformly.
package s3client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/LeeDigitalWorks/bucketctl/pkg/logger"
	"github.com/LeeDigitalWorks/bucketctl/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultRegion is the provider's home region. Bucket creation in this
// region must omit the location constraint.
const DefaultRegion = "us-east-1"

// Config holds configuration for connecting to an S3 service.
type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	RoleARN         string
	PathStyle       bool

	// CAFile is a PEM bundle trusted instead of the system roots.
	CAFile             string
	InsecureSkipVerify bool

	Timeout      time.Duration
	MaxIdleConns int
}

func (c *Config) setDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Minute
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 10
	}
}

// Validate checks for half-specified static credentials.
func (c *Config) Validate() error {
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.New("access key id and secret access key must be set together")
	}
	return nil
}

// Clients bundles the service clients built from one Config.
type Clients struct {
	S3  *s3.Client
	STS *sts.Client
	KMS *kms.Client

	Region     string
	httpClient *http.Client
}

// New loads the AWS configuration and creates the service clients. Static
// credentials are used when given, otherwise the SDK default chain applies.
func New(ctx context.Context, cfg Config) (*Clients, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tlsConfig, err := utils.LoadClientTLSConfig(cfg.CAFile, cfg.InsecureSkipVerify)
	if err != nil {
		return nil, err
	}
	buildable := awshttp.NewBuildableClient().
		WithTimeout(cfg.Timeout).
		WithTransportOptions(func(tr *http.Transport) {
			if tlsConfig != nil {
				tr.TLSClientConfig = tlsConfig
			}
			tr.MaxIdleConns = cfg.MaxIdleConns
			tr.MaxIdleConnsPerHost = cfg.MaxIdleConns
		})

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(buildable),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				cfg.SessionToken,
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	// LoadDefaultConfig may have replaced the client to append AWS_CA_BUNDLE.
	// Freezing it keeps one connection pool that Close can drain.
	var httpClient *http.Client
	if bc, ok := awsCfg.HTTPClient.(*awshttp.BuildableClient); ok {
		frozen := bc.Freeze()
		awsCfg.HTTPClient = frozen
		httpClient, _ = frozen.(*http.Client)
	}

	stsClient := sts.NewFromConfig(awsCfg)
	if cfg.RoleARN != "" {
		creds := stscreds.NewAssumeRoleProvider(stsClient, cfg.RoleARN, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = "bucketctl"
		})
		awsCfg.Credentials = aws.NewCredentialsCache(creds)
		stsClient = sts.NewFromConfig(awsCfg)
	}

	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.UsePathStyle = cfg.PathStyle
		},
	}
	var kmsOpts []func(*kms.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
		kmsOpts = append(kmsOpts, func(o *kms.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Debug().
		Str("endpoint", cfg.Endpoint).
		Str("region", cfg.Region).
		Bool("path_style", cfg.PathStyle).
		Bool("assume_role", cfg.RoleARN != "").
		Msg("Created S3 clients")

	return &Clients{
		S3:         s3.NewFromConfig(awsCfg, s3Opts...),
		STS:        stsClient,
		KMS:        kms.NewFromConfig(awsCfg, kmsOpts...),
		Region:     cfg.Region,
		httpClient: httpClient,
	}, nil
}

// Identity describes the principal the clients act as.
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// CallerIdentity asks STS who the configured credentials belong to.
func (c *Clients) CallerIdentity(ctx context.Context) (*Identity, error) {
	out, err := c.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("get caller identity: %w", err)
	}
	return &Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}

// Close releases idle connections.
func (c *Clients) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
