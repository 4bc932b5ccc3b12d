// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package provisioner creates a bucket, uploads into it, lists it, and
// attaches public access and policy settings.
//
// Every operation is a single request/response exchange with the provider.
// Nothing is retried, and the Provisioner keeps no state between calls other
// than the immutable bucket identity, so a failed call leaves nothing to
// clean up locally. Failures are returned as *Error and logged.
package provisioner

import (
	"context"
	"errors"
	"time"

	"github.com/LeeDigitalWorks/bucketctl/pkg/logger"
	"github.com/LeeDigitalWorks/bucketctl/pkg/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// DefaultRegion is the provider's home region. CreateBucket rejects an
// explicit location constraint naming it.
const DefaultRegion = "us-east-1"

// Operation names used in errors, logs and metrics.
const (
	OpExists            = "exists"
	OpCreate            = "create"
	OpUpload            = "upload"
	OpList              = "list"
	OpPublicAccessBlock = "public_access_block"
	OpApplyPolicy       = "apply_policy"
	OpGetPolicy         = "get_policy"
	OpEncryption        = "encryption"
)

// Bucket identifies the bucket a Provisioner manages.
type Bucket struct {
	Name   string
	Region string
}

// Config holds the collaborators of a Provisioner.
type Config struct {
	Bucket Bucket
	S3     API

	// IPResolver is required by ApplyPolicyFromTemplate only.
	IPResolver IPResolver
	// KMS is required by SetDefaultEncryption with a key ID only.
	KMS KeyDescriber
	// Metrics may be nil.
	Metrics *metrics.Recorder
}

// Provisioner performs provisioning operations against one bucket.
type Provisioner struct {
	bucket  Bucket
	s3      API
	ip      IPResolver
	kms     KeyDescriber
	metrics *metrics.Recorder
}

// New validates cfg and returns a Provisioner. An empty region selects
// DefaultRegion.
func New(cfg Config) (*Provisioner, error) {
	if cfg.Bucket.Name == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.S3 == nil {
		return nil, errors.New("S3 client is required")
	}
	if cfg.Bucket.Region == "" {
		cfg.Bucket.Region = DefaultRegion
	}

	return &Provisioner{
		bucket:  cfg.Bucket,
		s3:      cfg.S3,
		ip:      cfg.IPResolver,
		kms:     cfg.KMS,
		metrics: cfg.Metrics,
	}, nil
}

// Bucket returns the managed bucket's identity.
func (p *Provisioner) Bucket() Bucket {
	return p.bucket
}

func (p *Provisioner) newError(op string, kind Kind, msg string, err error) *Error {
	return &Error{Op: op, Bucket: p.bucket.Name, Kind: kind, Message: msg, Err: err}
}

func (p *Provisioner) providerError(op, msg string, err error) *Error {
	return p.newError(op, classifyProvider(err), msg, err)
}

// finish records metrics for op and logs the failure, if any.
func (p *Provisioner) finish(ctx context.Context, op string, start time.Time, err error) {
	p.metrics.Observe(op, start, err)
	if err == nil {
		return
	}
	// A missing bucket is an expected answer to an existence check.
	level, msg := zerolog.ErrorLevel, "Bucket operation failed"
	if op == OpExists && IsKind(err, KindNotFound) {
		level, msg = zerolog.DebugLevel, "Bucket not found"
	}
	ev := logger.Ctx(ctx).WithLevel(level).
		Str("op", op).
		Str("bucket", p.bucket.Name).
		Dur("elapsed", time.Since(start))
	var e *Error
	if errors.As(err, &e) {
		ev = ev.Str("kind", e.Kind.String())
		if e.Err != nil {
			ev = ev.Str("provider_message", providerMessage(e.Err))
		}
	}
	ev.Err(err).Msg(msg)
}

// Probe issues a metadata-only existence and access check.
func (p *Provisioner) Probe(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { p.finish(ctx, OpExists, start, err) }()

	_, err = p.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.bucket.Name),
	})
	if err != nil {
		return p.providerError(OpExists, "head bucket", err)
	}
	return nil
}

// Exists reports whether the bucket exists and is accessible. Any error,
// including access denied and network failures, yields false.
func (p *Provisioner) Exists(ctx context.Context) bool {
	if err := p.Probe(ctx); err != nil {
		logger.Ctx(ctx).Info().
			Str("bucket", p.bucket.Name).
			Str("reason", KindOf(err).String()).
			Msg("Bucket does not exist or is not accessible")
		return false
	}
	logger.Ctx(ctx).Info().Str("bucket", p.bucket.Name).Msg("Bucket exists")
	return true
}

// Create creates the bucket in the configured region. Callers should check
// Exists first; an existing bucket surfaces as a KindConflict error.
func (p *Provisioner) Create(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { p.finish(ctx, OpCreate, start, err) }()

	input := &s3.CreateBucketInput{
		Bucket: aws.String(p.bucket.Name),
	}
	if p.bucket.Region != DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(p.bucket.Region),
		}
	}

	if _, err = p.s3.CreateBucket(ctx, input); err != nil {
		return p.providerError(OpCreate, "create bucket", err)
	}

	logger.Ctx(ctx).Info().
		Str("bucket", p.bucket.Name).
		Str("region", p.bucket.Region).
		Msg("Created bucket")
	return nil
}
