// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/LeeDigitalWorks/bucketctl/pkg/logger"
	"github.com/LeeDigitalWorks/bucketctl/pkg/policy"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// PublicAccessBlock is the bucket-level public access configuration. The
// flags are submitted as given; the provider validates combinations.
type PublicAccessBlock struct {
	BlockPublicACLs       bool
	IgnorePublicACLs      bool
	BlockPublicPolicy     bool
	RestrictPublicBuckets bool
}

// SetPublicAccessBlock replaces the bucket's public access block.
// Repeating the call with the same flags has no further effect.
func (p *Provisioner) SetPublicAccessBlock(ctx context.Context, pab PublicAccessBlock) (err error) {
	start := time.Now()
	defer func() { p.finish(ctx, OpPublicAccessBlock, start, err) }()

	_, err = p.s3.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(p.bucket.Name),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(pab.BlockPublicACLs),
			IgnorePublicAcls:      aws.Bool(pab.IgnorePublicACLs),
			BlockPublicPolicy:     aws.Bool(pab.BlockPublicPolicy),
			RestrictPublicBuckets: aws.Bool(pab.RestrictPublicBuckets),
		},
	})
	if err != nil {
		return p.providerError(OpPublicAccessBlock, "put public access block", err)
	}

	logger.Ctx(ctx).Info().
		Str("bucket", p.bucket.Name).
		Bool("block_public_acls", pab.BlockPublicACLs).
		Bool("ignore_public_acls", pab.IgnorePublicACLs).
		Bool("block_public_policy", pab.BlockPublicPolicy).
		Bool("restrict_public_buckets", pab.RestrictPublicBuckets).
		Msg("Updated public access block")
	return nil
}

// ApplyPolicyFromTemplate reads the policy template at templatePath, fills in
// the bucket name and the caller's public IP, and attaches the result as the
// bucket policy. No policy is submitted unless every earlier step succeeds.
func (p *Provisioner) ApplyPolicyFromTemplate(ctx context.Context, templatePath string) (_ *s3.PutBucketPolicyOutput, err error) {
	start := time.Now()
	defer func() { p.finish(ctx, OpApplyPolicy, start, err) }()

	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, p.newError(OpApplyPolicy, KindTemplateNotFound, "template not found: "+templatePath, err)
		}
		return nil, p.newError(OpApplyPolicy, KindLocalIO, "read template "+templatePath, err)
	}

	if p.ip == nil {
		return nil, p.newError(OpApplyPolicy, KindIPLookup, "no ip resolver configured", nil)
	}
	ip, err := p.ip.Resolve(ctx)
	if err != nil {
		return nil, p.newError(OpApplyPolicy, KindIPLookup, "resolve public ip", err)
	}

	rendered, err := policy.Render(tmpl, p.bucket.Name, ip)
	if err != nil {
		var syntaxErr *policy.SyntaxError
		switch {
		case errors.As(err, &syntaxErr):
			return nil, p.newError(OpApplyPolicy, KindMalformedPolicy, "render "+templatePath, err)
		case errors.Is(err, policy.ErrTokenInValue):
			return nil, p.newError(OpApplyPolicy, KindInvalidValue, "render "+templatePath, err)
		default:
			return nil, p.newError(OpApplyPolicy, KindUnknown, "render "+templatePath, err)
		}
	}

	if doc, perr := policy.Parse(rendered); perr == nil {
		logger.Ctx(ctx).Debug().
			Str("bucket", p.bucket.Name).
			Int("statements", len(doc.Statements)).
			Strs("source_ips", doc.SourceIPs()).
			Msg("Rendered bucket policy")
	}

	out, err := p.s3.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(p.bucket.Name),
		Policy: aws.String(string(rendered)),
	})
	if err != nil {
		return nil, p.providerError(OpApplyPolicy, "put bucket policy", err)
	}

	logger.Ctx(ctx).Info().
		Str("bucket", p.bucket.Name).
		Str("ip", ip).
		Str("template", templatePath).
		Msg("Applied bucket policy")
	return out, nil
}

// Policy returns the bucket's current policy document.
func (p *Provisioner) Policy(ctx context.Context) (_ string, err error) {
	start := time.Now()
	defer func() { p.finish(ctx, OpGetPolicy, start, err) }()

	out, err := p.s3.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{
		Bucket: aws.String(p.bucket.Name),
	})
	if err != nil {
		return "", p.providerError(OpGetPolicy, "get bucket policy", err)
	}
	return aws.ToString(out.Policy), nil
}
