// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"fmt"
	"time"

	"github.com/LeeDigitalWorks/bucketctl/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// SetDefaultEncryption sets the bucket's default server-side encryption.
// An empty kmsKeyID selects SSE-S3 (AES256). Otherwise the key must exist
// and be enabled before SSE-KMS is configured with it.
func (p *Provisioner) SetDefaultEncryption(ctx context.Context, kmsKeyID string) (err error) {
	start := time.Now()
	defer func() { p.finish(ctx, OpEncryption, start, err) }()

	rule := types.ServerSideEncryptionRule{
		ApplyServerSideEncryptionByDefault: &types.ServerSideEncryptionByDefault{
			SSEAlgorithm: types.ServerSideEncryptionAes256,
		},
	}

	if kmsKeyID != "" {
		arn, err := p.describeKey(ctx, kmsKeyID)
		if err != nil {
			return err
		}
		rule.ApplyServerSideEncryptionByDefault = &types.ServerSideEncryptionByDefault{
			SSEAlgorithm:   types.ServerSideEncryptionAwsKms,
			KMSMasterKeyID: aws.String(arn),
		}
		rule.BucketKeyEnabled = aws.Bool(true)
	}

	_, err = p.s3.PutBucketEncryption(ctx, &s3.PutBucketEncryptionInput{
		Bucket: aws.String(p.bucket.Name),
		ServerSideEncryptionConfiguration: &types.ServerSideEncryptionConfiguration{
			Rules: []types.ServerSideEncryptionRule{rule},
		},
	})
	if err != nil {
		return p.providerError(OpEncryption, "put bucket encryption", err)
	}

	logger.Ctx(ctx).Info().
		Str("bucket", p.bucket.Name).
		Str("algorithm", string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm)).
		Str("kms_key", aws.ToString(rule.ApplyServerSideEncryptionByDefault.KMSMasterKeyID)).
		Msg("Set default bucket encryption")
	return nil
}

// describeKey returns the ARN of an enabled KMS key.
func (p *Provisioner) describeKey(ctx context.Context, keyID string) (string, error) {
	if p.kms == nil {
		return "", p.newError(OpEncryption, KindInvalidKey, "no KMS client configured", nil)
	}

	out, err := p.kms.DescribeKey(ctx, &kms.DescribeKeyInput{
		KeyId: aws.String(keyID),
	})
	if err != nil {
		return "", p.newError(OpEncryption, KindInvalidKey, "describe key "+keyID, err)
	}

	meta := out.KeyMetadata
	if meta == nil {
		return "", p.newError(OpEncryption, KindInvalidKey, "describe key "+keyID+": no metadata", nil)
	}
	if meta.KeyState != kmstypes.KeyStateEnabled {
		return "", p.newError(OpEncryption, KindInvalidKey,
			fmt.Sprintf("key %s is %s", keyID, meta.KeyState), nil)
	}
	if arn := aws.ToString(meta.Arn); arn != "" {
		return arn, nil
	}
	return keyID, nil
}
