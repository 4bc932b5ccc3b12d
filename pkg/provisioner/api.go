// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// HeadBucketAPI is the subset used to probe bucket existence.
type HeadBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// CreateBucketAPI is the subset used to create a bucket.
type CreateBucketAPI interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// PutObjectAPI is the subset used to upload a file.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ListObjectsAPI is the subset used to list bucket contents.
type ListObjectsAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// PublicAccessBlockAPI is the subset used to configure public access blocking.
type PublicAccessBlockAPI interface {
	PutPublicAccessBlock(ctx context.Context, params *s3.PutPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error)
}

// BucketPolicyAPI is the subset used to attach and read the bucket policy.
type BucketPolicyAPI interface {
	PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
	GetBucketPolicy(ctx context.Context, params *s3.GetBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.GetBucketPolicyOutput, error)
}

// BucketEncryptionAPI is the subset used to set default bucket encryption.
type BucketEncryptionAPI interface {
	PutBucketEncryption(ctx context.Context, params *s3.PutBucketEncryptionInput, optFns ...func(*s3.Options)) (*s3.PutBucketEncryptionOutput, error)
}

// API groups every S3 operation the provisioner issues so a single test
// double can stand in for *s3.Client.
type API interface {
	HeadBucketAPI
	CreateBucketAPI
	PutObjectAPI
	ListObjectsAPI
	PublicAccessBlockAPI
	BucketPolicyAPI
	BucketEncryptionAPI
}

// KeyDescriber is the KMS subset used to validate an encryption key.
type KeyDescriber interface {
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
}

// IPResolver resolves the caller's public IP address.
type IPResolver interface {
	Resolve(ctx context.Context) (string, error)
}

var (
	_ API          = (*s3.Client)(nil)
	_ KeyDescriber = (*kms.Client)(nil)
)
