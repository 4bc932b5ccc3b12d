// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"sync"

	"github.com/LeeDigitalWorks/bucketctl/pkg/provisioner"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// recordingS3 records the order of S3 calls and fails the ones named in fail.
type recordingS3 struct {
	mu     sync.Mutex
	exists bool
	keys   []string
	policy string
	calls  []string
	fail   map[string]error
}

var _ provisioner.API = (*recordingS3)(nil)

func (r *recordingS3) record(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
	return r.fail[op]
}

func (r *recordingS3) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if err := r.record("HeadBucket"); err != nil {
		return nil, err
	}
	if !r.exists {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (r *recordingS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	if err := r.record("CreateBucket"); err != nil {
		return nil, err
	}
	r.exists = true
	return &s3.CreateBucketOutput{}, nil
}

func (r *recordingS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if err := r.record("PutObject"); err != nil {
		return nil, err
	}
	r.keys = append(r.keys, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func (r *recordingS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if err := r.record("ListObjectsV2"); err != nil {
		return nil, err
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, key := range r.keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func (r *recordingS3) PutPublicAccessBlock(ctx context.Context, in *s3.PutPublicAccessBlockInput, _ ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error) {
	if err := r.record("PutPublicAccessBlock"); err != nil {
		return nil, err
	}
	return &s3.PutPublicAccessBlockOutput{}, nil
}

func (r *recordingS3) PutBucketPolicy(ctx context.Context, in *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	if err := r.record("PutBucketPolicy"); err != nil {
		return nil, err
	}
	r.policy = aws.ToString(in.Policy)
	return &s3.PutBucketPolicyOutput{}, nil
}

func (r *recordingS3) GetBucketPolicy(ctx context.Context, in *s3.GetBucketPolicyInput, _ ...func(*s3.Options)) (*s3.GetBucketPolicyOutput, error) {
	if err := r.record("GetBucketPolicy"); err != nil {
		return nil, err
	}
	return &s3.GetBucketPolicyOutput{Policy: aws.String(r.policy)}, nil
}

func (r *recordingS3) PutBucketEncryption(ctx context.Context, in *s3.PutBucketEncryptionInput, _ ...func(*s3.Options)) (*s3.PutBucketEncryptionOutput, error) {
	if err := r.record("PutBucketEncryption"); err != nil {
		return nil, err
	}
	return &s3.PutBucketEncryptionOutput{}, nil
}

type staticIP string

func (s staticIP) Resolve(context.Context) (string, error) {
	return string(s), nil
}
