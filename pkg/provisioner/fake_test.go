// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type fakeObject struct {
	data               []byte
	contentType        string
	contentDisposition string
}

type fakeBucket struct {
	location   string
	objects    map[string]fakeObject
	pab        *types.PublicAccessBlockConfiguration
	policy     *string
	encryption *types.ServerSideEncryptionConfiguration
}

// fakeS3 is an in-memory S3 that keeps enough state to check provisioning
// results end to end.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]*fakeBucket
	calls   map[string]int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		buckets: make(map[string]*fakeBucket),
		calls:   make(map[string]int),
	}
}

func (f *fakeS3) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeS3) bucket(name string) (*fakeBucket, error) {
	b, ok := f.buckets[name]
	if !ok {
		return nil, &types.NoSuchBucket{Message: aws.String("The specified bucket does not exist")}
	}
	return b, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["HeadBucket"]++
	if _, ok := f.buckets[aws.ToString(in.Bucket)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateBucket"]++
	name := aws.ToString(in.Bucket)
	if _, ok := f.buckets[name]; ok {
		return nil, &types.BucketAlreadyOwnedByYou{Message: aws.String("Your previous request to create the named bucket succeeded")}
	}
	location := DefaultRegion
	if in.CreateBucketConfiguration != nil {
		if in.CreateBucketConfiguration.LocationConstraint == types.BucketLocationConstraint(DefaultRegion) {
			return nil, &smithy.GenericAPIError{Code: "InvalidLocationConstraint", Message: "The specified location-constraint is not valid"}
		}
		location = string(in.CreateBucketConfiguration.LocationConstraint)
	}
	f.buckets[name] = &fakeBucket{location: location, objects: make(map[string]fakeObject)}
	return &s3.CreateBucketOutput{Location: aws.String("/" + name)}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["PutObject"]++
	b, err := f.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.objects[aws.ToString(in.Key)] = fakeObject{
		data:               data,
		contentType:        aws.ToString(in.ContentType),
		contentDisposition: aws.ToString(in.ContentDisposition),
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"etag"`)}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListObjectsV2"]++
	b, err := f.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{
		Name:        in.Bucket,
		KeyCount:    aws.Int32(int32(len(keys))),
		IsTruncated: aws.Bool(false),
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(b.objects[k].data))),
		})
	}
	return out, nil
}

func (f *fakeS3) PutPublicAccessBlock(ctx context.Context, in *s3.PutPublicAccessBlockInput, _ ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["PutPublicAccessBlock"]++
	b, err := f.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	cfg := *in.PublicAccessBlockConfiguration
	b.pab = &cfg
	return &s3.PutPublicAccessBlockOutput{}, nil
}

func (f *fakeS3) PutBucketPolicy(ctx context.Context, in *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["PutBucketPolicy"]++
	b, err := f.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	b.policy = aws.String(aws.ToString(in.Policy))
	return &s3.PutBucketPolicyOutput{}, nil
}

func (f *fakeS3) GetBucketPolicy(ctx context.Context, in *s3.GetBucketPolicyInput, _ ...func(*s3.Options)) (*s3.GetBucketPolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetBucketPolicy"]++
	b, err := f.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	if b.policy == nil {
		return nil, &smithy.GenericAPIError{Code: "NoSuchBucketPolicy", Message: "The bucket policy does not exist"}
	}
	return &s3.GetBucketPolicyOutput{Policy: b.policy}, nil
}

func (f *fakeS3) PutBucketEncryption(ctx context.Context, in *s3.PutBucketEncryptionInput, _ ...func(*s3.Options)) (*s3.PutBucketEncryptionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["PutBucketEncryption"]++
	b, err := f.bucket(aws.ToString(in.Bucket))
	if err != nil {
		return nil, err
	}
	b.encryption = in.ServerSideEncryptionConfiguration
	return &s3.PutBucketEncryptionOutput{}, nil
}

var _ API = (*fakeS3)(nil)

// staticIP is an IPResolver returning a fixed answer.
type staticIP struct {
	ip    string
	err   error
	calls int
}

func (s *staticIP) Resolve(ctx context.Context) (string, error) {
	s.calls++
	return s.ip, s.err
}
