// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"iter"
	"sync/atomic"
	"time"

	"github.com/LeeDigitalWorks/bucketctl/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Listing is a single page of bucket contents.
type Listing struct {
	bucket    string
	objects   []types.Object
	truncated bool
	consumed  atomic.Bool
}

// Bucket returns the name of the listed bucket.
func (l *Listing) Bucket() string {
	return l.bucket
}

// Empty reports whether the bucket had no objects. It is independent of
// whether Keys has been consumed.
func (l *Listing) Empty() bool {
	return len(l.objects) == 0
}

// Len returns the number of objects in the page.
func (l *Listing) Len() int {
	return len(l.objects)
}

// Truncated reports whether the provider had more objects than one page held.
// Further pages are not fetched.
func (l *Listing) Truncated() bool {
	return l.truncated
}

// Keys returns the object keys in provider order. The sequence can be ranged
// over once; later ranges yield nothing.
func (l *Listing) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !l.consumed.CompareAndSwap(false, true) {
			return
		}
		for _, obj := range l.objects {
			if !yield(aws.ToString(obj.Key)) {
				return
			}
		}
	}
}

// ListContents fetches the first page of object keys in the bucket.
func (p *Provisioner) ListContents(ctx context.Context) (_ *Listing, err error) {
	start := time.Now()
	defer func() { p.finish(ctx, OpList, start, err) }()

	out, err := p.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket.Name),
	})
	if err != nil {
		return nil, p.providerError(OpList, "list objects", err)
	}

	l := &Listing{
		bucket:    p.bucket.Name,
		objects:   out.Contents,
		truncated: aws.ToBool(out.IsTruncated),
	}
	ev := logger.Ctx(ctx).Info().Str("bucket", p.bucket.Name).Int("objects", l.Len())
	if l.Empty() {
		ev.Msg("Bucket is empty")
	} else {
		ev.Bool("truncated", l.truncated).Msg("Listed bucket contents")
	}
	return l, nil
}
