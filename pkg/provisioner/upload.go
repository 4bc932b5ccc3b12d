// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/LeeDigitalWorks/bucketctl/pkg/logger"
	"github.com/LeeDigitalWorks/bucketctl/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
)

type uploadOptions struct {
	key                string
	contentType        string
	contentDisposition string
}

// UploadOption modifies an upload.
type UploadOption func(*uploadOptions)

// WithKey stores the object under key instead of the file's base name.
func WithKey(key string) UploadOption {
	return func(o *uploadOptions) {
		o.key = key
	}
}

// WithContentType overrides the content type guessed from the extension.
func WithContentType(contentType string) UploadOption {
	return func(o *uploadOptions) {
		o.contentType = contentType
	}
}

// WithContentDisposition sets the Content-Disposition stored with the object.
func WithContentDisposition(disposition string) UploadOption {
	return func(o *uploadOptions) {
		o.contentDisposition = disposition
	}
}

// ObjectKey returns the key a file at localPath is stored under by default.
func ObjectKey(localPath string) string {
	return filepath.Base(localPath)
}

// Upload streams the file at localPath into the bucket. A missing or
// unreadable file fails with KindLocalIO before any request is sent.
func (p *Provisioner) Upload(ctx context.Context, localPath string, opts ...UploadOption) (err error) {
	start := time.Now()
	defer func() { p.finish(ctx, OpUpload, start, err) }()

	var o uploadOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.key == "" {
		o.key = ObjectKey(localPath)
	}
	if o.contentType == "" {
		o.contentType = mime.TypeByExtension(filepath.Ext(localPath))
	}

	size, err := utils.RegularFileSize(localPath)
	if err != nil {
		return p.newError(OpUpload, KindLocalIO, "stat "+localPath, err)
	}
	f, err := os.Open(localPath)
	if err != nil {
		return p.newError(OpUpload, KindLocalIO, "open "+localPath, err)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket.Name),
		Key:           aws.String(o.key),
		Body:          f,
		ContentLength: aws.Int64(size),
	}
	if o.contentType != "" {
		input.ContentType = aws.String(o.contentType)
	}
	if o.contentDisposition != "" {
		input.ContentDisposition = aws.String(o.contentDisposition)
	}

	if _, err = p.s3.PutObject(ctx, input); err != nil {
		return p.providerError(OpUpload, "put object "+o.key, err)
	}
	p.metrics.AddUploadedBytes(size)

	logger.Ctx(ctx).Info().
		Str("bucket", p.bucket.Name).
		Str("key", o.key).
		Str("file", localPath).
		Str("size", humanize.IBytes(uint64(size))).
		Msg("Uploaded file")
	return nil
}
