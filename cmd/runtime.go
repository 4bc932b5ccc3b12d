// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/LeeDigitalWorks/bucketctl/pkg/iplookup"
	"github.com/LeeDigitalWorks/bucketctl/pkg/provisioner"
	"github.com/LeeDigitalWorks/bucketctl/pkg/s3client"
	"github.com/LeeDigitalWorks/bucketctl/pkg/utils"

	"github.com/spf13/cobra"
)

const defaultIPLookupTimeout = iplookup.DefaultTimeout

// errReported marks errors whose status line has already been printed.
var errReported = errors.New("reported")

// ProvisionOpts holds the connection and identity settings shared by every
// subcommand.
type ProvisionOpts struct {
	Bucket          string
	Region          string
	S3              s3client.Config
	IPLookupURL     string
	IPLookupTimeout time.Duration
}

func loadProvisionOpts(cmd *cobra.Command) ProvisionOpts {
	f := NewFlagLoader(cmd)
	region := f.String("region")
	return ProvisionOpts{
		Bucket: f.String("bucket"),
		Region: region,
		S3: s3client.Config{
			Endpoint:           f.String("endpoint"),
			Region:             region,
			AccessKeyID:        f.String("access_key_id"),
			SecretAccessKey:    f.String("secret_access_key"),
			SessionToken:       f.String("session_token"),
			RoleARN:            f.String("role_arn"),
			PathStyle:          f.Bool("path_style"),
			CAFile:             utils.ResolvePath(f.String("ca_file")),
			InsecureSkipVerify: f.Bool("insecure_skip_verify"),
		},
		IPLookupURL:     f.String("ip_lookup_url"),
		IPLookupTimeout: f.Duration("ip_lookup_timeout"),
	}
}

// newProvisioner builds the SDK clients and a Provisioner for opts.Bucket.
// The caller must Close the returned clients.
func newProvisioner(cmd *cobra.Command, opts ProvisionOpts) (*provisioner.Provisioner, *s3client.Clients, error) {
	if opts.Bucket == "" {
		return nil, nil, errors.New("--bucket is required")
	}

	clients, err := s3client.New(cmd.Context(), opts.S3)
	if err != nil {
		return nil, nil, err
	}

	p, err := provisioner.New(provisioner.Config{
		Bucket: provisioner.Bucket{
			Name:   opts.Bucket,
			Region: opts.Region,
		},
		S3:         clients.S3,
		KMS:        clients.KMS,
		IPResolver: iplookup.New(opts.IPLookupURL, opts.IPLookupTimeout),
		Metrics:    recorder,
	})
	if err != nil {
		clients.Close()
		return nil, nil, err
	}
	return p, clients, nil
}

// status prints a human-readable status line on stdout.
func status(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

// failed prints a failure status line on stderr and returns err marked as
// reported.
func failed(cmd *cobra.Command, what string, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", what, err)
	return fmt.Errorf("%w: %w", errReported, err)
}

// printListing writes one line per key, or an empty-bucket notice.
func printListing(cmd *cobra.Command, listing *provisioner.Listing) {
	if listing.Empty() {
		status(cmd, "\nBucket %s is empty", listing.Bucket())
		return
	}
	status(cmd, "\nContents of bucket %s:", listing.Bucket())
	for key := range listing.Keys() {
		status(cmd, "- %s", key)
	}
	if listing.Truncated() {
		status(cmd, "(more objects not shown)")
	}
}
