// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Bucket existence, creation and listing",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var bucketExistsCmd = &cobra.Command{
	Use:   "exists",
	Short: "Check that the bucket exists and is accessible",
	Long: `Check that the bucket exists and is accessible.

Exits non-zero when the bucket is missing, access is denied, or the
provider cannot be reached.`,
	RunE: runBucketExists,
}

var bucketCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the bucket in the configured region",
	RunE:  runBucketCreate,
}

var bucketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the first page of object keys in the bucket",
	RunE:  runBucketList,
}

func init() {
	rootCmd.AddCommand(bucketCmd)
	bucketCmd.AddCommand(bucketExistsCmd, bucketCreateCmd, bucketListCmd)
}

func runBucketExists(cmd *cobra.Command, args []string) error {
	opts := loadProvisionOpts(cmd)
	p, clients, err := newProvisioner(cmd, opts)
	if err != nil {
		return err
	}
	defer clients.Close()

	if !p.Exists(cmd.Context()) {
		status(cmd, "Bucket %s does not exist or is not accessible", opts.Bucket)
		return errReported
	}
	status(cmd, "Bucket %s exists", opts.Bucket)
	return nil
}

func runBucketCreate(cmd *cobra.Command, args []string) error {
	opts := loadProvisionOpts(cmd)
	p, clients, err := newProvisioner(cmd, opts)
	if err != nil {
		return err
	}
	defer clients.Close()

	if err := p.Create(cmd.Context()); err != nil {
		return failed(cmd, "Error creating bucket", err)
	}
	status(cmd, "Successfully created bucket %s", opts.Bucket)
	return nil
}

func runBucketList(cmd *cobra.Command, args []string) error {
	opts := loadProvisionOpts(cmd)
	p, clients, err := newProvisioner(cmd, opts)
	if err != nil {
		return err
	}
	defer clients.Close()

	listing, err := p.ListContents(cmd.Context())
	if err != nil {
		return failed(cmd, "Error listing bucket contents", err)
	}
	printListing(cmd, listing)
	return nil
}
