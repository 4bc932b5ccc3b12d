// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/LeeDigitalWorks/bucketctl/pkg/s3client"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the AWS principal the configured credentials resolve to",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	opts := loadProvisionOpts(cmd)
	clients, err := s3client.New(cmd.Context(), opts.S3)
	if err != nil {
		return err
	}
	defer clients.Close()

	id, err := clients.CallerIdentity(cmd.Context())
	if err != nil {
		return failed(cmd, "Error resolving caller identity", err)
	}
	status(cmd, "Account: %s", id.Account)
	status(cmd, "ARN:     %s", id.ARN)
	status(cmd, "UserID:  %s", id.UserID)
	return nil
}
