// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/LeeDigitalWorks/bucketctl/pkg/provisioner"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a local file into the bucket",
	Long: `Upload a local file into the bucket.

The object key defaults to the file's base name.

Example:
  bucketctl upload --bucket my-bucket ./data/ID.png
  bucketctl upload --bucket my-bucket --key docs/id.png --content_disposition attachment ./data/ID.png`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	f := uploadCmd.Flags()
	f.String("key", "", "Object key (default: base name of the file)")
	f.String("content_type", "", "Content-Type override (default: guessed from extension)")
	f.String("content_disposition", "", "Content-Disposition stored with the object")

	viper.BindPFlags(f)
}

// uploadOptions translates the upload flags of cmd.
func uploadOptions(cmd *cobra.Command) []provisioner.UploadOption {
	f := NewFlagLoader(cmd)
	return []provisioner.UploadOption{
		provisioner.WithKey(f.String("key")),
		provisioner.WithContentType(f.String("content_type")),
		provisioner.WithContentDisposition(f.String("content_disposition")),
	}
}

func runUpload(cmd *cobra.Command, args []string) error {
	opts := loadProvisionOpts(cmd)
	p, clients, err := newProvisioner(cmd, opts)
	if err != nil {
		return err
	}
	defer clients.Close()

	if err := p.Upload(cmd.Context(), args[0], uploadOptions(cmd)...); err != nil {
		return failed(cmd, "File upload failed", err)
	}
	status(cmd, "File upload successful")
	return nil
}
