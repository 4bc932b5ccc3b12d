// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/LeeDigitalWorks/bucketctl/pkg/provisioner"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var publicAccessBlockCmd = &cobra.Command{
	Use:   "public-access-block",
	Short: "Set the bucket's public access block flags",
	Long: `Set the bucket's public access block flags.

All four flags are submitted as given and default to false, which removes
every restriction. The provider decides whether a combination is valid.`,
	RunE: runPublicAccessBlock,
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Bucket policy operations",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var policyApplyCmd = &cobra.Command{
	Use:   "apply <template>",
	Short: "Render a policy template and attach it to the bucket",
	Long: `Render a policy template and attach it to the bucket.

Every <bucket-name> in the template is replaced with the bucket name and every
<ip-address> with the caller's public IP as reported by --ip_lookup_url.

Example:
  bucketctl policy apply --bucket my-bucket ./policy/bucket-policy.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPolicyApply,
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the bucket's current policy",
	RunE:  runPolicyShow,
}

var encryptionCmd = &cobra.Command{
	Use:   "encryption",
	Short: "Set default server-side encryption for the bucket",
	Long: `Set default server-side encryption for the bucket.

Without --kms_key_id objects are encrypted with SSE-S3 (AES256). With a key ID,
alias or ARN, the key is checked to be enabled and SSE-KMS is configured.`,
	RunE: runEncryption,
}

func init() {
	rootCmd.AddCommand(publicAccessBlockCmd, policyCmd, encryptionCmd)
	policyCmd.AddCommand(policyApplyCmd, policyShowCmd)

	addPublicAccessBlockFlags(publicAccessBlockCmd.Flags())
	encryptionCmd.Flags().String("kms_key_id", "", "KMS key ID, alias or ARN for SSE-KMS")

	viper.BindPFlags(publicAccessBlockCmd.Flags())
	viper.BindPFlags(encryptionCmd.Flags())
}

func addPublicAccessBlockFlags(f *pflag.FlagSet) {
	f.Bool("block_public_acls", false, "Reject requests that add public ACLs")
	f.Bool("ignore_public_acls", false, "Ignore public ACLs on the bucket and its objects")
	f.Bool("block_public_policy", false, "Reject bucket policies that grant public access")
	f.Bool("restrict_public_buckets", false, "Restrict access to buckets with public policies")
}

func loadPublicAccessBlock(cmd *cobra.Command) provisioner.PublicAccessBlock {
	f := NewFlagLoader(cmd)
	return provisioner.PublicAccessBlock{
		BlockPublicACLs:       f.Bool("block_public_acls"),
		IgnorePublicACLs:      f.Bool("ignore_public_acls"),
		BlockPublicPolicy:     f.Bool("block_public_policy"),
		RestrictPublicBuckets: f.Bool("restrict_public_buckets"),
	}
}

func runPublicAccessBlock(cmd *cobra.Command, args []string) error {
	opts := loadProvisionOpts(cmd)
	p, clients, err := newProvisioner(cmd, opts)
	if err != nil {
		return err
	}
	defer clients.Close()

	if err := p.SetPublicAccessBlock(cmd.Context(), loadPublicAccessBlock(cmd)); err != nil {
		return failed(cmd, "Error setting public access block", err)
	}
	status(cmd, "Updated public access block for bucket %s", opts.Bucket)
	return nil
}

func runPolicyApply(cmd *cobra.Command, args []string) error {
	opts := loadProvisionOpts(cmd)
	p, clients, err := newProvisioner(cmd, opts)
	if err != nil {
		return err
	}
	defer clients.Close()

	if _, err := p.ApplyPolicyFromTemplate(cmd.Context(), args[0]); err != nil {
		return failed(cmd, "Error applying bucket policy", err)
	}
	status(cmd, "Applied bucket policy from %s to bucket %s", args[0], opts.Bucket)
	return nil
}

func runPolicyShow(cmd *cobra.Command, args []string) error {
	opts := loadProvisionOpts(cmd)
	p, clients, err := newProvisioner(cmd, opts)
	if err != nil {
		return err
	}
	defer clients.Close()

	doc, err := p.Policy(cmd.Context())
	if err != nil {
		return failed(cmd, "Error reading bucket policy", err)
	}
	status(cmd, "%s", doc)
	return nil
}

func runEncryption(cmd *cobra.Command, args []string) error {
	opts := loadProvisionOpts(cmd)
	p, clients, err := newProvisioner(cmd, opts)
	if err != nil {
		return err
	}
	defer clients.Close()

	if err := p.SetDefaultEncryption(cmd.Context(), NewFlagLoader(cmd).String("kms_key_id")); err != nil {
		return failed(cmd, "Error setting default encryption", err)
	}
	status(cmd, "Set default encryption for bucket %s", opts.Bucket)
	return nil
}
