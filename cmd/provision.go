// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"time"

	"github.com/LeeDigitalWorks/bucketctl/pkg/logger"
	"github.com/LeeDigitalWorks/bucketctl/pkg/provisioner"
	"github.com/LeeDigitalWorks/bucketctl/pkg/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create a bucket, upload a file, list it and attach a policy",
	Long: `Run the full provisioning workflow against one bucket:

  1. check whether the bucket exists, creating it when it does not
  2. upload --file (key defaults to the file's base name)
  3. list the bucket contents
  4. with --policy_template: set the public access block flags, resolve the
     caller's public IP and attach the rendered bucket policy
  5. with --sse or --kms_key_id: set default bucket encryption

When --bucket is empty a name of the form bucket-YYYYmmdd-HHMMSS is used.
A failed upload or policy step is reported and the remaining steps still run;
the command then exits non-zero.

Example:
  bucketctl provision --region eu-west-1 --file ./data/ID.png --policy_template ./policy.json`,
	RunE: runProvision,
}

func init() {
	rootCmd.AddCommand(provisionCmd)

	f := provisionCmd.Flags()
	f.String("file", "", "Local file to upload")
	f.String("key", "", "Object key (default: base name of the file)")
	f.String("content_type", "", "Content-Type override (default: guessed from extension)")
	f.String("content_disposition", "", "Content-Disposition stored with the object")
	f.String("policy_template", "", "Bucket policy template containing <bucket-name> and <ip-address>")
	f.Bool("sse", false, "Enable default SSE-S3 encryption")
	f.String("kms_key_id", "", "KMS key ID, alias or ARN for default SSE-KMS encryption")
	addPublicAccessBlockFlags(f)

	viper.BindPFlags(f)
}

// defaultBucketName returns a timestamped bucket name.
func defaultBucketName(now time.Time) string {
	return "bucket-" + now.Format("20060102-150405")
}

// provisionSteps selects the optional steps of the provision workflow.
type provisionSteps struct {
	File           string
	Upload         []provisioner.UploadOption
	PolicyTemplate string
	PublicAccess   provisioner.PublicAccessBlock
	SSE            bool
	KMSKeyID       string
}

func loadProvisionSteps(cmd *cobra.Command) provisionSteps {
	f := NewFlagLoader(cmd)
	return provisionSteps{
		File:           utils.ResolvePath(f.String("file")),
		Upload:         uploadOptions(cmd),
		PolicyTemplate: utils.ResolvePath(f.String("policy_template")),
		PublicAccess:   loadPublicAccessBlock(cmd),
		SSE:            f.Bool("sse"),
		KMSKeyID:       f.String("kms_key_id"),
	}
}

func runProvision(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts := loadProvisionOpts(cmd)
	if opts.Bucket == "" {
		opts.Bucket = defaultBucketName(time.Now())
	}

	p, clients, err := newProvisioner(cmd, opts)
	if err != nil {
		return err
	}
	defer clients.Close()

	if id, err := clients.CallerIdentity(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("Could not resolve caller identity")
	} else {
		logger.Ctx(ctx).Info().
			Str("account", id.Account).
			Str("arn", id.ARN).
			Msg("Provisioning as")
	}

	return provision(cmd, p, loadProvisionSteps(cmd))
}

// provision runs the workflow against p. A failed create stops the run;
// later failures are reported and joined into the returned error.
func provision(cmd *cobra.Command, p *provisioner.Provisioner, steps provisionSteps) error {
	ctx := cmd.Context()
	bucket := p.Bucket().Name

	if !p.Exists(ctx) {
		if err := p.Create(ctx); err != nil {
			return failed(cmd, "Failed to create bucket", err)
		}
		status(cmd, "Created new bucket: %s", bucket)
	}

	var errs []error

	if steps.File != "" {
		if err := p.Upload(ctx, steps.File, steps.Upload...); err != nil {
			errs = append(errs, failed(cmd, "File upload failed", err))
		} else {
			status(cmd, "File upload successful")
		}
	}

	if listing, err := p.ListContents(ctx); err != nil {
		errs = append(errs, failed(cmd, "Error listing bucket contents", err))
	} else {
		printListing(cmd, listing)
	}

	if steps.PolicyTemplate != "" {
		if err := p.SetPublicAccessBlock(ctx, steps.PublicAccess); err != nil {
			errs = append(errs, failed(cmd, "Error setting public access block", err))
		} else {
			status(cmd, "Updated public access block for bucket %s", bucket)
			if _, err := p.ApplyPolicyFromTemplate(ctx, steps.PolicyTemplate); err != nil {
				errs = append(errs, failed(cmd, "Error applying bucket policy", err))
			} else {
				status(cmd, "Applied bucket policy from %s", steps.PolicyTemplate)
			}
		}
	}

	if steps.SSE || steps.KMSKeyID != "" {
		if err := p.SetDefaultEncryption(ctx, steps.KMSKeyID); err != nil {
			errs = append(errs, failed(cmd, "Error setting default encryption", err))
		} else {
			status(cmd, "Set default encryption for bucket %s", bucket)
		}
	}

	return errors.Join(errs...)
}
