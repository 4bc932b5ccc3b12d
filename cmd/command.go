// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/LeeDigitalWorks/bucketctl/pkg/logger"
	"github.com/LeeDigitalWorks/bucketctl/pkg/metrics"
	"github.com/LeeDigitalWorks/bucketctl/pkg/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// recorder collects metrics for the whole run; it is flushed to
// --metrics_textfile when the command returns.
var recorder = metrics.New()

var rootCmd = &cobra.Command{
	Use:   "bucketctl",
	Short: "bucketctl - provision an S3 bucket",
	Long: `bucketctl creates an S3 bucket, uploads a file into it, lists its contents,
and optionally relaxes the bucket's public access block and attaches a bucket
policy rendered from a template with the caller's public IP filled in.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeRun,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&utils.ConfigurationFileDirectory, "config_dir", ".", "Directory for configuration files")
	f.String("log_level", "info", "Log level (debug, info, warn, error)")
	f.String("bucket", "", "Bucket name")
	f.String("region", "us-east-1", "Bucket region")
	f.String("endpoint", "", "Custom S3 endpoint URL (MinIO, LocalStack, ...)")
	f.Bool("path_style", false, "Use path-style bucket addressing")
	f.String("access_key_id", "", "Static access key ID (default: SDK credential chain)")
	f.String("secret_access_key", "", "Static secret access key")
	f.String("session_token", "", "Session token for temporary static credentials")
	f.String("role_arn", "", "IAM role to assume before provisioning")
	f.String("ca_file", "", "PEM CA bundle for verifying a custom endpoint")
	f.Bool("insecure_skip_verify", false, "Skip TLS certificate verification (testing only)")
	f.String("ip_lookup_url", "https://checkip.amazonaws.com", "Service returning the caller's public IP as plain text")
	f.Duration("ip_lookup_timeout", defaultIPLookupTimeout, "Timeout for the public IP lookup")
	f.String("metrics_textfile", "", "Write Prometheus metrics to this file on exit")

	viper.BindPFlags(f)
}

// initializeRun loads the configuration file and attaches a run-scoped
// logger to the command context.
func initializeRun(cmd *cobra.Command, args []string) error {
	utils.LoadConfiguration("bucketctl", false)

	flags := NewFlagLoader(cmd)
	if level, err := zerolog.ParseLevel(flags.String("log_level")); err == nil && level != zerolog.NoLevel {
		logger.SetLevel(level)
	}

	l := logger.With().Str("run_id", uuid.NewString()).Logger()
	cmd.SetContext(logger.WithLogger(cmd.Context(), &l))
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	if path := viper.GetString("metrics_textfile"); path != "" {
		if werr := recorder.WriteTextfile(path); werr != nil {
			logger.Warn().Err(werr).Str("path", path).Msg("Failed to write metrics textfile")
		}
	}

	if err != nil {
		if !errors.Is(err, errReported) {
			rootCmd.PrintErrln("Error:", err)
		}
		return 1
	}
	return 0
}
