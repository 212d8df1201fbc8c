/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cowdogmoo/ovaimport/config"
	errs "github.com/cowdogmoo/ovaimport/errors"
	"github.com/cowdogmoo/ovaimport/importer"
	"github.com/cowdogmoo/ovaimport/logging"
)

// importOptions holds command-line options for the import command
type importOptions struct {
	input            string
	region           string
	profile          string
	format           string
	description      string
	roleName         string
	bucketPrefix     string
	pollInterval     time.Duration
	maxPollErrors    int
	timeout          time.Duration
	cleanupOnFailure bool
	report           string
	tags             []string
}

// newAWSClients is replaced in tests.
var newAWSClients = importer.NewAWSClients

var importCmd *cobra.Command

func init() {
	opts := &importOptions{}

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import a VM image as an AMI",
		Long: `Import a VM image as an AMI.

A fresh S3 bucket is created for every run. The vmimport service role is reused
when it already exists. On failure the resources created so far are listed, or
removed when --cleanup-on-failure is set.

Examples:
  # Import an OVA using the default region and credentials
  ovaimport import --input ./appliance.ova

  # Import a VMDK into us-west-2 and tag the import task
  ovaimport import --input disk.vmdk --region us-west-2 --tag team=infra --tag env=lab

  # Remove everything created if the import fails, and keep a run report
  ovaimport import --input appliance.ova --cleanup-on-failure --report ./run.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	importCmd.Flags().StringVarP(&opts.input, "input", "i", "", "Path to the OVA or disk image (required)")
	importCmd.Flags().StringVar(&opts.region, "region", "", "AWS region (uses config default if not specified)")
	importCmd.Flags().StringVar(&opts.profile, "profile", "", "AWS shared config profile")
	importCmd.Flags().StringVar(&opts.format, "format", "", "Disk format (ova, vmdk, vhd, vhdx, raw); inferred from the extension by default")
	importCmd.Flags().StringVar(&opts.description, "description", "", "Description of the import task and AMI")
	importCmd.Flags().StringVar(&opts.roleName, "role-name", "", "Name of the VM Import service role")
	importCmd.Flags().StringVar(&opts.bucketPrefix, "bucket-prefix", "", "Prefix of the staging bucket name")
	importCmd.Flags().DurationVar(&opts.pollInterval, "poll-interval", 0, "Interval between import task status checks")
	importCmd.Flags().IntVar(&opts.maxPollErrors, "max-poll-errors", 0, "Consecutive status check failures tolerated before giving up")
	importCmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Overall time limit for the import (0 = no limit)")
	importCmd.Flags().BoolVar(&opts.cleanupOnFailure, "cleanup-on-failure", false, "Delete created resources when the import fails")
	importCmd.Flags().StringVar(&opts.report, "report", "", "Write a YAML run report to this path")
	importCmd.Flags().StringArrayVar(&opts.tags, "tag", nil, "Tag for the import task in key=value form (repeatable)")

	_ = importCmd.MarkFlagRequired("input")
}

func runImport(cmd *cobra.Command, opts *importOptions) error {
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}

	applyImportOverrides(cmd, cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	tags, err := parseTags(cfg.Import.Tags, opts.tags)
	if err != nil {
		return err
	}

	input, err := config.ExpandPath(opts.input)
	if err != nil {
		return err
	}
	reportPath, err := config.ExpandPath(opts.report)
	if err != nil {
		return err
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	clients, err := newAWSClients(ctx, importer.ClientConfig{
		Region:          cfg.AWS.Region,
		Profile:         cfg.AWS.Profile,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
	})
	if err != nil {
		return err
	}

	imp := importer.NewImporter(clients, buildImporterOptions(cfg, tags))

	logging.InfoContext(ctx, "Importing %s into %s", input, clients.GetRegion())

	started := time.Now()
	result, runErr := imp.Run(ctx, input)

	if reportPath != "" {
		report := importer.NewRunReport(input, started, result, runErr)
		if err := importer.WriteReport(reportPath, report); err != nil {
			logging.ErrorContext(ctx, "Failed to write run report: %v", err)
		} else {
			logging.InfoContext(ctx, "Run report written to %s", reportPath)
		}
	}

	if runErr != nil {
		printFailure(cmd, runErr)
		return runErr
	}

	logging.InfoContext(ctx, "Import completed in %s", result.Duration)
	logging.OutputContext(ctx, result.ImageID)
	return nil
}

// applyImportOverrides copies flags the user set onto the loaded config.
func applyImportOverrides(cmd *cobra.Command, cfg *config.Config, opts *importOptions) {
	flags := cmd.Flags()

	if flags.Changed("region") {
		cfg.AWS.Region = opts.region
	}
	if flags.Changed("profile") {
		cfg.AWS.Profile = opts.profile
	}
	if flags.Changed("format") {
		cfg.Import.DiskFormat = opts.format
	}
	if flags.Changed("description") {
		cfg.Import.Description = opts.description
	}
	if flags.Changed("role-name") {
		cfg.Import.RoleName = opts.roleName
		cfg.Import.PolicyName = opts.roleName
	}
	if flags.Changed("bucket-prefix") {
		cfg.Import.BucketPrefix = opts.bucketPrefix
	}
	if flags.Changed("poll-interval") {
		cfg.Import.PollInterval = opts.pollInterval
	}
	if flags.Changed("max-poll-errors") {
		cfg.Import.MaxPollErrors = opts.maxPollErrors
	}
	if flags.Changed("timeout") {
		cfg.Import.Timeout = opts.timeout
	}
	if flags.Changed("cleanup-on-failure") {
		cfg.Import.CleanupOnFailure = opts.cleanupOnFailure
	}
}

func buildImporterOptions(cfg *config.Config, tags map[string]string) importer.Options {
	return importer.Options{
		Region:               cfg.AWS.Region,
		BucketPrefix:         cfg.Import.BucketPrefix,
		RoleName:             cfg.Import.RoleName,
		PolicyName:           cfg.Import.PolicyName,
		Format:               cfg.Import.DiskFormat,
		Description:          cfg.Import.Description,
		Tags:                 tags,
		PollInterval:         cfg.Import.PollInterval,
		MaxPollErrors:        cfg.Import.MaxPollErrors,
		RoleWaitTimeout:      cfg.Import.RoleWaitTimeout,
		RolePropagationDelay: cfg.Import.RolePropagationDelay,
		Timeout:              cfg.Import.Timeout,
		CleanupOnFailure:     cfg.Import.CleanupOnFailure,
		UploadPartSizeMB:     cfg.Import.UploadPartSizeMB,
		UploadConcurrency:    cfg.Import.UploadConcurrency,
	}
}

// parseTags merges key=value flags over the configured tags.
func parseTags(base map[string]string, pairs []string) (map[string]string, error) {
	tags := make(map[string]string, len(base)+len(pairs))
	for k, v := range base {
		tags[k] = v
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tag %q: expected key=value", pair)
		}
		tags[key] = value
	}

	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

// printFailure lists on stderr what a failed run left behind.
func printFailure(cmd *cobra.Command, err error) {
	w := cmd.ErrOrStderr()

	var perr *importer.PipelineError
	if !errors.As(err, &perr) {
		return
	}

	if perr.CleanupErr != nil {
		fmt.Fprintf(w, "\nCleanup after failure did not finish: %v\n", perr.CleanupErr)
		if left := errs.FailedResources(perr.CleanupErr); len(left) > 0 {
			fmt.Fprintf(w, "Could not remove: %s\n", strings.Join(left, ", "))
		}
	}

	lines := perr.Created.List()
	if len(lines) == 0 {
		return
	}

	if perr.CleanedUp {
		fmt.Fprintln(w, "\nResources created by this run were removed:")
	} else {
		fmt.Fprintln(w, "\nResources created by this run (remove with 'ovaimport cleanup'):")
	}
	for _, line := range lines {
		fmt.Fprintf(w, "  - %s\n", line)
	}
}

// withSignals cancels the returned context on SIGINT or SIGTERM.
func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
