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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cowdogmoo/ovaimport/config"
	errs "github.com/cowdogmoo/ovaimport/errors"
	"github.com/cowdogmoo/ovaimport/importer"
	"github.com/cowdogmoo/ovaimport/logging"
)

// cleanupOptions holds command-line options for the cleanup command
type cleanupOptions struct {
	report     string
	region     string
	bucket     string
	roleName   string
	policyName string
	taskID     string
	dryRun     bool
}

var cleanupCmd *cobra.Command

func init() {
	opts := &cleanupOptions{}

	cleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "Remove resources left behind by an import",
		Long: `Remove resources left behind by a failed or interrupted import.

Resources are taken from a run report written with 'ovaimport import --report',
or named explicitly. The import task is cancelled first, then the bucket (with
all its objects) and the role are deleted.

Examples:
  # Clean up everything recorded in a run report
  ovaimport cleanup --report ./run.yaml

  # Delete a staging bucket and cancel its import task
  ovaimport cleanup --bucket ova-ami-import-1700000000-1a2b3c4d --task-id import-ami-0123456789abcdef0

  # Show what would be deleted
  ovaimport cleanup --report ./run.yaml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(cmd, opts)
		},
	}

	cleanupCmd.Flags().StringVar(&opts.report, "report", "", "Run report written by 'ovaimport import --report'")
	cleanupCmd.Flags().StringVar(&opts.region, "region", "", "AWS region (defaults to the report's region, then config)")
	cleanupCmd.Flags().StringVar(&opts.bucket, "bucket", "", "Staging bucket to empty and delete")
	cleanupCmd.Flags().StringVar(&opts.roleName, "role", "", "IAM role to delete")
	cleanupCmd.Flags().StringVar(&opts.policyName, "policy", "", "Inline policy to remove from the role (defaults to the role name)")
	cleanupCmd.Flags().StringVar(&opts.taskID, "task-id", "", "Import task to cancel")
	cleanupCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would be deleted without actually deleting")
}

func runCleanup(cmd *cobra.Command, opts *cleanupOptions) error {
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}

	res, err := resourcesToClean(opts)
	if err != nil {
		return err
	}
	if res.IsEmpty() {
		return fmt.Errorf("nothing to clean up: pass --report or at least one of --bucket, --role, --task-id")
	}

	region := opts.region
	if region == "" {
		region = res.Region
	}
	if region == "" {
		region = cfg.AWS.Region
	}
	res.Region = region

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Resources to clean up:")
	for _, line := range res.List() {
		fmt.Fprintf(w, "  - %s\n", line)
	}

	if opts.dryRun {
		logging.InfoContext(ctx, "Dry-run mode - no resources were deleted")
		return nil
	}

	clients, err := newAWSClients(ctx, importer.ClientConfig{
		Region:          region,
		Profile:         cfg.AWS.Profile,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
	})
	if err != nil {
		return err
	}

	if err := importer.NewResourceCleaner(clients).Cleanup(ctx, res); err != nil {
		if left := errs.FailedResources(err); len(left) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not remove: %s\n", strings.Join(left, ", "))
		}
		return err
	}
	return nil
}

// resourcesToClean merges the report, if any, with explicit flags. Flags win.
func resourcesToClean(opts *cleanupOptions) (importer.CreatedResources, error) {
	var res importer.CreatedResources

	if opts.report != "" {
		path, err := config.ExpandPath(opts.report)
		if err != nil {
			return res, err
		}
		report, err := importer.ReadReport(path)
		if err != nil {
			return res, err
		}
		res = report.Created
		if res.Region == "" {
			res.Region = report.Region
		}
		if res.TaskID == "" {
			res.TaskID = report.TaskID
		}
	}

	if opts.bucket != "" {
		res.Bucket = opts.bucket
	}
	if opts.roleName != "" {
		res.RoleName = opts.roleName
	}
	if opts.policyName != "" {
		res.PolicyName = opts.policyName
	}
	if opts.taskID != "" {
		res.TaskID = opts.taskID
	}

	return res, nil
}
