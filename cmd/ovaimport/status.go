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

	"github.com/spf13/cobra"

	"github.com/cowdogmoo/ovaimport/importer"
	"github.com/cowdogmoo/ovaimport/logging"
)

var statusRegion string

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show the state of an import task",
	Long: `Show the state of an EC2 import task with a single status check.

Examples:
  ovaimport status import-ami-0123456789abcdef0 --region us-west-2`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusRegion, "region", "", "AWS region (uses config default if not specified)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}

	region := statusRegion
	if region == "" {
		region = cfg.AWS.Region
	}

	ctx := cmd.Context()
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

	status, err := importer.NewTaskMonitor(clients.EC2).Describe(ctx, args[0])
	if err != nil {
		return err
	}

	task := importer.NewImportTask(args[0])
	task.Apply(status)

	logging.OutputContext(ctx, formatStatus(task))
	return nil
}

func formatStatus(task *importer.ImportTask) string {
	line := fmt.Sprintf("%s: %s", task.ID(), task.Phase())
	if task.SubPhase() != "" {
		line += " (" + task.SubPhase() + ")"
	}
	if task.Progress() != "" && !task.Phase().IsTerminal() {
		line += " " + task.Progress() + "%"
	}
	if task.ImageID() != "" {
		line += " image " + task.ImageID()
	}
	return line
}
