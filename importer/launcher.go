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

package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cowdogmoo/ovaimport/logging"
)

// LaunchInput references an uploaded artifact to convert.
type LaunchInput struct {
	Bucket      string
	Key         string
	Format      string
	Description string
	RoleName    string
	Tags        map[string]string
}

// TaskLauncher submits VM Import tasks.
type TaskLauncher struct {
	client EC2API
}

// NewTaskLauncher creates a new task launcher.
func NewTaskLauncher(client EC2API) *TaskLauncher {
	return &TaskLauncher{client: client}
}

// Launch starts an import-image task and returns its ID.
func (l *TaskLauncher) Launch(ctx context.Context, in LaunchInput) (string, error) {
	format := in.Format
	if format == "" {
		format = FormatOVA
	}
	description := in.Description
	if description == "" {
		description = DefaultDescription(in.Key)
	}

	input := &ec2.ImportImageInput{
		Description: aws.String(description),
		DiskContainers: []ec2types.ImageDiskContainer{
			{
				Description: aws.String(description),
				Format:      aws.String(format),
				UserBucket: &ec2types.UserBucket{
					S3Bucket: aws.String(in.Bucket),
					S3Key:    aws.String(in.Key),
				},
			},
		},
	}
	if in.RoleName != "" {
		input.RoleName = aws.String(in.RoleName)
	}
	if len(in.Tags) > 0 {
		input.TagSpecifications = []ec2types.TagSpecification{
			{
				ResourceType: ec2types.ResourceTypeImportImageTask,
				Tags:         buildEC2Tags(in.Tags),
			},
		}
	}

	logging.InfoContext(ctx, "Starting VM import of s3://%s/%s (format %s)", in.Bucket, in.Key, format)

	out, err := l.client.ImportImage(ctx, input)
	if err != nil {
		return "", WrapWithRemediation(err, "failed to start import task")
	}

	taskID := ""
	if out != nil {
		taskID = aws.ToString(out.ImportTaskId)
	}
	if taskID == "" {
		return "", errors.New("import request accepted but no task ID was returned")
	}

	logging.InfoContext(ctx, "Import task started: %s", taskID)
	return taskID, nil
}

// DefaultDescription is the task and image description used when none is given.
func DefaultDescription(key string) string {
	return fmt.Sprintf("AMI created from %s", key)
}

// buildEC2Tags converts a map to EC2 tags in a stable order.
func buildEC2Tags(tags map[string]string) []ec2types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ec2types.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, ec2types.Tag{
			Key:   aws.String(k),
			Value: aws.String(tags[k]),
		})
	}
	return out
}
