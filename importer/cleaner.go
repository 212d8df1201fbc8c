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
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/cowdogmoo/ovaimport/errors"
	"github.com/cowdogmoo/ovaimport/logging"
)

// ResourceCleaner tears down resources created by an import run.
type ResourceCleaner struct {
	clients *AWSClients
}

// NewResourceCleaner creates a new resource cleaner
func NewResourceCleaner(clients *AWSClients) *ResourceCleaner {
	return &ResourceCleaner{
		clients: clients,
	}
}

// Cleanup cancels the import task, then deletes the bucket and the role
// concurrently. All deletion failures are returned joined. A failed cancel
// is only logged because finished tasks cannot be cancelled.
func (c *ResourceCleaner) Cleanup(ctx context.Context, res CreatedResources) error {
	if res.IsEmpty() {
		logging.InfoContext(ctx, "Nothing to clean up")
		return nil
	}

	logging.InfoContext(ctx, "Cleaning up resources created during the import")

	if res.TaskID != "" {
		if err := c.CancelImportTask(ctx, res.TaskID); err != nil {
			logging.WarnContext(ctx, "Failed to cancel import task %s (it may already be finished): %v", res.TaskID, err)
		}
	}

	var bucketErr, roleErr error
	var g errgroup.Group

	if res.Bucket != "" {
		g.Go(func() error {
			bucketErr = c.DeleteBucket(ctx, res.Bucket)
			return nil
		})
	}
	if res.RoleName != "" {
		g.Go(func() error {
			roleErr = c.DeleteRole(ctx, res.RoleName, res.PolicyName)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(bucketErr, roleErr); err != nil {
		return err
	}

	logging.InfoContext(ctx, "Resource cleanup completed")
	return nil
}

// CancelImportTask cancels a running import task.
func (c *ResourceCleaner) CancelImportTask(ctx context.Context, taskID string) error {
	logging.InfoContext(ctx, "Cancelling import task %s", taskID)

	_, err := c.clients.EC2.CancelImportTask(ctx, &ec2.CancelImportTaskInput{
		ImportTaskId: aws.String(taskID),
		CancelReason: aws.String("cancelled by ovaimport cleanup"),
	})
	return errors.Wrap("cancel import task", taskID, err)
}

// DeleteBucket empties and deletes a bucket. A bucket that no longer
// exists is not an error.
func (c *ResourceCleaner) DeleteBucket(ctx context.Context, bucket string) error {
	logging.InfoContext(ctx, "Deleting S3 bucket %s", bucket)

	paginator := s3.NewListObjectsV2Paginator(c.clients.S3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNoSuchBucket(err) {
				logging.DebugContext(ctx, "Bucket %s is already gone", bucket)
				return nil
			}
			return errors.Wrap("list objects", bucket, err)
		}

		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, s3types.ObjectIdentifier{Key: obj.Key})
		}

		out, err := c.clients.S3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return errors.Wrap("delete objects", bucket, err)
		}
		if out != nil && len(out.Errors) > 0 {
			first := out.Errors[0]
			return errors.Wrap("delete objects", bucket, fmt.Errorf("%d object(s) not deleted, first %s: %s",
				len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message)))
		}
		logging.DebugContext(ctx, "Deleted %d object(s) from %s", len(objects), bucket)
	}

	if _, err := c.clients.S3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		if isNoSuchBucket(err) {
			return nil
		}
		return errors.Wrap("delete bucket", bucket, err)
	}

	logging.InfoContext(ctx, "Deleted S3 bucket %s", bucket)
	return nil
}

// DeleteRole removes the inline policy and then the role. Missing entities
// are skipped.
func (c *ResourceCleaner) DeleteRole(ctx context.Context, roleName, policyName string) error {
	if policyName == "" {
		policyName = roleName
	}

	logging.InfoContext(ctx, "Deleting IAM role %s", roleName)

	if _, err := c.clients.IAM.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
		RoleName:   aws.String(roleName),
		PolicyName: aws.String(policyName),
	}); err != nil && !isNoSuchEntity(err) {
		return errors.Wrap("delete role policy", policyName, err)
	}

	if _, err := c.clients.IAM.DeleteRole(ctx, &iam.DeleteRoleInput{
		RoleName: aws.String(roleName),
	}); err != nil && !isNoSuchEntity(err) {
		return errors.Wrap("delete IAM role", roleName, err)
	}

	logging.InfoContext(ctx, "Deleted IAM role %s", roleName)
	return nil
}
