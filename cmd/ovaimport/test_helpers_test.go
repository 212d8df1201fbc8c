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
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"github.com/cowdogmoo/ovaimport/config"
	"github.com/cowdogmoo/ovaimport/importer"
	"github.com/cowdogmoo/ovaimport/logging"
)

// setupTestContext creates a context with a quiet logger and cfg. Results
// and log lines go to stdout and stderr.
func setupTestContext(t *testing.T, cfg *config.Config, stdout, stderr io.Writer) context.Context {
	t.Helper()
	logger := logging.NewCustomLoggerWithOptions("error", "text", true, false)
	logger.ResultWriter = stdout
	logger.ConsoleWriter = stderr
	ctx := logging.WithLogger(context.Background(), logger)
	return context.WithValue(ctx, configKey, cfg)
}

// newTestCmd returns a bare command carrying cfg, with output captured.
func newTestCmd(t *testing.T, cfg *config.Config) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetContext(setupTestContext(t, cfg, stdout, stderr))
	return cmd, stdout, stderr
}

// stubAWSClients makes commands use clients instead of real AWS.
func stubAWSClients(t *testing.T, clients *importer.AWSClients) *importer.ClientConfig {
	t.Helper()
	var got importer.ClientConfig
	original := newAWSClients
	newAWSClients = func(ctx context.Context, cfg importer.ClientConfig) (*importer.AWSClients, error) {
		got = cfg
		if clients == nil {
			t.Fatal("AWS clients should not be created")
		}
		return clients, nil
	}
	t.Cleanup(func() { newAWSClients = original })
	return &got
}

// fakeEC2 implements importer.EC2API.
type fakeEC2 struct {
	describe func(ctx context.Context, params *ec2.DescribeImportImageTasksInput) (*ec2.DescribeImportImageTasksOutput, error)
	imports  []*ec2.ImportImageInput
	cancels  []string
}

func (f *fakeEC2) ImportImage(ctx context.Context, params *ec2.ImportImageInput, optFns ...func(*ec2.Options)) (*ec2.ImportImageOutput, error) {
	f.imports = append(f.imports, params)
	return &ec2.ImportImageOutput{ImportTaskId: aws.String("import-ami-test")}, nil
}

func (f *fakeEC2) DescribeImportImageTasks(ctx context.Context, params *ec2.DescribeImportImageTasksInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImportImageTasksOutput, error) {
	if f.describe != nil {
		return f.describe(ctx, params)
	}
	return &ec2.DescribeImportImageTasksOutput{}, nil
}

func (f *fakeEC2) CancelImportTask(ctx context.Context, params *ec2.CancelImportTaskInput, optFns ...func(*ec2.Options)) (*ec2.CancelImportTaskOutput, error) {
	f.cancels = append(f.cancels, aws.ToString(params.ImportTaskId))
	return &ec2.CancelImportTaskOutput{}, nil
}

var _ importer.EC2API = (*fakeEC2)(nil)

// fakeS3 implements importer.S3API and records created buckets and
// uploaded keys.
type fakeS3 struct {
	buckets []string
	objects []string
}

func (f *fakeS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.buckets = append(f.buckets, aws.ToString(params.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	return &s3.DeleteBucketOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return &s3.ListObjectsV2Output{}, nil
}

func (f *fakeS3) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.objects = append(f.objects, aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil
}

func (f *fakeS3) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return &s3.UploadPartOutput{ETag: aws.String("etag")}, nil
}

func (f *fakeS3) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (f *fakeS3) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

// fakeIAM implements importer.IAMAPI with a role that already exists.
type fakeIAM struct{}

func (f *fakeIAM) GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	return &iam.GetRoleOutput{Role: &iamtypes.Role{
		RoleName: params.RoleName,
		Arn:      aws.String("arn:aws:iam::123456789012:role/" + aws.ToString(params.RoleName)),
	}}, nil
}

func (f *fakeIAM) CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	return &iam.CreateRoleOutput{}, nil
}

func (f *fakeIAM) PutRolePolicy(ctx context.Context, params *iam.PutRolePolicyInput, optFns ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error) {
	return &iam.PutRolePolicyOutput{}, nil
}

func (f *fakeIAM) DeleteRolePolicy(ctx context.Context, params *iam.DeleteRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DeleteRolePolicyOutput, error) {
	return &iam.DeleteRolePolicyOutput{}, nil
}

func (f *fakeIAM) DeleteRole(ctx context.Context, params *iam.DeleteRoleInput, optFns ...func(*iam.Options)) (*iam.DeleteRoleOutput, error) {
	return &iam.DeleteRoleOutput{}, nil
}

// fakeSTS implements importer.STSAPI.
type fakeSTS struct{}

func (f *fakeSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/importer"),
	}, nil
}

var (
	_ importer.S3API  = (*fakeS3)(nil)
	_ importer.IAMAPI = (*fakeIAM)(nil)
	_ importer.STSAPI = (*fakeSTS)(nil)
)
