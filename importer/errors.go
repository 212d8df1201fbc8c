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
	"errors"
	"fmt"
	"strings"

	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ConfigError reports a problem with local input or configuration:
// missing input file, unsupported format, no region, no credentials.
// These are never retried.
type ConfigError struct {
	Message string
	Cause   error
	Hint    string
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s\n\nRemediation: %s", msg, e.Hint)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ImportError is a remote rejection annotated with a remediation hint.
type ImportError struct {
	Message     string
	Cause       error
	Remediation string
}

func (e *ImportError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Remediation != "" {
		return fmt.Sprintf("%s\n\nRemediation: %s", msg, e.Remediation)
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

// PollError is returned when status polling failed MaxAttempts times in a
// row. The import task itself may still be running.
type PollError struct {
	TaskID      string
	MaxAttempts int
	Cause       error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("giving up on import task %s after %d consecutive status errors: %v", e.TaskID, e.MaxAttempts, e.Cause)
}

func (e *PollError) Unwrap() error {
	return e.Cause
}

// TaskFailedError is returned when the import task reached Failed or
// Cancelled. It is an outcome reported by the conversion service, not a
// transport problem.
type TaskFailedError struct {
	TaskID        string
	Phase         Phase
	Status        string
	StatusMessage string
}

func (e *TaskFailedError) Error() string {
	msg := fmt.Sprintf("import task %s %s", e.TaskID, strings.ToLower(string(e.Phase)))
	if e.Status != "" {
		msg = fmt.Sprintf("%s (status: %s)", msg, e.Status)
	}
	if e.StatusMessage != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.StatusMessage)
	}
	return msg
}

// PipelineError wraps the first fatal error of a run together with the
// step it happened in and every resource the run had created by then.
type PipelineError struct {
	Step    Step
	Created CreatedResources
	Cause   error
	// CleanedUp is true when Created was torn down after the failure.
	CleanedUp bool
	// CleanupErr is set when cleanup on failure was attempted and failed.
	CleanupErr error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Cause)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// errorPattern defines a pattern for matching and remediating errors
type errorPattern struct {
	patterns    []string // all must match
	anyPatterns []string // at least one must match
	msgSuffix   string
	remediation string
}

var errorPatterns = []errorPattern{
	{
		anyPatterns: []string{"BucketAlreadyExists"},
		msgSuffix:   "bucket name is taken",
		remediation: "S3 bucket names are global. Re-run to generate a new name, or change import.bucket_prefix.",
	},
	{
		anyPatterns: []string{"TooManyBuckets"},
		msgSuffix:   "bucket quota exceeded",
		remediation: "Delete unused buckets (see 'ovaimport cleanup') or request an S3 bucket quota increase.",
	},
	{
		anyPatterns: []string{"InvalidLocationConstraint", "IllegalLocationConstraintException"},
		msgSuffix:   "region configuration error",
		remediation: "Specify a valid region with --region, AWS_REGION, or aws.region in the config file.",
	},
	{
		patterns:    []string{"role"},
		anyPatterns: []string{"does not exist", "InvalidParameter"},
		msgSuffix:   "service role not usable",
		remediation: "The VM Import service could not use the role yet. Wait a minute for IAM propagation and retry, or verify the role trust policy allows vmie.amazonaws.com.",
	},
	{
		anyPatterns: []string{"InvalidParameter", "Unsupported", "format"},
		msgSuffix:   "import request rejected",
		remediation: "Check that --format matches the file (ova, vmdk, vhd, vhdx, raw) and that the OS is supported by VM Import/Export.",
	},
	{
		anyPatterns: []string{"AccessDenied", "not authorized", "UnauthorizedOperation"},
		msgSuffix:   "permission denied",
		remediation: "Your credentials need s3:CreateBucket, s3:PutObject, iam:GetRole, iam:CreateRole, iam:PutRolePolicy, iam:PassRole, ec2:ImportImage and ec2:DescribeImportImageTasks.",
	},
	{
		anyPatterns: []string{"LimitExceeded", "ResourceCountExceeded", "quota"},
		msgSuffix:   "AWS service quota exceeded",
		remediation: "Wait for running import tasks to finish or request a VM Import/Export quota increase.",
	},
	{
		anyPatterns: []string{"ExpiredToken", "InvalidClientTokenId", "SignatureDoesNotMatch"},
		msgSuffix:   "credentials rejected",
		remediation: "Refresh your AWS credentials (for SSO run 'aws sso login').",
	},
}

// WrapWithRemediation wraps an error with a remediation hint based on the error text
func WrapWithRemediation(err error, context string) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()
	for _, pattern := range errorPatterns {
		if matchesPattern(errMsg, pattern) {
			return &ImportError{
				Message:     fmt.Sprintf("%s: %s", context, pattern.msgSuffix),
				Cause:       err,
				Remediation: pattern.remediation,
			}
		}
	}

	return fmt.Errorf("%s: %w", context, err)
}

func matchesPattern(errMsg string, p errorPattern) bool {
	for _, pat := range p.patterns {
		if !strings.Contains(errMsg, pat) {
			return false
		}
	}

	if len(p.anyPatterns) == 0 {
		return true
	}
	for _, pat := range p.anyPatterns {
		if strings.Contains(errMsg, pat) {
			return true
		}
	}
	return false
}

// apiErrorCode returns the smithy error code, or "" for non-API errors.
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// isNoSuchEntity reports whether an IAM call failed because the entity is
// absent. Any other failure, including AccessDenied, returns false.
func isNoSuchEntity(err error) bool {
	if err == nil {
		return false
	}

	var nse *iamtypes.NoSuchEntityException
	if errors.As(err, &nse) {
		return true
	}

	return apiErrorCode(err) == "NoSuchEntity"
}

// isBucketAlreadyOwnedByYou reports whether CreateBucket failed because the
// caller already owns the bucket.
func isBucketAlreadyOwnedByYou(err error) bool {
	if err == nil {
		return false
	}

	var owned *s3types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}

	return apiErrorCode(err) == "BucketAlreadyOwnedByYou"
}

// isNoSuchBucket reports whether an S3 call failed because the bucket is gone.
func isNoSuchBucket(err error) bool {
	if err == nil {
		return false
	}

	var nsb *s3types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	code := apiErrorCode(err)
	return code == "NoSuchBucket" || code == "NotFound"
}
