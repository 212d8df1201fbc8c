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
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/cowdogmoo/ovaimport/logging"
)

// loadAWSConfig is swapped out in tests.
var loadAWSConfig = config.LoadDefaultConfig

// AWSClients holds the service clients used by the import pipeline.
type AWSClients struct {
	S3     S3API
	IAM    IAMAPI
	EC2    EC2API
	STS    STSAPI
	Config aws.Config
}

// ClientConfig contains configuration for creating AWS clients. Empty
// fields fall back to the SDK default chain (environment, shared config,
// instance metadata).
type ClientConfig struct {
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// CallerIdentity is the account and principal the credentials resolve to.
type CallerIdentity struct {
	Account string
	ARN     string
}

// NewAWSClients creates a new set of AWS clients with the given configuration
func NewAWSClients(ctx context.Context, cfg ClientConfig) (*AWSClients, error) {
	var optFns []func(*config.LoadOptions) error

	if cfg.Region != "" {
		optFns = append(optFns, config.WithRegion(cfg.Region))
	}

	if cfg.Profile != "" {
		optFns = append(optFns, config.WithSharedConfigProfile(cfg.Profile))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		provider := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			cfg.SessionToken,
		)
		logging.DebugContext(ctx, "Using static credentials for access key %s (session token: %q)",
			logging.MaskAccessKeyID(cfg.AccessKeyID),
			logging.RedactSensitiveValue("session_token", cfg.SessionToken))
		optFns = append(optFns, config.WithCredentialsProvider(provider))
	}

	awsCfg, err := loadAWSConfig(ctx, optFns...)
	if err != nil {
		return nil, &ConfigError{Message: "failed to load AWS config", Cause: err}
	}

	if awsCfg.Region == "" {
		return nil, &ConfigError{Message: "AWS region not specified (set AWS_REGION, aws.region in config, or pass --region)"}
	}

	return &AWSClients{
		S3:     s3.NewFromConfig(awsCfg),
		IAM:    iam.NewFromConfig(awsCfg),
		EC2:    ec2.NewFromConfig(awsCfg),
		STS:    sts.NewFromConfig(awsCfg),
		Config: awsCfg,
	}, nil
}

// GetRegion returns the configured AWS region
func (c *AWSClients) GetRegion() string {
	return c.Config.Region
}

// VerifyCredentials resolves the caller identity so that missing or expired
// credentials fail before any resource is created.
func (c *AWSClients) VerifyCredentials(ctx context.Context) (*CallerIdentity, error) {
	out, err := c.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, &ConfigError{
			Message: "AWS credentials are missing or invalid",
			Cause:   err,
			Hint:    "Configure credentials with 'aws configure', AWS_PROFILE, or AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY",
		}
	}

	return &CallerIdentity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
	}, nil
}

// String implements fmt.Stringer for log output.
func (id *CallerIdentity) String() string {
	return fmt.Sprintf("%s (account %s)", id.ARN, id.Account)
}
