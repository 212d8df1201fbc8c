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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cowdogmoo/ovaimport/logging"
)

// BucketResult contains the outcome of bucket creation.
type BucketResult struct {
	Name string
	// Created is false when an existing bucket owned by the caller was reused.
	Created bool
}

// BucketProvisioner creates the single-use bucket an image is staged in.
type BucketProvisioner struct {
	client S3API
}

// NewBucketProvisioner creates a new bucket provisioner.
func NewBucketProvisioner(client S3API) *BucketProvisioner {
	return &BucketProvisioner{client: client}
}

// Create creates the bucket in region. us-east-1 must not send a location
// constraint. A bucket the caller already owns is reused and reported with
// Created false; every other rejection is returned.
func (p *BucketProvisioner) Create(ctx context.Context, name, region string) (*BucketResult, error) {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}

	logging.InfoContext(ctx, "Creating S3 bucket %s in %s", name, region)

	if _, err := p.client.CreateBucket(ctx, input); err != nil {
		if isBucketAlreadyOwnedByYou(err) {
			logging.WarnContext(ctx, "Bucket %s already exists and is owned by you, reusing it (it will not be deleted on cleanup)", name)
			return &BucketResult{Name: name}, nil
		}
		return nil, WrapWithRemediation(err, "failed to create bucket "+name)
	}

	return &BucketResult{Name: name, Created: true}, nil
}
