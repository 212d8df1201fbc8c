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
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cowdogmoo/ovaimport/logging"
)

// UploadResult locates an uploaded artifact.
type UploadResult struct {
	Bucket   string
	Key      string
	Size     int64
	Location string
}

// ArtifactUploader streams local image files into S3.
type ArtifactUploader struct {
	uploader *manager.Uploader
}

// UploadOptions tunes the multipart upload. Zero values use the
// upload manager defaults.
type UploadOptions struct {
	PartSizeMB  int64
	Concurrency int
}

// NewArtifactUploader creates an uploader backed by the S3 upload manager.
func NewArtifactUploader(client S3API, opts UploadOptions) *ArtifactUploader {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if opts.PartSizeMB > 0 {
			u.PartSize = opts.PartSizeMB * 1024 * 1024
		}
		if u.PartSize < manager.MinUploadPartSize {
			u.PartSize = manager.MinUploadPartSize
		}
		if opts.Concurrency > 0 {
			u.Concurrency = opts.Concurrency
		}
	})
	return &ArtifactUploader{uploader: uploader}
}

// Upload streams path to bucket/key. A missing or unreadable file is a
// *ConfigError; transfer failures are returned as-is with a hint.
func (u *ArtifactUploader) Upload(ctx context.Context, path, bucket, key string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("cannot open input file %s", path), Cause: err}
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("cannot stat input file %s", path), Cause: err}
	}

	logging.InfoContext(ctx, "Uploading %s (%s) to s3://%s/%s", path, formatBytes(info.Size()), bucket, key)

	out, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return nil, WrapWithRemediation(err, fmt.Sprintf("failed to upload %s to bucket %s", key, bucket))
	}

	location := fmt.Sprintf("s3://%s/%s", bucket, key)
	if out != nil && out.Location != "" {
		location = out.Location
	}

	logging.InfoContext(ctx, "Uploaded %s to %s", key, location)

	return &UploadResult{
		Bucket:   bucket,
		Key:      key,
		Size:     info.Size(),
		Location: location,
	}, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
