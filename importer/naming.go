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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DefaultBucketPrefix is used when no prefix is configured.
const DefaultBucketPrefix = "ova-ami-import"

const (
	maxBucketNameLength = 63
	randomSuffixBytes   = 4

	// Separator, 10-digit unix seconds, separator and 8 hex characters.
	bucketSuffixLength    = 1 + 10 + 1 + 2*randomSuffixBytes
	maxBucketPrefixLength = maxBucketNameLength - bucketSuffixLength
)

var invalidBucketChars = regexp.MustCompile(`[^a-z0-9-]+`)

// Namer generates names for per-run resources.
type Namer struct {
	Prefix string
	Now    func() time.Time
	Rand   io.Reader
}

// NewNamer creates a Namer using the wall clock and crypto/rand.
func NewNamer(prefix string) *Namer {
	return &Namer{Prefix: prefix, Now: time.Now, Rand: rand.Reader}
}

// BucketName returns "<prefix>-<unix seconds>-<8 hex chars>", lower-cased
// and trimmed to a valid S3 bucket name.
func (n *Namer) BucketName() string {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	ts := now()

	suffix := fmt.Sprintf("%d-%s", ts.Unix(), n.randomHex(ts))
	return BucketNamePrefix(n.Prefix) + "-" + suffix
}

// BucketNamePrefix returns the prefix every generated bucket name starts
// with: sanitized and cut short enough to leave room for the suffix. The
// import role's S3 permissions are scoped to the same value.
func BucketNamePrefix(prefix string) string {
	p := sanitizeBucketPrefix(prefix)
	if len(p) > maxBucketPrefixLength {
		p = strings.TrimRight(p[:maxBucketPrefixLength], "-")
	}
	return p
}

func (n *Namer) randomHex(ts time.Time) string {
	r := n.Rand
	if r == nil {
		r = rand.Reader
	}

	buf := make([]byte, randomSuffixBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Sprintf("%08x", uint32(ts.UnixNano()))
	}
	return hex.EncodeToString(buf)
}

func sanitizeBucketPrefix(prefix string) string {
	if prefix == "" {
		prefix = DefaultBucketPrefix
	}
	prefix = strings.ToLower(prefix)
	prefix = invalidBucketChars.ReplaceAllString(prefix, "-")
	prefix = strings.Trim(prefix, "-")
	if prefix == "" {
		return DefaultBucketPrefix
	}
	return prefix
}

// ObjectKey returns the S3 key an input file is uploaded under.
func ObjectKey(inputPath string) string {
	return filepath.Base(inputPath)
}
