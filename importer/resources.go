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
	"fmt"
)

// CreatedResources tracks the remote resources a run created so they can
// be reported, or torn down, after a failure.
type CreatedResources struct {
	Region    string `yaml:"region,omitempty" json:"region,omitempty"`
	Bucket    string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	ObjectKey string `yaml:"object_key,omitempty" json:"object_key,omitempty"`
	// RoleName is only set when the run created the role.
	RoleName   string `yaml:"role_name,omitempty" json:"role_name,omitempty"`
	PolicyName string `yaml:"policy_name,omitempty" json:"policy_name,omitempty"`
	TaskID     string `yaml:"task_id,omitempty" json:"task_id,omitempty"`
}

// IsEmpty reports whether nothing was created.
func (r CreatedResources) IsEmpty() bool {
	return r.Bucket == "" && r.ObjectKey == "" && r.RoleName == "" && r.TaskID == ""
}

// List returns a human-readable line per resource, in creation order.
func (r CreatedResources) List() []string {
	var out []string
	if r.Bucket != "" {
		out = append(out, fmt.Sprintf("S3 bucket: %s", r.Bucket))
	}
	if r.Bucket != "" && r.ObjectKey != "" {
		out = append(out, fmt.Sprintf("S3 object: s3://%s/%s", r.Bucket, r.ObjectKey))
	}
	if r.RoleName != "" {
		out = append(out, fmt.Sprintf("IAM role: %s", r.RoleName))
	}
	if r.TaskID != "" {
		out = append(out, fmt.Sprintf("Import task: %s", r.TaskID))
	}
	return out
}
