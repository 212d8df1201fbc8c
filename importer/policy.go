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
	"encoding/json"
	"fmt"
)

const (
	policyVersion = "2012-10-17"

	// VMImportPrincipal is the service principal that assumes the import role.
	VMImportPrincipal = "vmie.amazonaws.com"

	// VMImportExternalID is the external ID VM Import presents when assuming the role.
	VMImportExternalID = "vmimport"
)

// PolicyDocument is an IAM policy body.
type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

// PolicyStatement is a single statement of a PolicyDocument.
type PolicyStatement struct {
	Effect    string                       `json:"Effect"`
	Principal map[string]string            `json:"Principal,omitempty"`
	Action    []string                     `json:"Action"`
	Resource  []string                     `json:"Resource,omitempty"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

// TrustPolicy allows only the VM Import service to assume the role.
func TrustPolicy() PolicyDocument {
	return PolicyDocument{
		Version: policyVersion,
		Statement: []PolicyStatement{
			{
				Effect:    "Allow",
				Principal: map[string]string{"Service": VMImportPrincipal},
				Action:    []string{"sts:AssumeRole"},
				Condition: map[string]map[string]string{
					"StringEquals": {"sts:ExternalId": VMImportExternalID},
				},
			},
		},
	}
}

// PermissionPolicy grants the role read access to every bucket created with
// bucketPrefix and the EC2 actions needed to register the resulting image.
func PermissionPolicy(bucketPrefix string) PolicyDocument {
	prefix := BucketNamePrefix(bucketPrefix)

	return PolicyDocument{
		Version: policyVersion,
		Statement: []PolicyStatement{
			{
				Effect: "Allow",
				Action: []string{
					"s3:GetBucketLocation",
					"s3:GetObject",
					"s3:ListBucket",
					"s3:PutObject",
					"s3:GetBucketAcl",
				},
				Resource: []string{
					fmt.Sprintf("arn:aws:s3:::%s-*", prefix),
					fmt.Sprintf("arn:aws:s3:::%s-*/*", prefix),
				},
			},
			{
				Effect: "Allow",
				Action: []string{
					"ec2:ModifySnapshotAttribute",
					"ec2:CopySnapshot",
					"ec2:RegisterImage",
					"ec2:Describe*",
				},
				Resource: []string{"*"},
			},
		},
	}
}

// JSON renders the document as the string IAM expects.
func (d PolicyDocument) JSON() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to marshal policy document: %w", err)
	}
	return string(data), nil
}
