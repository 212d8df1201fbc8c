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
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/cowdogmoo/ovaimport/logging"
)

// DefaultRoleName is the role name VM Import looks for by default.
const DefaultRoleName = "vmimport"

const defaultRoleWaitTimeout = 2 * time.Minute

// RoleResult describes the service role after Ensure.
type RoleResult struct {
	RoleName string
	ARN      string
	// Created is true when this call created the role.
	Created bool
}

// RoleProvisioner makes sure the VM Import service role exists.
type RoleProvisioner struct {
	client IAMAPI

	RoleName     string
	PolicyName   string
	BucketPrefix string

	// WaitTimeout bounds the RoleExists waiter after creation.
	WaitTimeout time.Duration
	// PropagationDelay is slept after the waiter succeeds; IAM can report
	// a role before VM Import is able to assume it.
	PropagationDelay time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// NewRoleProvisioner creates a role provisioner with default names.
func NewRoleProvisioner(client IAMAPI) *RoleProvisioner {
	return &RoleProvisioner{
		client:      client,
		RoleName:    DefaultRoleName,
		PolicyName:  DefaultRoleName,
		WaitTimeout: defaultRoleWaitTimeout,
		sleep:       sleepContext,
	}
}

// Ensure returns the existing role, or creates it with the trust and
// permission policies and waits for it to propagate.
func (p *RoleProvisioner) Ensure(ctx context.Context) (*RoleResult, error) {
	logging.InfoContext(ctx, "Checking for existing IAM role %s", p.RoleName)

	out, err := p.client.GetRole(ctx, &iam.GetRoleInput{
		RoleName: aws.String(p.RoleName),
	})
	if err == nil {
		arn := ""
		if out != nil && out.Role != nil {
			arn = aws.ToString(out.Role.Arn)
		}
		logging.InfoContext(ctx, "IAM role %s already exists, skipping creation", p.RoleName)
		return &RoleResult{RoleName: p.RoleName, ARN: arn}, nil
	}
	if !isNoSuchEntity(err) {
		return nil, WrapWithRemediation(err, "failed to check IAM role "+p.RoleName)
	}

	logging.InfoContext(ctx, "IAM role %s not found, creating it", p.RoleName)

	arn, created, err := p.create(ctx)
	if err != nil {
		if created {
			return &RoleResult{RoleName: p.RoleName, ARN: arn, Created: true}, err
		}
		return nil, err
	}

	if err := p.waitForPropagation(ctx); err != nil {
		// The role exists at this point; report it so it can be cleaned up.
		return &RoleResult{RoleName: p.RoleName, ARN: arn, Created: true}, err
	}

	logging.InfoContext(ctx, "IAM role %s is now available", p.RoleName)
	return &RoleResult{RoleName: p.RoleName, ARN: arn, Created: true}, nil
}

// create reports whether the role itself was created even when attaching
// the policy fails afterwards.
func (p *RoleProvisioner) create(ctx context.Context) (string, bool, error) {
	trust, err := TrustPolicy().JSON()
	if err != nil {
		return "", false, err
	}
	permissions, err := PermissionPolicy(p.BucketPrefix).JSON()
	if err != nil {
		return "", false, err
	}

	created, err := p.client.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(p.RoleName),
		AssumeRolePolicyDocument: aws.String(trust),
		Description:              aws.String("Service role for VM Import/Export"),
	})
	if err != nil {
		return "", false, WrapWithRemediation(err, "failed to create IAM role "+p.RoleName)
	}

	arn := ""
	if created != nil && created.Role != nil {
		arn = aws.ToString(created.Role.Arn)
	}
	logging.InfoContext(ctx, "IAM role %s created", p.RoleName)

	policyName := p.PolicyName
	if policyName == "" {
		policyName = p.RoleName
	}
	if _, err := p.client.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       aws.String(p.RoleName),
		PolicyName:     aws.String(policyName),
		PolicyDocument: aws.String(permissions),
	}); err != nil {
		return arn, true, WrapWithRemediation(err, "failed to attach policy "+policyName+" to role "+p.RoleName)
	}
	logging.InfoContext(ctx, "Policy %s attached to IAM role %s", policyName, p.RoleName)

	return arn, true, nil
}

func (p *RoleProvisioner) waitForPropagation(ctx context.Context) error {
	timeout := p.WaitTimeout
	if timeout <= 0 {
		timeout = defaultRoleWaitTimeout
	}

	logging.InfoContext(ctx, "Waiting for IAM role %s to propagate", p.RoleName)

	waiter := iam.NewRoleExistsWaiter(p.client)
	if err := waiter.Wait(ctx, &iam.GetRoleInput{RoleName: aws.String(p.RoleName)}, timeout); err != nil {
		return fmt.Errorf("IAM role %s did not become visible within %s: %w", p.RoleName, timeout, err)
	}

	if p.PropagationDelay > 0 {
		sleep := p.sleep
		if sleep == nil {
			sleep = sleepContext
		}
		logging.DebugContext(ctx, "Sleeping %s for role propagation", p.PropagationDelay)
		if err := sleep(ctx, p.PropagationDelay); err != nil {
			return fmt.Errorf("interrupted while waiting for role propagation: %w", err)
		}
	}

	return nil
}

// sleepContext sleeps for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
