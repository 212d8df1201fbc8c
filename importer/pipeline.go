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

	"github.com/cowdogmoo/ovaimport/logging"
)

// Step names a stage of the import pipeline.
type Step string

// Pipeline steps in execution order.
const (
	StepValidate    Step = "validate"
	StepCredentials Step = "credentials"
	StepBucket      Step = "bucket"
	StepRole        Step = "role"
	StepUpload      Step = "upload"
	StepLaunch      Step = "launch"
	StepMonitor     Step = "monitor"
)

const cleanupTimeout = 5 * time.Minute

// Options configures an Importer. Zero values fall back to defaults.
type Options struct {
	Region       string
	BucketPrefix string
	RoleName     string
	PolicyName   string
	Format       string
	Description  string
	Tags         map[string]string

	PollInterval         time.Duration
	MaxPollErrors        int
	RoleWaitTimeout      time.Duration
	RolePropagationDelay time.Duration
	// Timeout bounds the whole run; zero means no limit.
	Timeout time.Duration

	CleanupOnFailure  bool
	UploadPartSizeMB  int64
	UploadConcurrency int

	OnProgress ProgressFunc
}

// ProvisioningContext carries the identifiers produced by each step of
// one run.
type ProvisioningContext struct {
	BucketName string
	Region     string
	RoleName   string
	RoleARN    string
	ObjectKey  string
	TaskID     string
}

// Result is returned by a successful run.
type Result struct {
	ImageID  string           `yaml:"image_id" json:"image_id"`
	TaskID   string           `yaml:"task_id" json:"task_id"`
	Bucket   string           `yaml:"bucket" json:"bucket"`
	Key      string           `yaml:"key" json:"key"`
	Region   string           `yaml:"region" json:"region"`
	RoleName string           `yaml:"role_name" json:"role_name"`
	Duration time.Duration    `yaml:"duration" json:"duration"`
	Created  CreatedResources `yaml:"created" json:"created"`
}

// Importer runs the OVA to AMI pipeline.
type Importer struct {
	clients *AWSClients
	opts    Options

	namer *Namer
	sleep func(ctx context.Context, d time.Duration) error
}

// NewImporter creates an importer bound to clients.
func NewImporter(clients *AWSClients, opts Options) *Importer {
	if opts.BucketPrefix == "" {
		opts.BucketPrefix = DefaultBucketPrefix
	}
	if opts.RoleName == "" {
		opts.RoleName = DefaultRoleName
	}
	if opts.PolicyName == "" {
		opts.PolicyName = opts.RoleName
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxPollErrors <= 0 {
		opts.MaxPollErrors = DefaultMaxPollErrors
	}
	if opts.RoleWaitTimeout <= 0 {
		opts.RoleWaitTimeout = defaultRoleWaitTimeout
	}

	return &Importer{
		clients: clients,
		opts:    opts,
		namer:   NewNamer(opts.BucketPrefix),
		sleep:   sleepContext,
	}
}

// Run imports inputPath and returns the produced image. On failure the
// error is a *PipelineError listing what was created.
func (i *Importer) Run(ctx context.Context, inputPath string) (*Result, error) {
	start := time.Now()

	if i.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.opts.Timeout)
		defer cancel()
	}

	pc := &ProvisioningContext{Region: i.opts.Region}
	if pc.Region == "" {
		pc.Region = i.clients.GetRegion()
	}
	created := CreatedResources{Region: pc.Region}

	fail := func(step Step, err error) (*Result, error) {
		return nil, i.fail(ctx, step, created, err)
	}

	format, err := ValidateInput(inputPath, i.opts.Format)
	if err != nil {
		return fail(StepValidate, err)
	}

	identity, err := i.clients.VerifyCredentials(ctx)
	if err != nil {
		return fail(StepCredentials, err)
	}
	logging.InfoContext(ctx, "Using AWS identity %s in %s", identity, pc.Region)

	pc.BucketName = i.namer.BucketName()
	pc.ObjectKey = ObjectKey(inputPath)

	bucket, err := NewBucketProvisioner(i.clients.S3).Create(ctx, pc.BucketName, pc.Region)
	if err != nil {
		return fail(StepBucket, err)
	}
	if bucket.Created {
		created.Bucket = pc.BucketName
	}

	role, err := i.roleProvisioner().Ensure(ctx)
	if role != nil {
		pc.RoleName = role.RoleName
		pc.RoleARN = role.ARN
		if role.Created {
			created.RoleName = role.RoleName
			created.PolicyName = i.opts.PolicyName
		}
	}
	if err != nil {
		return fail(StepRole, err)
	}

	uploader := NewArtifactUploader(i.clients.S3, UploadOptions{
		PartSizeMB:  i.opts.UploadPartSizeMB,
		Concurrency: i.opts.UploadConcurrency,
	})
	if _, err := uploader.Upload(ctx, inputPath, pc.BucketName, pc.ObjectKey); err != nil {
		return fail(StepUpload, err)
	}
	if created.Bucket != "" {
		created.ObjectKey = pc.ObjectKey
	}

	description := i.opts.Description
	if description == "" {
		description = DefaultDescription(pc.ObjectKey)
	}
	taskID, err := NewTaskLauncher(i.clients.EC2).Launch(ctx, LaunchInput{
		Bucket:      pc.BucketName,
		Key:         pc.ObjectKey,
		Format:      format,
		Description: description,
		RoleName:    pc.RoleName,
		Tags:        i.opts.Tags,
	})
	if err != nil {
		return fail(StepLaunch, err)
	}
	pc.TaskID = taskID
	created.TaskID = taskID

	monitor := NewTaskMonitor(i.clients.EC2)
	monitor.PollInterval = i.opts.PollInterval
	monitor.MaxPollErrors = i.opts.MaxPollErrors
	monitor.OnProgress = i.opts.OnProgress

	imageID, err := monitor.Wait(ctx, NewImportTask(taskID))
	if err != nil {
		return fail(StepMonitor, err)
	}

	return &Result{
		ImageID:  imageID,
		TaskID:   pc.TaskID,
		Bucket:   pc.BucketName,
		Key:      pc.ObjectKey,
		Region:   pc.Region,
		RoleName: pc.RoleName,
		Duration: time.Since(start).Round(time.Second),
		Created:  created,
	}, nil
}

func (i *Importer) roleProvisioner() *RoleProvisioner {
	p := NewRoleProvisioner(i.clients.IAM)
	p.RoleName = i.opts.RoleName
	p.PolicyName = i.opts.PolicyName
	p.BucketPrefix = i.opts.BucketPrefix
	p.WaitTimeout = i.opts.RoleWaitTimeout
	p.PropagationDelay = i.opts.RolePropagationDelay
	p.sleep = i.sleep
	return p
}

// fail wraps err as a *PipelineError and, when configured, tears down what
// the run created. Cleanup runs on a context detached from cancellation so
// an interrupted run can still clean up.
func (i *Importer) fail(ctx context.Context, step Step, created CreatedResources, err error) error {
	perr := &PipelineError{Step: step, Created: created, Cause: err}

	if !i.opts.CleanupOnFailure || created.IsEmpty() {
		return perr
	}

	logging.WarnContext(ctx, "Import failed during %s step, cleaning up created resources", step)

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if cerr := NewResourceCleaner(i.clients).Cleanup(cleanupCtx, created); cerr != nil {
		perr.CleanupErr = fmt.Errorf("cleanup after failure: %w", cerr)
		return perr
	}

	perr.CleanedUp = true
	return perr
}
