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
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/cowdogmoo/ovaimport/logging"
)

const (
	// DefaultPollInterval is how often import task status is checked.
	DefaultPollInterval = 30 * time.Second
	// DefaultMaxPollErrors is how many consecutive status errors are tolerated.
	DefaultMaxPollErrors = 5
)

// errTaskNotFound is returned by Describe when the response does not
// contain the task. It is retried like a transport error.
var errTaskNotFound = errors.New("import task not found in response")

// ProgressFunc observes every successful poll.
type ProgressFunc func(task *ImportTask)

// TaskMonitor polls an import task until it reaches a terminal phase.
type TaskMonitor struct {
	client EC2API

	PollInterval  time.Duration
	MaxPollErrors int
	OnProgress    ProgressFunc
}

// NewTaskMonitor creates a monitor with default polling settings.
func NewTaskMonitor(client EC2API) *TaskMonitor {
	return &TaskMonitor{
		client:        client,
		PollInterval:  DefaultPollInterval,
		MaxPollErrors: DefaultMaxPollErrors,
	}
}

// Describe fetches the current status of a task once.
func (m *TaskMonitor) Describe(ctx context.Context, taskID string) (TaskStatus, error) {
	out, err := m.client.DescribeImportImageTasks(ctx, &ec2.DescribeImportImageTasksInput{
		ImportTaskIds: []string{taskID},
	})
	if err != nil {
		return TaskStatus{}, err
	}
	if out == nil {
		return TaskStatus{}, errTaskNotFound
	}

	for _, t := range out.ImportImageTasks {
		if t.ImportTaskId == nil || *t.ImportTaskId == taskID {
			return statusFromEC2(t), nil
		}
	}
	return TaskStatus{}, errTaskNotFound
}

// monitorState holds state during the wait loop
type monitorState struct {
	startTime         time.Time
	consecutiveErrors int
	lastErr           error
}

// Wait polls task until it is terminal and returns the produced image ID.
// Failed and Cancelled tasks return *TaskFailedError; running out of poll
// retries returns *PollError.
func (m *TaskMonitor) Wait(ctx context.Context, task *ImportTask) (string, error) {
	interval := m.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	logging.InfoContext(ctx, "Monitoring import task %s (polling every %s)", task.ID(), interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	state := &monitorState{startTime: time.Now()}

	for {
		done, err := m.processTick(ctx, task, state)
		if err != nil {
			return "", err
		}
		if done {
			return m.handleTerminal(ctx, task, state)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled while waiting for import task %s: %w", task.ID(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// processTick performs one poll. It returns true once the task is terminal.
func (m *TaskMonitor) processTick(ctx context.Context, task *ImportTask, state *monitorState) (bool, error) {
	status, err := m.Describe(ctx, task.ID())
	if err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("context cancelled while waiting for import task %s: %w", task.ID(), ctx.Err())
		}
		return false, m.recordPollError(ctx, task, state, err)
	}
	state.consecutiveErrors = 0
	state.lastErr = nil

	if _, known := classifyStatus(status.Status, status.StatusMessage); !known {
		logging.WarnContext(ctx, "Unrecognized import task status %q, treating it as active", status.Status)
	}

	changed := task.Apply(status)
	m.logProgress(ctx, task, time.Since(state.startTime).Round(time.Second), changed)

	if m.OnProgress != nil {
		m.OnProgress(task)
	}

	return task.Phase().IsTerminal(), nil
}

func (m *TaskMonitor) recordPollError(ctx context.Context, task *ImportTask, state *monitorState, err error) error {
	maxErrors := m.MaxPollErrors
	if maxErrors <= 0 {
		maxErrors = DefaultMaxPollErrors
	}

	state.consecutiveErrors++
	state.lastErr = err

	if state.consecutiveErrors >= maxErrors {
		return &PollError{TaskID: task.ID(), MaxAttempts: maxErrors, Cause: err}
	}

	logging.WarnContext(ctx, "Failed to get status of import task %s (attempt %d/%d): %v",
		task.ID(), state.consecutiveErrors, maxErrors, err)
	return nil
}

// logProgress logs phase changes at info and repeated statuses at debug.
func (m *TaskMonitor) logProgress(ctx context.Context, task *ImportTask, elapsed time.Duration, changed bool) {
	stage := string(task.Phase())
	if task.SubPhase() != "" {
		stage = fmt.Sprintf("%s (%s)", stage, task.SubPhase())
	}
	if task.Progress() != "" {
		stage = fmt.Sprintf("%s %s%%", stage, task.Progress())
	}

	if changed {
		logging.InfoContext(ctx, "Import task %s: %s (elapsed: %s)", task.ID(), stage, elapsed)
		return
	}
	logging.DebugContext(ctx, "Import task %s: %s (elapsed: %s)", task.ID(), stage, elapsed)
}

func (m *TaskMonitor) handleTerminal(ctx context.Context, task *ImportTask, state *monitorState) (string, error) {
	elapsed := time.Since(state.startTime).Round(time.Second)

	if task.Phase() == PhaseCompleted {
		logging.InfoContext(ctx, "Import task %s completed in %s: %s", task.ID(), elapsed, task.ImageID())
		return task.ImageID(), nil
	}

	return "", &TaskFailedError{
		TaskID:        task.ID(),
		Phase:         task.Phase(),
		Status:        task.Status(),
		StatusMessage: task.StatusMessage(),
	}
}
