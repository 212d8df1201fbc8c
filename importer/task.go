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
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Phase is the overall state of an import task.
type Phase string

const (
	// PhaseSubmitted means the task was accepted but not yet observed.
	PhaseSubmitted Phase = "Submitted"
	// PhaseActive means the conversion service is working on the task.
	PhaseActive Phase = "Active"
	// PhaseCompleted means an image was produced.
	PhaseCompleted Phase = "Completed"
	// PhaseFailed means the conversion service gave up on the task.
	PhaseFailed Phase = "Failed"
	// PhaseCancelled means the task was cancelled or deleted.
	PhaseCancelled Phase = "Cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed || p == PhaseCancelled
}

// TaskStatus is one observation of a remote import task.
type TaskStatus struct {
	Status        string
	StatusMessage string
	Progress      string
	ImageID       string
}

// statusFromEC2 extracts the fields the monitor cares about.
func statusFromEC2(t ec2types.ImportImageTask) TaskStatus {
	return TaskStatus{
		Status:        aws.ToString(t.Status),
		StatusMessage: aws.ToString(t.StatusMessage),
		Progress:      aws.ToString(t.Progress),
		ImageID:       aws.ToString(t.ImageId),
	}
}

// ImportTask tracks the single import task of a run. The ID never changes
// and the phase never leaves a terminal state.
type ImportTask struct {
	id            string
	phase         Phase
	subPhase      string
	progress      string
	imageID       string
	status        string
	statusMessage string
}

// NewImportTask creates a task in the Submitted phase.
func NewImportTask(id string) *ImportTask {
	return &ImportTask{id: id, phase: PhaseSubmitted}
}

// ID returns the remote task identifier.
func (t *ImportTask) ID() string { return t.id }

// Phase returns the current phase.
func (t *ImportTask) Phase() Phase { return t.phase }

// SubPhase returns the provider's free-text stage label, for display only.
func (t *ImportTask) SubPhase() string { return t.subPhase }

// Progress returns the provider's progress string (a percentage on AWS).
func (t *ImportTask) Progress() string { return t.progress }

// ImageID returns the produced image ID once Completed.
func (t *ImportTask) ImageID() string { return t.imageID }

// Status returns the last raw provider status.
func (t *ImportTask) Status() string { return t.status }

// StatusMessage returns the last provider status message.
func (t *ImportTask) StatusMessage() string { return t.statusMessage }

// Apply folds an observation into the task and returns true when the
// phase or sub-phase changed. Observations after a terminal phase are
// ignored.
func (t *ImportTask) Apply(s TaskStatus) bool {
	if t.phase.IsTerminal() {
		return false
	}

	next, known := classifyStatus(s.Status, s.StatusMessage)
	if next == PhaseCompleted && s.ImageID == "" {
		next = PhaseFailed
		if s.StatusMessage == "" {
			s.StatusMessage = "task completed without an image ID"
		}
	}

	subPhase := s.StatusMessage
	if !known && subPhase == "" {
		subPhase = s.Status
	}
	changed := next != t.phase || subPhase != t.subPhase

	t.phase = next
	t.subPhase = subPhase
	t.status = s.Status
	t.statusMessage = s.StatusMessage
	t.progress = s.Progress
	if next == PhaseCompleted {
		t.imageID = s.ImageID
	}

	return changed
}

// classifyStatus maps a provider status onto a Phase. The second result is
// false for statuses this mapping does not recognize; those count as Active.
func classifyStatus(status, message string) (Phase, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		return PhaseCompleted, true
	case "active", "pending", "":
		return PhaseActive, true
	case "deleting", "deleted", "cancelling", "cancelled":
		if messageReportsError(message) {
			return PhaseFailed, true
		}
		return PhaseCancelled, true
	case "failed", "error":
		return PhaseFailed, true
	default:
		return PhaseActive, false
	}
}

// messageReportsError detects failures AWS reports through a deleted task,
// e.g. "ClientError: Disk validation failed".
func messageReportsError(message string) bool {
	if message == "" {
		return false
	}
	if strings.HasPrefix(message, "ClientError") || strings.HasPrefix(message, "ServerError") {
		return true
	}
	lower := strings.ToLower(message)
	return strings.Contains(lower, "fail") || strings.Contains(lower, "error")
}
