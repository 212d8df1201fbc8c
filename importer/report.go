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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RunReport is the on-disk record of one import run. It is what
// "ovaimport cleanup --report" reads back.
type RunReport struct {
	Input      string           `yaml:"input"`
	Region     string           `yaml:"region,omitempty"`
	StartedAt  time.Time        `yaml:"started_at"`
	FinishedAt time.Time        `yaml:"finished_at"`
	Succeeded  bool             `yaml:"succeeded"`
	ImageID    string           `yaml:"image_id,omitempty"`
	TaskID     string           `yaml:"task_id,omitempty"`
	FailedStep string           `yaml:"failed_step,omitempty"`
	Error      string           `yaml:"error,omitempty"`
	CleanedUp  bool             `yaml:"cleaned_up,omitempty"`
	Created    CreatedResources `yaml:"created"`
}

// NewRunReport builds a report from the outcome of Importer.Run.
func NewRunReport(input string, started time.Time, result *Result, runErr error) *RunReport {
	report := &RunReport{
		Input:      input,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
	}

	if result != nil {
		report.Succeeded = runErr == nil
		report.Region = result.Region
		report.ImageID = result.ImageID
		report.TaskID = result.TaskID
		report.Created = result.Created
	}

	if runErr != nil {
		report.Error = runErr.Error()
		var perr *PipelineError
		if errors.As(runErr, &perr) {
			report.FailedStep = string(perr.Step)
			report.Created = perr.Created
			report.Region = perr.Created.Region
			report.TaskID = perr.Created.TaskID
			report.CleanedUp = perr.CleanedUp
		}
	}

	return report
}

// WriteReport writes report as YAML to path.
func WriteReport(path string, report *RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write run report %s: %w", path, err)
	}
	return nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run report %s: %w", path, err)
	}

	var report RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse run report %s: %w", path, err)
	}
	return &report, nil
}
