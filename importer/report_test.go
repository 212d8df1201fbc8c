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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunReport_Success(t *testing.T) {
	started := time.Now().Add(-time.Minute)
	result := &Result{
		ImageID: testImageID,
		TaskID:  "import-ami-1",
		Region:  "eu-west-1",
		Created: CreatedResources{Region: "eu-west-1", Bucket: "b", ObjectKey: "demo.ova", TaskID: "import-ami-1"},
	}

	report := NewRunReport("demo.ova", started, result, nil)
	assert.True(t, report.Succeeded)
	assert.Equal(t, testImageID, report.ImageID)
	assert.Equal(t, "eu-west-1", report.Region)
	assert.Empty(t, report.FailedStep)
	assert.Equal(t, "b", report.Created.Bucket)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestNewRunReport_Failure(t *testing.T) {
	perr := &PipelineError{
		Step:      StepLaunch,
		Created:   CreatedResources{Region: "us-east-1", Bucket: "b", ObjectKey: "demo.ova"},
		Cause:     errors.New("InvalidParameter"),
		CleanedUp: true,
	}

	report := NewRunReport("demo.ova", time.Now(), nil, perr)
	assert.False(t, report.Succeeded)
	assert.Equal(t, "launch", report.FailedStep)
	assert.Equal(t, "us-east-1", report.Region)
	assert.True(t, report.CleanedUp)
	assert.Contains(t, report.Error, "InvalidParameter")
	assert.Equal(t, "b", report.Created.Bucket)
}

func TestWriteAndReadReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	report := &RunReport{
		Input:      "demo.ova",
		Region:     "us-east-1",
		StartedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt: time.Date(2025, 1, 2, 3, 34, 5, 0, time.UTC),
		FailedStep: "monitor",
		Error:      "monitor step failed: boom",
		Created: CreatedResources{
			Region:     "us-east-1",
			Bucket:     "ova-ami-import-1700000000-deadbeef",
			ObjectKey:  "demo.ova",
			RoleName:   "vmimport",
			PolicyName: "vmimport",
			TaskID:     "import-ami-1",
		},
	}

	require.NoError(t, WriteReport(path, report))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bucket: ova-ami-import-1700000000-deadbeef")

	got, err := ReadReport(path)
	require.NoError(t, err)
	assert.Equal(t, report.Created, got.Created)
	assert.True(t, report.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, "monitor", got.FailedStep)
}

func TestReadReport_Errors(t *testing.T) {
	_, err := ReadReport(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("created: [unterminated"), 0o600))
	_, err = ReadReport(bad)
	assert.Error(t, err)
}
