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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config location at an empty temp dir so the
// developer's own config never leaks into tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "etc"))
	for _, env := range []string{"AWS_REGION", "AWS_DEFAULT_REGION", "AWS_PROFILE", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN"} {
		t.Setenv(env, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, "ova-ami-import", cfg.Import.BucketPrefix)
	assert.Equal(t, "vmimport", cfg.Import.RoleName)
	assert.Equal(t, "vmimport", cfg.Import.PolicyName)
	assert.Equal(t, 30*time.Second, cfg.Import.PollInterval)
	assert.Equal(t, 5, cfg.Import.MaxPollErrors)
	assert.Equal(t, 2*time.Minute, cfg.Import.RoleWaitTimeout)
	assert.Equal(t, 10*time.Second, cfg.Import.RolePropagationDelay)
	assert.Equal(t, time.Duration(0), cfg.Import.Timeout)
	assert.False(t, cfg.Import.CleanupOnFailure)
	assert.Equal(t, int64(64), cfg.Import.UploadPartSizeMB)
	assert.Equal(t, 5, cfg.Import.UploadConcurrency)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromXDGConfigHome(t *testing.T) {
	dir := isolate(t)

	cfgDir := filepath.Join(dir, ".config", AppName)
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	content := `
aws:
  region: eu-west-1
import:
  role_name: custom-import
  poll_interval: 5s
  tags:
    team: infra
`
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "custom-import", cfg.Import.RoleName)
	assert.Equal(t, 5*time.Second, cfg.Import.PollInterval)
	assert.Equal(t, map[string]string{"team": "infra"}, cfg.Import.Tags)
	assert.Equal(t, "vmimport", cfg.Import.PolicyName, "unset keys keep defaults")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("AWS_REGION", "ap-southeast-2")
	t.Setenv("OVAIMPORT_IMPORT_MAX_POLL_ERRORS", "9")
	t.Setenv("OVAIMPORT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", cfg.AWS.Region)
	assert.Equal(t, 9, cfg.Import.MaxPollErrors)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("import:\n  bucket_prefix: my-imports\n  cleanup_on_failure: true\n"), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "my-imports", cfg.Import.BucketPrefix)
	assert.True(t, cfg.Import.CleanupOnFailure)
}

func TestLoadFromPath_Missing(t *testing.T) {
	isolate(t)

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "."+AppName)
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("import: [unclosed"), 0o600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestDefault(t *testing.T) {
	isolate(t)

	cfg := Default()
	assert.Equal(t, "vmimport", cfg.Import.RoleName)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty prefix", mutate: func(c *Config) { c.Import.BucketPrefix = "" }, wantErr: "bucket_prefix"},
		{name: "empty role", mutate: func(c *Config) { c.Import.RoleName = "" }, wantErr: "role_name"},
		{name: "zero poll interval", mutate: func(c *Config) { c.Import.PollInterval = 0 }, wantErr: "poll_interval"},
		{name: "no poll errors allowed", mutate: func(c *Config) { c.Import.MaxPollErrors = 0 }, wantErr: "max_poll_errors"},
		{name: "negative timeout", mutate: func(c *Config) { c.Import.Timeout = -time.Second }, wantErr: "import.timeout"},
		{name: "tiny part size", mutate: func(c *Config) { c.Import.UploadPartSizeMB = 1 }, wantErr: "upload_part_size_mb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), "error %q should mention %q", err, tt.wantErr)
		})
	}
}

func TestGetConfigDirs(t *testing.T) {
	dir := isolate(t)

	dirs := GetConfigDirs()
	require.NotEmpty(t, dirs)
	assert.Equal(t, filepath.Join(dir, ".config", AppName), dirs[0])
	assert.Contains(t, dirs, filepath.Join(dir, "."+AppName))
}

func TestConfigFile_CreatesParentDirs(t *testing.T) {
	dir := isolate(t)

	path, err := ConfigFile("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".config", AppName, "config.yaml"), path)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
