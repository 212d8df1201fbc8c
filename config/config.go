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

// Package config loads ovaimport settings from defaults, an optional YAML
// file, and environment variables using viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for ovaimport environment variables,
// e.g. OVAIMPORT_IMPORT_ROLE_NAME.
const EnvPrefix = "OVAIMPORT"

// Config represents the global ovaimport configuration
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	AWS    AWSConfig    `mapstructure:"aws" yaml:"aws"`
	Import ImportConfig `mapstructure:"import" yaml:"import"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AWSConfig holds AWS credentials and location. Empty values fall through
// to the SDK's default credential and region chain.
type AWSConfig struct {
	Region          string `mapstructure:"region" yaml:"region"`
	Profile         string `mapstructure:"profile" yaml:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token" yaml:"session_token"`
}

// ImportConfig holds the settings of the import pipeline.
type ImportConfig struct {
	BucketPrefix         string            `mapstructure:"bucket_prefix" yaml:"bucket_prefix"`
	RoleName             string            `mapstructure:"role_name" yaml:"role_name"`
	PolicyName           string            `mapstructure:"policy_name" yaml:"policy_name"`
	DiskFormat           string            `mapstructure:"disk_format" yaml:"disk_format"`
	Description          string            `mapstructure:"description" yaml:"description"`
	PollInterval         time.Duration     `mapstructure:"poll_interval" yaml:"poll_interval"`
	MaxPollErrors        int               `mapstructure:"max_poll_errors" yaml:"max_poll_errors"`
	RoleWaitTimeout      time.Duration     `mapstructure:"role_wait_timeout" yaml:"role_wait_timeout"`
	RolePropagationDelay time.Duration     `mapstructure:"role_propagation_delay" yaml:"role_propagation_delay"`
	Timeout              time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	CleanupOnFailure     bool              `mapstructure:"cleanup_on_failure" yaml:"cleanup_on_failure"`
	UploadPartSizeMB     int64             `mapstructure:"upload_part_size_mb" yaml:"upload_part_size_mb"`
	UploadConcurrency    int               `mapstructure:"upload_concurrency" yaml:"upload_concurrency"`
	Tags                 map[string]string `mapstructure:"tags" yaml:"tags"`
}

// Load reads the first config.yaml found in the config directories.
// Returns a Config with defaults if no config file exists.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range GetConfigDirs() {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return unmarshal(v)
}

// Default returns the configuration made of defaults and environment only.
func Default() *Config {
	cfg, err := unmarshal(newViper())
	if err != nil {
		return &Config{}
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	// Empty = AWS SDK default chain
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.profile", "")

	v.SetDefault("import.bucket_prefix", "ova-ami-import")
	v.SetDefault("import.role_name", "vmimport")
	v.SetDefault("import.policy_name", "vmimport")
	v.SetDefault("import.disk_format", "")
	v.SetDefault("import.description", "")
	v.SetDefault("import.poll_interval", 30*time.Second)
	v.SetDefault("import.max_poll_errors", 5)
	v.SetDefault("import.role_wait_timeout", 2*time.Minute)
	v.SetDefault("import.role_propagation_delay", 10*time.Second)
	v.SetDefault("import.timeout", time.Duration(0))
	v.SetDefault("import.cleanup_on_failure", false)
	v.SetDefault("import.upload_part_size_mb", 64)
	v.SetDefault("import.upload_concurrency", 5)
}

// bindEnvVars binds the standard AWS_ variables next to the OVAIMPORT_ ones.
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("aws.region", "OVAIMPORT_AWS_REGION", "AWS_REGION", "AWS_DEFAULT_REGION")
	_ = v.BindEnv("aws.profile", "OVAIMPORT_AWS_PROFILE", "AWS_PROFILE")
	_ = v.BindEnv("aws.access_key_id", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("aws.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("aws.session_token", "AWS_SESSION_TOKEN")

	for _, key := range []string{
		"log.level",
		"log.format",
		"import.bucket_prefix",
		"import.role_name",
		"import.policy_name",
		"import.disk_format",
		"import.description",
		"import.poll_interval",
		"import.max_poll_errors",
		"import.role_wait_timeout",
		"import.role_propagation_delay",
		"import.timeout",
		"import.cleanup_on_failure",
		"import.upload_part_size_mb",
		"import.upload_concurrency",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	var problems []string

	if c.Import.BucketPrefix == "" {
		problems = append(problems, "import.bucket_prefix cannot be empty")
	}
	if c.Import.RoleName == "" {
		problems = append(problems, "import.role_name cannot be empty")
	}
	if c.Import.PolicyName == "" {
		problems = append(problems, "import.policy_name cannot be empty")
	}
	if c.Import.PollInterval <= 0 {
		problems = append(problems, "import.poll_interval must be positive")
	}
	if c.Import.MaxPollErrors < 1 {
		problems = append(problems, "import.max_poll_errors must be at least 1")
	}
	if c.Import.RoleWaitTimeout < 0 || c.Import.RolePropagationDelay < 0 {
		problems = append(problems, "import.role_wait_timeout and import.role_propagation_delay must not be negative")
	}
	if c.Import.Timeout < 0 {
		problems = append(problems, "import.timeout must not be negative")
	}
	if c.Import.UploadPartSizeMB < 5 {
		problems = append(problems, "import.upload_part_size_mb must be at least 5")
	}
	if c.Import.UploadConcurrency < 1 {
		problems = append(problems, "import.upload_concurrency must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
