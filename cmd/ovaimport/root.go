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

// Package main implements the ovaimport CLI, which turns OVA and related VM
// disk images into Amazon Machine Images through EC2 VM Import.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cowdogmoo/ovaimport/config"
	"github.com/cowdogmoo/ovaimport/logging"
)

// Context key type for storing config
type configKeyType struct{}

var (
	// configKey is the context key for storing the config
	configKey = configKeyType{}

	// Root command options
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "ovaimport",
	Short: "ovaimport - Convert OVA images into AWS AMIs",
	Long: `ovaimport converts an on-premises virtual machine image (OVA, VMDK, VHD, VHDX or RAW)
into an Amazon Machine Image. It creates a staging S3 bucket, makes sure the VM Import
service role exists, uploads the image, starts an EC2 import task and waits for the AMI.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is $HOME/.config/ovaimport/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json, color)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Quiet mode - only show errors")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose mode - show debug output")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// configFromContext retrieves the config from the command context.
// Returns nil if no config is stored in context.
func configFromContext(cmd *cobra.Command) *config.Config {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	return nil
}

// initConfig initializes configuration with proper precedence:
// CLI Flags > Environment Variables > Config File > Defaults
func initConfig(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		path, expandErr := config.ExpandPath(cfgFile)
		if expandErr != nil {
			return expandErr
		}
		cfg, err = config.LoadFromPath(path)
		if err != nil {
			return err
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			logging.WarnContext(cmd.Context(), "failed to load config, using defaults: %v", err)
			cfg = config.Default()
		}
	}

	v := viper.New()

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindGlobalFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return err
	}

	logLevel := v.GetString("log.level")
	logFormat := v.GetString("log.format")
	quiet := v.GetBool("quiet")
	verbose := v.GetBool("verbose")

	logger := logging.NewCustomLoggerWithOptions(logLevel, logFormat, quiet, verbose)
	logger.ConsoleWriter = cmd.ErrOrStderr()
	logger.ResultWriter = cmd.OutOrStdout()

	cfg.Log.Level = logLevel
	cfg.Log.Format = logFormat

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx := context.WithValue(parent, configKey, cfg)
	ctx = logging.WithLogger(ctx, logger)
	cmd.SetContext(ctx)

	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which subcommands use for
// cancellation.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// globalFlagKeys maps persistent flags to the Viper keys initConfig reads.
// Each key can also be set through the environment, e.g. OVAIMPORT_QUIET.
var globalFlagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"quiet":      "quiet",
	"verbose":    "verbose",
}

// bindGlobalFlags binds the persistent flags in flags to their Viper keys.
// Flags missing from the set are skipped.
func bindGlobalFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range globalFlagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind %s flag: %w", name, err)
		}
	}
	return nil
}
