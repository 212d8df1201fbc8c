//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/l50/goutils/v2/git"

	// mage utility functions
	"github.com/magefile/mage/sh"
)

type compileParams struct {
	GOOS    string
	GOARCH  string
	Version string
}

func (p *compileParams) populateFromEnv() {
	if p.GOOS == "" {
		p.GOOS = os.Getenv("GOOS")
		if p.GOOS == "" {
			p.GOOS = runtime.GOOS
		}
	}

	if p.GOARCH == "" {
		p.GOARCH = os.Getenv("GOARCH")
		if p.GOARCH == "" {
			p.GOARCH = runtime.GOARCH
		}
	}

	if p.Version == "" {
		p.Version = os.Getenv("VERSION")
		if p.Version == "" {
			p.Version = "dev"
		}
	}
}

// ldflags stamps the version variables read by "ovaimport version".
func (p *compileParams) ldflags() string {
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "none"
	}

	return strings.Join([]string{
		"-s", "-w",
		"-X main.version=" + p.Version,
		"-X main.commit=" + strings.TrimSpace(commit),
		"-X main.date=" + time.Now().UTC().Format(time.RFC3339),
	}, " ")
}

// Compile builds the ovaimport binary into bin/. GOOS, GOARCH and
// VERSION are taken from the environment and default to the host
// platform and "dev".
//
// Example usage:
//
// ```go
// mage compile
// GOOS=linux GOARCH=arm64 VERSION=v0.2.0 mage compile
// ```
func Compile() error {
	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	var p compileParams
	p.populateFromEnv()

	out := filepath.Join("bin", fmt.Sprintf("ovaimport-%s-%s", p.GOOS, p.GOARCH))
	fmt.Printf("Compiling the ovaimport binary for %s/%s, please wait.\n", p.GOOS, p.GOARCH)

	env := map[string]string{"GOOS": p.GOOS, "GOARCH": p.GOARCH, "CGO_ENABLED": "0"}
	if err := sh.RunWithV(env, "go", "build", "-trimpath", "-ldflags", p.ldflags(), "-o", out, "./cmd/ovaimport"); err != nil {
		return fmt.Errorf("go build failed: %v", err)
	}
	return nil
}

func changeToRepoRoot() (originalCwd string, err error) {
	repoRoot, err := git.RepoRoot()
	if err != nil {
		return "", fmt.Errorf("failed to get repo root: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}

	if cwd != repoRoot {
		if err := os.Chdir(repoRoot); err != nil {
			return "", fmt.Errorf("failed to change directory to repo root: %v", err)
		}
	}

	return cwd, nil
}

// RunTests executes all unit tests with the race detector.
//
// Example usage:
//
// ```go
// mage runtests
// ```
func RunTests() error {
	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	fmt.Println("Running unit tests.")
	if err := sh.RunV("go", "test", "-race", "-count=1", "./..."); err != nil {
		return fmt.Errorf("failed to run unit tests: %v", err)
	}
	return nil
}
