// Package toolcheck verifies a local simulation toolchain the way the
// upstream install guide tells a human to: run each tool, capture what it
// prints, and compare against the expected banner text.
package toolcheck

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"runtime"

	"femcheck.openqed.org/internal/models"
)

// ErrNotFound indicates the probed executable is not installed or not on PATH.
var ErrNotFound = errors.New("executable not found")

// Check probes one piece of the toolchain.
type Check interface {
	Name() string
	Run(ctx context.Context, env Env) models.CheckResult
}

// Env carries what a check needs to probe the host system. LookPath is a
// field so tests can simulate missing binaries.
type Env struct {
	Logger   *slog.Logger
	GOOS     string
	GOARCH   string
	LookPath func(file string) (string, error)
}

// SystemEnv returns an Env describing the machine the process runs on.
func SystemEnv(logger *slog.Logger) Env {
	return Env{
		Logger:   logger,
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
		LookPath: exec.LookPath,
	}
}

// Platform returns the os/arch pair in the form reports use.
func (e Env) Platform() string {
	return e.GOOS + "/" + e.GOARCH
}
