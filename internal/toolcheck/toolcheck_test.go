package toolcheck

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"femcheck.openqed.org/internal/manifest"
	"femcheck.openqed.org/internal/models"
)

// fakeTool writes an executable script that prints the given output and
// exits with the given code, standing in for an installed tool.
func fakeTool(t *testing.T, output string, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}

	script := fmt.Sprintf("#!/bin/sh\ncat <<'EOF'\n%s\nEOF\nexit %d\n", output, exitCode)
	path := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testEnv() Env {
	return Env{
		Logger: slog.Default(),
		GOOS:   runtime.GOOS,
		GOARCH: runtime.GOARCH,
		LookPath: func(file string) (string, error) {
			return "", fmt.Errorf("%s: not on test PATH", file)
		},
	}
}

func TestBannerMatch(t *testing.T) {
	banner := "ElmerGrid about to read your mesh\n...\nThank you for using Elmergrid!"
	// ElmerGrid exits non-zero without arguments; the banner still counts.
	path := fakeTool(t, banner, 9)

	check := New(manifest.Tool{
		Name:    manifest.CheckElmerGrid,
		Command: "ElmerGrid",
		Path:    path,
		Banner:  manifest.ElmerGridBannerFragment,
		Timeout: 5 * time.Second,
	})

	result := check.Run(context.Background(), testEnv())
	assert.Equal(t, models.StatusPass, result.Status)
	assert.Contains(t, result.Detail, "banner matched")
	assert.Contains(t, result.Output, "Thank you for using Elmergrid!")
}

func TestBannerMismatch(t *testing.T) {
	path := fakeTool(t, "ELMER SOLVER stopped: no input file", 1)

	check := New(manifest.Tool{
		Name:    manifest.CheckElmerSolver,
		Command: "ElmerSolver",
		Path:    path,
		Banner:  manifest.ElmerSolverBannerFragment,
		Timeout: 5 * time.Second,
	})

	result := check.Run(context.Background(), testEnv())
	assert.Equal(t, models.StatusFail, result.Status)
	assert.Contains(t, result.Detail, "output does not contain")
}

func TestVersionProbe(t *testing.T) {
	t.Run("satisfies constraint", func(t *testing.T) {
		path := fakeTool(t, "4.11.1", 0)
		check := New(manifest.Tool{
			Name:       manifest.CheckGmshBinary,
			Command:    "gmsh",
			Path:       path,
			Args:       []string{"--version"},
			MinVersion: ">= 4.0.0",
			Timeout:    5 * time.Second,
		})

		result := check.Run(context.Background(), testEnv())
		assert.Equal(t, models.StatusPass, result.Status)
		assert.Equal(t, "4.11.1", result.Version)
	})

	t.Run("below constraint", func(t *testing.T) {
		path := fakeTool(t, "3.0.6", 0)
		check := New(manifest.Tool{
			Name:       manifest.CheckGmshBinary,
			Command:    "gmsh",
			Path:       path,
			Args:       []string{"--version"},
			MinVersion: ">= 4.0.0",
			Timeout:    5 * time.Second,
		})

		result := check.Run(context.Background(), testEnv())
		assert.Equal(t, models.StatusFail, result.Status)
		assert.Contains(t, result.Detail, "does not satisfy")
	})

	t.Run("unparseable output", func(t *testing.T) {
		path := fakeTool(t, "no numbers here", 0)
		check := New(manifest.Tool{
			Name:       manifest.CheckGmshBinary,
			Command:    "gmsh",
			Path:       path,
			MinVersion: ">= 4.0.0",
			Timeout:    5 * time.Second,
		})

		result := check.Run(context.Background(), testEnv())
		assert.Equal(t, models.StatusFail, result.Status)
		assert.Contains(t, result.Detail, "could not parse a version")
	})
}

func TestExitOnlyProbe(t *testing.T) {
	t.Run("clean exit passes", func(t *testing.T) {
		path := fakeTool(t, "", 0)
		check := New(manifest.Tool{
			Name:     manifest.CheckGmshPython,
			Command:  "python3",
			Path:     path,
			Args:     []string{"-c", "import gmsh"},
			ExitOnly: true,
			Timeout:  5 * time.Second,
		})

		result := check.Run(context.Background(), testEnv())
		assert.Equal(t, models.StatusPass, result.Status)
		assert.Contains(t, result.Detail, "exited cleanly")
	})

	t.Run("import error fails", func(t *testing.T) {
		path := fakeTool(t, "ModuleNotFoundError: No module named 'gmsh'", 1)
		check := New(manifest.Tool{
			Name:     manifest.CheckGmshPython,
			Command:  "python3",
			Path:     path,
			Args:     []string{"-c", "import gmsh"},
			ExitOnly: true,
			Timeout:  5 * time.Second,
		})

		result := check.Run(context.Background(), testEnv())
		assert.Equal(t, models.StatusFail, result.Status)
		assert.Contains(t, result.Output, "ModuleNotFoundError")
	})
}

func TestMissingBinary(t *testing.T) {
	check := New(manifest.Tool{
		Name:    manifest.CheckElmerGrid,
		Command: "ElmerGrid",
		Banner:  manifest.ElmerGridBannerFragment,
	})

	result := check.Run(context.Background(), testEnv())
	assert.Equal(t, models.StatusFail, result.Status)
	assert.Contains(t, result.Detail, "ElmerGrid not found on PATH")
}

func TestPinnedPathMissing(t *testing.T) {
	check := New(manifest.Tool{
		Name:    manifest.CheckElmerGrid,
		Command: "ElmerGrid",
		Path:    filepath.Join(t.TempDir(), "does-not-exist"),
		Banner:  manifest.ElmerGridBannerFragment,
	})

	result := check.Run(context.Background(), testEnv())
	assert.Equal(t, models.StatusFail, result.Status)
}

func TestProbeTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nsleep 10\n"), 0o755))

	check := New(manifest.Tool{
		Name:    manifest.CheckElmerSolver,
		Command: "ElmerSolver",
		Path:    path,
		Banner:  manifest.ElmerSolverBannerFragment,
		Timeout: 100 * time.Millisecond,
	})

	start := time.Now()
	result := check.Run(context.Background(), testEnv())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, models.StatusFail, result.Status)
	// A hang reads as a timeout, not a banner mismatch.
	assert.Contains(t, result.Detail, "timed out")
	assert.NotContains(t, result.Detail, "output does not contain")
}

func TestExcerptTruncatesLongOutput(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	out := excerpt(string(long))
	assert.LessOrEqual(t, len(out), maxOutputExcerpt+3)
	assert.Contains(t, out, "...")
}

func TestExcerptKeepsValidUTF8(t *testing.T) {
	// The leading byte shifts the three-byte runes so one spans the cut.
	long := "x" + strings.Repeat("✓", maxOutputExcerpt)
	out := excerpt(long)
	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), maxOutputExcerpt+3)
}

func TestExtractVersion(t *testing.T) {
	assert.Equal(t, "4.11.1", extractVersion("4.11.1\n"))
	assert.Equal(t, "9.0", extractVersion("ELMER SOLVER (v 9.0) STARTED"))
	assert.Equal(t, "", extractVersion("no version"))
}
