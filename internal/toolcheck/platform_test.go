package toolcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"femcheck.openqed.org/internal/manifest"
	"femcheck.openqed.org/internal/models"
)

func TestAppleSiliconBindingAdvice(t *testing.T) {
	report := &models.Report{
		Results: []models.CheckResult{
			{Name: manifest.CheckGmshBinary, Status: models.StatusPass},
			{Name: manifest.CheckGmshPython, Status: models.StatusFail},
			{Name: manifest.CheckElmerGrid, Status: models.StatusPass},
			{Name: manifest.CheckElmerSolver, Status: models.StatusPass},
		},
	}

	ApplyPlatformAdvice(report, Env{GOOS: "darwin", GOARCH: "arm64"})

	binding := report.Result(manifest.CheckGmshPython)
	require.NotNil(t, binding)
	assert.Equal(t, models.StatusWarn, binding.Status)
	assert.Contains(t, binding.Advice, "Apple Silicon")
	// A usable toolchain with a broken pip wheel is a warning, not a failure.
	assert.Equal(t, models.StatusWarn, report.Status)
}

func TestAppleSiliconAdviceRequiresWorkingBinary(t *testing.T) {
	report := &models.Report{
		Results: []models.CheckResult{
			{Name: manifest.CheckGmshBinary, Status: models.StatusFail},
			{Name: manifest.CheckGmshPython, Status: models.StatusFail},
		},
	}

	ApplyPlatformAdvice(report, Env{GOOS: "darwin", GOARCH: "arm64"})

	binding := report.Result(manifest.CheckGmshPython)
	require.NotNil(t, binding)
	assert.Equal(t, models.StatusFail, binding.Status)
	assert.Empty(t, binding.Advice)
	assert.Equal(t, models.StatusFail, report.Status)
}

func TestNoAdviceOnOtherPlatforms(t *testing.T) {
	report := &models.Report{
		Results: []models.CheckResult{
			{Name: manifest.CheckGmshBinary, Status: models.StatusPass},
			{Name: manifest.CheckGmshPython, Status: models.StatusFail},
		},
	}

	ApplyPlatformAdvice(report, Env{GOOS: "linux", GOARCH: "amd64"})

	binding := report.Result(manifest.CheckGmshPython)
	require.NotNil(t, binding)
	assert.Equal(t, models.StatusFail, binding.Status)
	assert.Empty(t, binding.Advice)
}

func TestWindowsInstallerVariantAdvice(t *testing.T) {
	report := &models.Report{
		Results: []models.CheckResult{
			{Name: manifest.CheckElmerGrid, Status: models.StatusFail},
			{Name: manifest.CheckElmerSolver, Status: models.StatusPass},
		},
	}

	ApplyPlatformAdvice(report, Env{GOOS: "windows", GOARCH: "amd64"})

	grid := report.Result(manifest.CheckElmerGrid)
	require.NotNil(t, grid)
	// Still a failure: the variant genuinely lacks required functionality.
	assert.Equal(t, models.StatusFail, grid.Status)
	assert.Contains(t, grid.Advice, "installer")
}
