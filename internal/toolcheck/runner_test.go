package toolcheck

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"femcheck.openqed.org/checkdb"
	"femcheck.openqed.org/internal/manifest"
	"femcheck.openqed.org/internal/models"
)

func runnerWithFakeTools(t *testing.T) *Runner {
	t.Helper()

	loader, err := manifest.NewLoader("", slog.Default())
	require.NoError(t, err)

	m := loader.Get()
	for i := range m.Tools {
		switch m.Tools[i].Name {
		case manifest.CheckElmerGrid:
			m.Tools[i].Path = fakeTool(t, "...\n"+manifest.ElmerGridBannerFragment, 0)
		case manifest.CheckElmerSolver:
			m.Tools[i].Path = fakeTool(t, manifest.ElmerSolverBannerFragment, 0)
		case manifest.CheckGmshBinary:
			m.Tools[i].Path = fakeTool(t, "4.11.1", 0)
		case manifest.CheckGmshPython:
			m.Tools[i].Path = fakeTool(t, "", 0)
		}
	}

	return &Runner{
		Loader: loader,
		Env:    testEnv(),
	}
}

func TestVerifyAllToolsHealthy(t *testing.T) {
	runner := runnerWithFakeTools(t)

	report, err := runner.Verify(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPass, report.Status)
	require.Len(t, report.Results, 4)
	assert.NotEmpty(t, report.Platform)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	// Manifest order is preserved.
	assert.Equal(t, manifest.CheckGmshBinary, report.Results[0].Name)
	assert.Equal(t, manifest.CheckGmshPython, report.Results[1].Name)
	assert.Equal(t, manifest.CheckElmerGrid, report.Results[2].Name)
	assert.Equal(t, manifest.CheckElmerSolver, report.Results[3].Name)
}

func TestVerifyDetectsBrokenTool(t *testing.T) {
	runner := runnerWithFakeTools(t)

	m := runner.Loader.Get()
	solver := m.Tool(manifest.CheckElmerSolver)
	require.NotNil(t, solver)
	solver.Path = fakeTool(t, "wrong banner entirely", 0)

	report, err := runner.Verify(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StatusFail, report.Status)
	result := report.Result(manifest.CheckElmerSolver)
	require.NotNil(t, result)
	assert.Equal(t, models.StatusFail, result.Status)
}

func TestVerifyRecordsHistory(t *testing.T) {
	runner := runnerWithFakeTools(t)

	history, err := checkdb.NewClient(
		checkdb.NewConfig(filepath.Join(t.TempDir(), "history.db"), false), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })
	runner.History = history

	_, err = runner.Verify(context.Background())
	require.NoError(t, err)

	runID, stored, err := history.Queries.LatestReport(context.Background())
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))
	assert.Equal(t, models.StatusPass, stored.Status)
	assert.Len(t, stored.Results, 4)
}

func TestVerifyCancelledContextSkipsRemaining(t *testing.T) {
	runner := runnerWithFakeTools(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Verify(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, report.Results, 4)
	for _, result := range report.Results {
		assert.Equal(t, models.StatusSkipped, result.Status)
	}
}
