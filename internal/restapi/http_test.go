package restapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"femcheck.openqed.org/checkdb"
	"femcheck.openqed.org/internal/app"
	"femcheck.openqed.org/internal/logging"
	"femcheck.openqed.org/internal/manifest"
	"femcheck.openqed.org/internal/metrics"
	"femcheck.openqed.org/internal/models"
	"femcheck.openqed.org/internal/toolcheck"
)

// fakeElmerGrid writes a script that prints the real ElmerGrid closing
// banner, standing in for an installed tool.
func fakeElmerGrid(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}

	script := fmt.Sprintf("#!/bin/sh\necho %q\nexit 0\n", manifest.ElmerGridBannerFragment)
	path := filepath.Join(t.TempDir(), "ElmerGrid")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// createTestApi wires an API instance with a temp-file history database and
// a single fake tool.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()

	logger := slog.Default()

	history, err := checkdb.NewClient(checkdb.NewConfig(filepath.Join(t.TempDir(), "history.db"), false), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })

	loader, err := manifest.NewLoader("", logger)
	require.NoError(t, err)
	m := loader.Get()
	// Only the fake ElmerGrid runs; the rest are disabled so tests never
	// depend on tools installed on the host.
	for i := range m.Tools {
		if m.Tools[i].Name == manifest.CheckElmerGrid {
			m.Tools[i].Path = fakeElmerGrid(t)
		} else {
			m.Tools[i].Disabled = true
		}
	}

	runner := &toolcheck.Runner{
		Loader:  loader,
		Env:     toolcheck.SystemEnv(logger),
		History: history,
		Metrics: metrics.New(),
	}

	application := &app.Application{
		Config: app.Config{
			Env:       "test",
			ApiKeys:   []string{"TEST"},
			RateLimit: -1,
		},
		Logger:   logger,
		Manifest: loader,
		Runner:   runner,
		History:  history,
		Metrics:  runner.Metrics,
	}

	return NewRestAPI(application)
}

// recordRun records one verification run straight into history.
func recordRun(t *testing.T, api *RestAPI, status models.Status) int64 {
	t.Helper()

	report := models.Report{
		StartedAt:  time.Now().UTC().Add(-time.Second),
		FinishedAt: time.Now().UTC(),
		Hostname:   "test-host",
		Platform:   "linux/amd64",
		Results: []models.CheckResult{
			{Name: manifest.CheckElmerGrid, Status: status, Detail: "recorded by test"},
		},
	}
	report.Aggregate()

	id, err := api.History.Queries.RecordReport(t.Context(), report)
	require.NoError(t, err)
	return id
}

func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()

	server := httptest.NewServer(api.Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	return resp, response
}
