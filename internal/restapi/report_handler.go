package restapi

import (
	"database/sql"
	"errors"
	"net/http"
)

// reportEntry is the data payload for report-shaped endpoints.
type reportEntry struct {
	RunID  int64       `json:"runId"`
	Report interface{} `json:"report"`
}

// reportHandler serves the most recent verification report.
func (api *RestAPI) reportHandler(w http.ResponseWriter, r *http.Request) {
	runID, report, err := api.History.Queries.LatestReport(r.Context())
	if errors.Is(err, sql.ErrNoRows) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, reportEntry{RunID: runID, Report: report})
}

// verifyHandler triggers a fresh verification run and serves its report.
func (api *RestAPI) verifyHandler(w http.ResponseWriter, r *http.Request) {
	report, err := api.Runner.Verify(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, reportEntry{Report: report})
}

// healthHandler is the unauthenticated liveness probe.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, map[string]string{"status": "up"})
}
