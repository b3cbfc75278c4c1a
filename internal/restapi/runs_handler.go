package restapi

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"femcheck.openqed.org/internal/utils"
)

// runSummary is one row of the run-history listing.
type runSummary struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Hostname   string    `json:"hostname"`
	Platform   string    `json:"platform"`
	Status     string    `json:"status"`
}

// runsHandler lists recent verification runs, newest first.
func (api *RestAPI) runsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := utils.ValidateLimit(r.URL.Query().Get("limit"), 20, 100)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"limit": {err.Error()},
		})
		return
	}

	runs, err := api.History.Queries.ListRuns(r.Context(), limit)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	summaries := make([]runSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, runSummary{
			ID:         run.ID,
			StartedAt:  run.StartedAt,
			FinishedAt: run.FinishedAt,
			Hostname:   run.Hostname,
			Platform:   run.Platform,
			Status:     run.Status,
		})
	}

	api.sendResponse(w, r, map[string]interface{}{"runs": summaries})
}

// runHandler serves one recorded run with its full results.
func (api *RestAPI) runHandler(w http.ResponseWriter, r *http.Request) {
	rawID := utils.ExtractParam(r, "id")

	id, err := utils.ParseRunID(rawID)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"id": {err.Error()},
		})
		return
	}

	runID, report, err := api.History.Queries.ReportForRunID(r.Context(), id)
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
