package restapi

import (
	"database/sql"
	"errors"
	"net/http"

	"femcheck.openqed.org/internal/models"
	"femcheck.openqed.org/internal/utils"
)

// toolHandler serves the most recent recorded outcome for one named check.
func (api *RestAPI) toolHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.ExtractParam(r, "name")

	if err := utils.ValidateCheckName(name); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"name": {err.Error()},
		})
		return
	}

	result, err := api.History.Queries.LatestResultForCheck(r.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, map[string]interface{}{
		"entry": models.CheckResult{
			Name:           result.Name,
			Status:         models.ParseStatus(result.Status),
			Version:        result.Version,
			Detail:         result.Detail,
			Advice:         result.Advice,
			Output:         result.Output,
			DurationMillis: result.DurationMillis,
		},
		"runId": result.RunID,
	})
}
