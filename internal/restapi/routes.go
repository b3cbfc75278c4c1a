package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	}
}

// Routes builds the full status API handler with the middleware stack
// applied: request logging wraps security headers wraps rate limiting
// wraps gzip wraps the router.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/api/check/report.json", validateAPIKey(api, api.reportHandler))
	router.HandlerFunc(http.MethodGet, "/api/check/runs.json", validateAPIKey(api, api.runsHandler))
	router.HandlerFunc(http.MethodGet, "/api/check/run/:id", validateAPIKey(api, api.runHandler))
	router.HandlerFunc(http.MethodGet, "/api/check/tool/:name", validateAPIKey(api, api.toolHandler))
	router.HandlerFunc(http.MethodPost, "/api/check/verify.json", validateAPIKey(api, api.verifyHandler))
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)

	if api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())
	}

	var handler http.Handler = router
	handler = applyGzipMiddleware(handler)
	if api.rateLimiter != nil {
		handler = api.rateLimiter(handler)
	}
	handler = securityHeaders(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	return handler
}
