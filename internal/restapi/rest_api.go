// Package restapi serves verification results over HTTP: the latest
// report, run history, per-check status, and a re-verification trigger.
package restapi

import (
	"net/http"
	"time"

	"femcheck.openqed.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter func(http.Handler) http.Handler
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
	}
}
