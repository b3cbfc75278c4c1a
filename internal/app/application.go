package app

import (
	"log/slog"

	"femcheck.openqed.org/checkdb"
	"femcheck.openqed.org/internal/manifest"
	"femcheck.openqed.org/internal/metrics"
	"femcheck.openqed.org/internal/toolcheck"
)

// Application holds the dependencies for our HTTP handlers, helpers, and
// middleware.
type Application struct {
	Config   Config
	Logger   *slog.Logger
	Manifest *manifest.Loader
	Runner   *toolcheck.Runner
	History  *checkdb.Client
	Metrics  *metrics.Metrics
}

// Config holds the configuration settings for the Application: the network
// port the status server listens on, the current operating environment
// (development, test, production), and the API surface settings. These are
// read from command-line flags when the Application starts.
type Config struct {
	Port      int
	Env       string
	ApiKeys   []string
	RateLimit int
}
