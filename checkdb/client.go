// Package checkdb persists verification runs and their per-check outcomes
// in a local SQLite database.
package checkdb

import (
	"fmt"
	"log/slog"

	"femcheck.openqed.org/internal/logging"
)

// Client is the entry point for run-history storage
type Client struct {
	config  Config
	logger  *slog.Logger
	Queries *Queries
}

// NewClient opens (creating if necessary) the history database.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, fmt.Errorf("opening run history at %s: %w", config.DBPath, err)
	}
	if config.verbose {
		logging.LogOperation(logger, "run_history_opened",
			slog.String("path", config.DBPath))
	}

	return &Client{
		config:  config,
		logger:  logger,
		Queries: New(db, logger),
	}, nil
}

func (c *Client) Close() error {
	return c.Queries.db.Close()
}
