package toolcheck

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"femcheck.openqed.org/checkdb"
	"femcheck.openqed.org/internal/logging"
	"femcheck.openqed.org/internal/manifest"
	"femcheck.openqed.org/internal/metrics"
	"femcheck.openqed.org/internal/models"
)

// Runner executes every enabled check from the manifest and assembles the
// verification report. History and Metrics are optional.
type Runner struct {
	Loader  *manifest.Loader
	Env     Env
	History *checkdb.Client
	Metrics *metrics.Metrics

	// One verification at a time; the API can trigger re-verification
	// while a scheduled run is in flight.
	mu sync.Mutex
}

// Verify runs the checks in manifest order, the same sequential order the
// install guide walks a human through. The returned report is complete even
// when err is non-nil, with unreached checks marked skipped.
func (r *Runner) Verify(ctx context.Context) (models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.Loader.Get()
	hostname, _ := os.Hostname()

	report := models.Report{
		StartedAt: time.Now().UTC(),
		Hostname:  hostname,
		Platform:  r.Env.Platform(),
	}

	tools := m.Enabled()
	for i, tool := range tools {
		if ctx.Err() != nil {
			for _, skipped := range tools[i:] {
				report.Results = append(report.Results, models.CheckResult{
					Name:   skipped.Name,
					Status: models.StatusSkipped,
					Detail: "verification cancelled",
				})
			}
			break
		}
		report.Results = append(report.Results, New(tool).Run(ctx, r.Env))
	}

	ApplyPlatformAdvice(&report, r.Env)
	report.FinishedAt = time.Now().UTC()

	logging.LogOperation(r.Env.Logger, "verification_run",
		slog.String("status", string(report.Status)),
		slog.String("platform", report.Platform),
		slog.Int("checks", len(report.Results)),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))

	if r.History != nil {
		// A run that happened but could not be recorded is still a run;
		// log the failure and hand the report back. Recording gets its own
		// context so a cancelled verification still lands in history.
		recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := r.History.Queries.RecordReport(recordCtx, report); err != nil {
			logging.LogError(r.Env.Logger, "failed to record verification run", err,
				slog.String("component", "checkdb"))
		}
	}
	if r.Metrics != nil {
		r.Metrics.ObserveReport(report)
	}

	return report, ctx.Err()
}
