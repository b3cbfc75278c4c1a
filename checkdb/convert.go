package checkdb

import "femcheck.openqed.org/internal/models"

// fromReport flattens a report into history rows.
func fromReport(report models.Report) (Run, []Result) {
	run := Run{
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Hostname:   report.Hostname,
		Platform:   report.Platform,
		Status:     string(report.Status),
	}

	results := make([]Result, 0, len(report.Results))
	for _, r := range report.Results {
		results = append(results, Result{
			Name:           r.Name,
			Status:         string(r.Status),
			Version:        r.Version,
			Detail:         r.Detail,
			Advice:         r.Advice,
			Output:         r.Output,
			DurationMillis: r.DurationMillis,
		})
	}
	return run, results
}

// toReport rebuilds a report from history rows.
func toReport(run Run, results []Result) models.Report {
	report := models.Report{
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Hostname:   run.Hostname,
		Platform:   run.Platform,
		Status:     models.ParseStatus(run.Status),
	}

	for _, r := range results {
		report.Results = append(report.Results, models.CheckResult{
			Name:           r.Name,
			Status:         models.ParseStatus(r.Status),
			Version:        r.Version,
			Detail:         r.Detail,
			Advice:         r.Advice,
			Output:         r.Output,
			DurationMillis: r.DurationMillis,
		})
	}
	return report
}
