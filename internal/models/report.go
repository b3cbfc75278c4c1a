package models

import (
	"time"
)

// CheckResult is the outcome of probing one tool in the simulation toolchain.
type CheckResult struct {
	Name           string `json:"name"`
	Status         Status `json:"status"`
	Version        string `json:"version,omitempty"`
	Detail         string `json:"detail,omitempty"`
	Advice         string `json:"advice,omitempty"`
	Output         string `json:"output,omitempty"`
	DurationMillis int64  `json:"durationMillis"`
}

// Report is the result of one full verification run over the toolchain.
type Report struct {
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Hostname   string        `json:"hostname"`
	Platform   string        `json:"platform"`
	Status     Status        `json:"status"`
	Results    []CheckResult `json:"results"`
}

// Aggregate recomputes the overall status from the individual results.
func (r *Report) Aggregate() {
	status := StatusSkipped
	for _, result := range r.Results {
		status = WorstStatus(status, result.Status)
	}
	r.Status = status
}

// Failed reports whether any check in the run failed outright.
func (r *Report) Failed() bool {
	return r.Status == StatusFail
}

// Result returns the result with the given check name, or nil.
func (r *Report) Result(name string) *CheckResult {
	for i := range r.Results {
		if r.Results[i].Name == name {
			return &r.Results[i]
		}
	}
	return nil
}
