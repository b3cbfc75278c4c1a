package checkdb

import "time"

// Run is one verification run summary row
type Run struct {
	ID         int64
	StartedAt  time.Time // started_at (epoch millis)
	FinishedAt time.Time // finished_at (epoch millis)
	Hostname   string    // hostname
	Platform   string    // platform, e.g. "linux/amd64"
	Status     string    // status of the whole run
}

// Result is one check outcome row belonging to a run
type Result struct {
	RunID          int64  // run_id
	Name           string // name, e.g. "elmergrid"
	Status         string // status
	Version        string // version the tool reported
	Detail         string // detail
	Advice         string // advice
	Output         string // output excerpt
	DurationMillis int64  // duration_millis
}
