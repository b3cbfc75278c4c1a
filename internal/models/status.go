package models

// Status is the outcome of a single verification check.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarn    Status = "WARN"
	StatusFail    Status = "FAIL"
	StatusSkipped Status = "SKIPPED"
)

// severity orders statuses from best to worst for aggregation.
var severity = map[Status]int{
	StatusSkipped: 0,
	StatusPass:    1,
	StatusWarn:    2,
	StatusFail:    3,
}

// WorstStatus returns whichever of the two statuses is more severe.
func WorstStatus(a, b Status) Status {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// ParseStatus converts a stored status string back into a Status. Unknown
// values map to StatusFail so that corrupt history never reads as healthy.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPass, StatusWarn, StatusFail, StatusSkipped:
		return Status(s)
	}
	return StatusFail
}
