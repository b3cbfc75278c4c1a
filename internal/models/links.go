package models

import "time"

// LinkResult is the outcome of checking one URL cited by the install guide.
type LinkResult struct {
	URL        string `json:"url"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// LinkReport is the outcome of a link-integrity pass over one document.
type LinkReport struct {
	Doc       string       `json:"doc"`
	CheckedAt time.Time    `json:"checkedAt"`
	Broken    int          `json:"broken"`
	Results   []LinkResult `json:"results"`
}

// Failed reports whether any cited link did not resolve.
func (lr *LinkReport) Failed() bool {
	return lr.Broken > 0
}
