package models

import "time"

// ResponseVersion identifies the JSON envelope schema served by the status
// API. Bump it when making breaking changes to the envelope.
const ResponseVersion = 1

// ResponseModel is the JSON envelope wrapping every status API response.
type ResponseModel struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

// ResponseCurrentTime returns the current time in epoch milliseconds, the
// unit used throughout the envelope.
func ResponseCurrentTime() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
