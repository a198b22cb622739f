package ingest

import (
	"errors"
	"fmt"
)

// Reasons are stable identifiers for why ingestion failed. Callers show one
// generic message for all of them; the reason goes to logs and metrics.
const (
	ReasonNoInput         = "no_input"
	ReasonInvalidMedia    = "invalid_media"
	ReasonInferenceFailed = "inference_failed"
	ReasonEmptyResponse   = "empty_response"
	ReasonInvalidResponse = "invalid_response"
)

// ErrNoInput is returned when text, image and audio are all absent.
var ErrNoInput = errors.New("meal input is empty")

// Error is the single failure type of the pipeline.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "ingest: " + e.Reason
	}
	return fmt.Sprintf("ingest: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf returns the failure reason of err, or "" if err is not an *Error.
func ReasonOf(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Reason
	}
	return ""
}
