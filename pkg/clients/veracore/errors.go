package veracore

import (
	"errors"
	"fmt"
)

// ErrAuthFailed indicates the backend rejected the login or the token check
// could not produce a usable bearer token. Fatal for the whole run.
var ErrAuthFailed = errors.New("veracore: authentication failed")

// ErrReportTooLarge is returned when the backend refuses to materialize a
// report because the request is too large. Terminal, never retried.
var ErrReportTooLarge = errors.New("veracore: report request too large")

// SubmissionError indicates a report task could not be started.
type SubmissionError struct {
	Report string
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("veracore: submit report %q: %v", e.Report, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// TimeoutError indicates the polling budget was exhausted while the report
// was still processing.
type TimeoutError struct {
	Report   string
	TaskID   string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("veracore: report %q (task %s) still processing after %d attempts", e.Report, e.TaskID, e.Attempts)
}

// TransportError indicates a non-200 response on a report status or result
// call. Terminal for that report.
type TransportError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("veracore: %s returned status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// MoveError indicates the backend rejected a unit move.
type MoveError struct {
	UnitID     string
	LocationID string
	StatusCode int
	Body       string
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("veracore: move unit %s to location %s failed with status %d: %s", e.UnitID, e.LocationID, e.StatusCode, e.Body)
}
