package oaserrors

import (
	"errors"
	"fmt"
)

// Stage names the per-source pipeline step that failed.
type Stage string

const (
	StageLoad      Stage = "load"
	StageValidate  Stage = "validate"
	StageResolve   Stage = "resolve"
	StageTransform Stage = "transform"
)

// SourceError identifies which source, and which pipeline stage, produced
// an error. The wrapped error keeps its own category, so errors.Is and
// errors.As see through SourceError.
type SourceError struct {
	// Index is the position of the source in the caller's list
	Index int
	// Location is the source's path or URL
	Location string
	// Stage is the pipeline step that failed
	Stage Stage
	// Cause is the underlying error
	Cause error
}

// Error returns a human-readable error message.
func (e *SourceError) Error() string {
	msg := fmt.Sprintf("source %d", e.Index+1)
	if e.Location != "" {
		msg += " (" + e.Location + ")"
	}
	if e.Stage != "" {
		msg += " failed to " + string(e.Stage)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// IsRecoverable reports whether err may be skipped when a combine runs with
// continue-on-error: only unreachable or invalid sources qualify. Reference,
// collision, configuration and resource-limit errors never do.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrReference) || errors.Is(err, ErrCollision) ||
		errors.Is(err, ErrConfig) || errors.Is(err, ErrResourceLimit) {
		return false
	}
	return errors.Is(err, ErrSourceUnreachable) || errors.Is(err, ErrSourceInvalid)
}
