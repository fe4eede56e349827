// Package severity provides the severity levels attached to warnings
// produced while combining documents.
//
// The levels are ordered from least to most severe:
// Info < Warning < Error
package severity

import "fmt"

// Severity indicates how much attention a reported condition needs.
type Severity int

const (
	// SeverityInfo is a notice about a choice made while combining, such as
	// an identical definition declared by two sources.
	SeverityInfo Severity = iota

	// SeverityWarning is a condition that did not stop the combine but
	// changed its output, such as a skipped source or a collision resolved
	// by strategy.
	SeverityWarning

	// SeverityError is a condition that failed the combine.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so severities render by
// name in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityInfo || s > SeverityError {
		return nil, fmt.Errorf("severity: invalid value %d", int(s))
	}
	return []byte(s.String()), nil
}
