// Package oaserrors provides structured error types for the oascombine library.
//
// Import path: github.com/erraggy/oascombine/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to tell a transient source failure from an authoring mistake.
//
// # Error Types
//
//   - [FetchError]: a source could not be retrieved
//   - [ParseError]: a source is not valid YAML/JSON
//   - [ValidationError]: a source lacks required structure
//   - [ReferenceError]: $ref resolution failures and circular references
//   - [CollisionError]: the same key defined by two sources
//   - [ConfigError]: invalid per-source or combine configuration
//   - [ResourceLimitError]: resource exhaustion (depth, size, count limits)
//   - [SourceError]: identifies the failing source and pipeline stage
//
// # Sentinel Errors
//
//   - [ErrSourceUnreachable]: Matches [FetchError]
//   - [ErrSourceInvalid]: Matches [ParseError] and [ValidationError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrCircularReference]: Matches [ReferenceError] with IsCircular=true
//   - [ErrCollision]: Matches any [CollisionError]
//   - [ErrPathCollision]: Matches [CollisionError] in the paths section
//   - [ErrConfig]: Matches any [ConfigError]
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//
// # Recoverability
//
// [IsRecoverable] reports whether a failure may be skipped when combining with
// continue-on-error: only unreachable and invalid sources qualify.
//
//	result, err := combiner.Combine(ctx, sources)
//	if errors.Is(err, oaserrors.ErrPathCollision) {
//	    // two sources expose the same path after renames and prefixes
//	}
//	var srcErr *oaserrors.SourceError
//	if errors.As(err, &srcErr) {
//	    fmt.Printf("source %s failed during %s\n", srcErr.Location, srcErr.Stage)
//	}
package oaserrors
