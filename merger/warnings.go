package merger

import (
	"fmt"

	"github.com/erraggy/oascombine/internal/severity"
)

// WarningCategory identifies the type of warning.
type WarningCategory string

const (
	// WarnPathCollision indicates a path collision was resolved by strategy.
	WarnPathCollision WarningCategory = "path_collision"
	// WarnDefinitionCollision indicates a registry collision was resolved by
	// strategy.
	WarnDefinitionCollision WarningCategory = "definition_collision"
	// WarnTagConflict indicates two documents describe a tag differently.
	WarnTagConflict WarningCategory = "tag_conflict"
	// WarnMetadataMismatch indicates a later document disagrees with the
	// primary document on host, basePath or servers.
	WarnMetadataMismatch WarningCategory = "metadata_mismatch"
	// WarnVersionMismatch indicates documents declare different minor
	// versions.
	WarnVersionMismatch WarningCategory = "version_mismatch"
	// WarnMetadataIgnored indicates a metadata override key was ignored.
	WarnMetadataIgnored WarningCategory = "metadata_ignored"
	// WarnSourceSkipped indicates a source was dropped under
	// continue-on-error.
	WarnSourceSkipped WarningCategory = "source_skipped"
)

// Warning is a non-fatal condition met while combining documents.
type Warning struct {
	// Category identifies the type of warning.
	Category WarningCategory `json:"category"`
	// Path is the dotted location of the affected element.
	Path string `json:"path,omitempty"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// Source is the location of the document that triggered the warning.
	Source string `json:"source,omitempty"`
	// Severity indicates how much attention the warning needs.
	Severity severity.Severity `json:"severity"`
}

// String returns the warning message.
func (w *Warning) String() string {
	return w.Message
}

func newCollisionWarning(category WarningCategory, section, key string, strategy Strategy, first, second string) *Warning {
	kept := first
	if strategy == StrategyAcceptRight {
		kept = second
	}
	return &Warning{
		Category: category,
		Path:     section + "." + key,
		Message:  fmt.Sprintf("%s %q defined by both %s and %s, kept %s (%s)", section, key, first, second, kept, strategy),
		Source:   second,
		Severity: severity.SeverityWarning,
	}
}

func newTagConflictWarning(name, first, second string) *Warning {
	return &Warning{
		Category: WarnTagConflict,
		Path:     "tags." + name,
		Message:  fmt.Sprintf("tag %q is described differently by %s and %s, kept the first", name, first, second),
		Source:   second,
		Severity: severity.SeverityInfo,
	}
}

func newMetadataMismatchWarning(field, primary, source string) *Warning {
	return &Warning{
		Category: WarnMetadataMismatch,
		Path:     field,
		Message:  fmt.Sprintf("%s of %s differs from the primary document %s and is ignored", field, source, primary),
		Source:   source,
		Severity: severity.SeverityWarning,
	}
}

func newVersionMismatchWarning(field, primaryVersion, version, source string) *Warning {
	return &Warning{
		Category: WarnVersionMismatch,
		Path:     field,
		Message:  fmt.Sprintf("%s declares %s %s, combined document uses %s", source, field, version, primaryVersion),
		Source:   source,
		Severity: severity.SeverityInfo,
	}
}

// NewSourceSkippedWarning creates a warning for a source dropped because
// of err.
func NewSourceSkippedWarning(location string, err error) *Warning {
	return &Warning{
		Category: WarnSourceSkipped,
		Message:  fmt.Sprintf("skipped %s: %v", location, err),
		Source:   location,
		Severity: severity.SeverityWarning,
	}
}
