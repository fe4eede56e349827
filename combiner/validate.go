package combiner

import (
	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/oaserrors"
)

// Validate checks the structure every source must have: a swagger "2.x"
// or openapi "3.x" version string, an info object and a paths object.
// Members that are still reference markers are accepted. Failures are
// *oaserrors.ValidationError values, which count as an invalid source.
func Validate(doc *document.Node, location string) error {
	if !doc.IsObject() {
		return &oaserrors.ValidationError{Path: location, Message: "document must be an object"}
	}
	if document.DetectDialect(doc) == document.DialectUnknown {
		field, value := "swagger", doc.Get("swagger").Value()
		if doc.Has("openapi") {
			field, value = "openapi", doc.Get("openapi").Value()
		}
		return &oaserrors.ValidationError{
			Path:    location,
			Field:   field,
			Value:   value,
			Message: `missing or unsupported version, expected a string such as "2.0" or "3.0.3"`,
		}
	}
	for _, field := range []string{"info", "paths"} {
		v, ok := doc.Lookup(field)
		if !ok {
			return &oaserrors.ValidationError{Path: location, Field: field, Message: "is required"}
		}
		if !v.IsObject() && !v.IsRef() {
			return &oaserrors.ValidationError{Path: location, Field: field, Value: v.Value(), Message: "must be an object"}
		}
	}
	return nil
}
