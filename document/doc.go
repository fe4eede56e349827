// Package document provides the generic tree used to hold OpenAPI and
// Swagger documents while they are combined.
//
// A [Node] is one of four kinds: an ordered object, an array, a scalar, or
// a reference marker left in place of a "$ref" object. Object member order
// survives decoding and encoding, so a combined document lists paths in the
// order the sources declared them.
//
// # Decoding and encoding
//
//	doc, err := document.Decode(data, "petstore.yaml")
//	if err != nil {
//		return err // *oaserrors.ParseError
//	}
//	out, err := document.Encode(doc, document.FormatJSON)
//
// # OpenAPI views
//
// [Operations], [Registries] and [SecurityRegistry] locate the parts of a
// document that the transformer and merger work on, for both Swagger 2.0
// and OpenAPI 3.x. Accessors such as [Operation.Tags] check the shape of
// what they read and report *oaserrors.ValidationError on malformed input.
package document
