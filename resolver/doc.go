// Package resolver dereferences $ref markers in API description documents.
//
// Resolution is depth first. Each reference is resolved relative to the
// location of the document that contains it, so references compose across
// any number of local and remote documents. Targets are memoized by
// (document location, fragment): N references to the same schema cost one
// resolution and share one resolved subtree.
//
// Circular references are rejected with a *oaserrors.ReferenceError whose
// IsCircular field is set; the resolved tree is always acyclic.
//
//	r := resolver.New(loader.New())
//	resolved, err := r.Resolve(ctx, raw, "specs/petstore.yaml")
package resolver
