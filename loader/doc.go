// Package loader retrieves raw API description documents.
//
// A [Loader] turns a location (a file path or an http(s) URL) into a
// [document.Node] tree. [New] returns the default loader, which reads files,
// fetches URLs with a bounded size and timeout, and transparently
// decompresses gzip and zstd content. [Cache] memoizes any Loader for one
// combine invocation and collapses concurrent fetches of the same location.
//
// [ResolveLocation] resolves a relative reference against the location of
// the document that contains it:
//
//	loc, _ := loader.ResolveLocation("specs/pets.yaml", "common.yaml")
//	// loc == "specs/common.yaml"
//
// The package also defines the [Logger] interface used across oascombine.
package loader
