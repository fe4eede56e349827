// Package oascombine combines several Swagger 2.0 or OpenAPI 3.x documents
// into one fully dereferenced document.
//
// # Overview
//
// Every source document goes through the same pipeline:
//
//   - loader: retrieve the raw document from disk, HTTP(S) or memory
//   - resolver: replace every $ref with its target, local or foreign
//   - transformer: filter, rename, tag, secure and prefix the document
//   - merger: fold the transformed documents, in source order, into one
//
// The combiner package drives the pipeline. Sources are processed
// concurrently but merged in the order they were given, so the output does
// not depend on which source finished first. Null and empty members are
// pruned from the result.
//
// # Quick Start
//
//	import "github.com/erraggy/oascombine/combiner"
//
//	result, err := combiner.Combine(ctx, []combiner.Source{
//		{Location: "pets.yaml"},
//		{Location: "https://example.com/store.json", Config: transformer.Config{Base: "/store"}},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, err := document.EncodeYAML(result.Document)
//
// A combine configuration file lists the sources with their per-source
// transformation and overrides the combined metadata:
//
//	result, err := combiner.CombineWithOptions(ctx,
//		combiner.WithConfigFile("combine.yaml"),
//		combiner.WithContinueOnError(true),
//	)
//
// # Errors
//
// Failures are typed errors from the oaserrors package. Under
// continue-on-error an unreachable or invalid source is skipped and
// reported in Result.Skipped; reference, collision and configuration
// errors always abort. Per-source failures carry the source index, location
// and pipeline stage in an *oaserrors.SourceError.
//
// # Command line
//
// cmd/oascombine wraps the library:
//
//	oascombine combine -o api.yaml pets.yaml store.yaml
//	oascombine combine --config combine.yaml --continue-on-error
//	oascombine mcp
package oascombine
