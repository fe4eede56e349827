// Package combiner combines several API descriptions into one
// self-contained document.
//
// Each [Source] runs through its own pipeline (load, structural
// validation, reference resolution, transformation) concurrently with the
// others. The transformed documents are then merged in source order and
// empty members are pruned from the result.
//
// # Quick Start
//
//	result, err := combiner.Combine(ctx, []combiner.Source{
//	    {Location: "pets.yaml"},
//	    {Location: "https://example.com/store.json", Config: transformer.Config{Base: "/store"}},
//	})
//	if err != nil {
//	    return err
//	}
//	out, err := document.EncodeYAML(result.Document)
//
// A configuration file listing the sources under "apis" can be used
// instead:
//
//	result, err := combiner.CombineWithOptions(ctx,
//	    combiner.WithConfigFile("combine.yaml"),
//	    combiner.WithContinueOnError(true),
//	)
//
// # Errors
//
// By default the first failing source, in source order, aborts the combine
// with a *oaserrors.SourceError naming the source and the failed stage.
// With [WithContinueOnError], unreachable and invalid sources are skipped
// and listed in [Result.Skipped]; reference, configuration and collision
// errors still abort. See [oaserrors.IsRecoverable].
package combiner
