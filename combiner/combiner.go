package combiner

import (
	"context"
	"errors"
	"fmt"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/loader"
	"github.com/erraggy/oascombine/merger"
	"github.com/erraggy/oascombine/oaserrors"
	"github.com/erraggy/oascombine/resolver"
	"github.com/erraggy/oascombine/transformer"
	"golang.org/x/sync/errgroup"
)

// Source is one document to combine and the transformation applied to it.
type Source struct {
	// Location is the path or URL of the document.
	Location string
	// Config is the per-source transformation.
	Config transformer.Config
}

// SkippedSource records a source dropped under continue-on-error.
type SkippedSource struct {
	Index    int
	Location string
	// Err is the *oaserrors.SourceError that caused the skip.
	Err error
}

// Stats summarizes a combine.
type Stats struct {
	// Sources is the number of sources merged.
	Sources int
	// Skipped is the number of sources dropped.
	Skipped int
	// Paths is the number of path items in the combined document.
	Paths int
	// Operations is the number of operations in the combined document.
	Operations int
	// References is the number of reference markers replaced.
	References int
	// Documents is the number of distinct documents loaded.
	Documents int
}

// Result is a combined document with the conditions met producing it.
type Result struct {
	// Document is the combined, dereferenced and pruned document.
	Document *document.Node
	// Dialect is the dialect shared by every merged source.
	Dialect document.Dialect
	// Warnings lists non-fatal conditions, skipped sources included.
	Warnings []*merger.Warning
	// Skipped lists the sources dropped under continue-on-error.
	Skipped []SkippedSource
	// Stats summarizes the combine.
	Stats Stats
}

// Combine loads, resolves, transforms and merges sources.
func Combine(ctx context.Context, sources []Source, opts ...Option) (*Result, error) {
	return CombineWithOptions(ctx, append([]Option{WithSources(sources...)}, opts...)...)
}

// CombineWithOptions combines the sources selected by opts. Exactly one of
// WithSources, WithConfigFile or WithConfig is required.
//
// Example:
//
//	result, err := combiner.CombineWithOptions(ctx,
//	    combiner.WithConfigFile("combine.yaml"),
//	    combiner.WithPathStrategy(merger.StrategyAcceptLeft),
//	)
func CombineWithOptions(ctx context.Context, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("combiner: invalid options: %w", err)
	}
	c := &combiner{
		cfg:    cfg,
		cache:  loader.NewCache(cfg.loader, 0),
		logger: cfg.logger,
	}
	return c.run(ctx)
}

type combiner struct {
	cfg    *combineConfig
	cache  *loader.Cache
	logger loader.Logger
}

type pipelineResult struct {
	doc  *document.Node
	refs int
	err  error
}

func (c *combiner) run(ctx context.Context) (*Result, error) {
	sources := c.cfg.sources
	continueOnError := false
	metadata := c.cfg.metadata

	fileCfg := c.cfg.config
	if c.cfg.configFile != "" {
		var err error
		if fileCfg, err = LoadConfig(ctx, c.cfg.configFile, c.cache); err != nil {
			return nil, err
		}
	}
	if fileCfg != nil {
		var err error
		if sources, err = fileCfg.Sources(); err != nil {
			return nil, err
		}
		continueOnError = fileCfg.ContinueOnError
		metadata = overlayMetadata(fileCfg.Metadata, metadata)
	}
	if c.cfg.continueOnError != nil {
		continueOnError = *c.cfg.continueOnError
	}
	if c.cfg.primary >= len(sources) {
		return nil, &oaserrors.ConfigError{Option: "primary", Value: c.cfg.primary, Message: fmt.Sprintf("only %d sources", len(sources))}
	}

	results := make([]pipelineResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			doc, refs, err := c.runSource(gctx, i, src)
			results[i] = pipelineResult{doc: doc, refs: refs, err: err}
			if err != nil && (!continueOnError || !oaserrors.IsRecoverable(err)) {
				// Stops the other pipelines; the error itself is picked from
				// results in source order below.
				return err
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := firstFatal(ctx, results, continueOnError); err != nil {
		return nil, err
	}

	result := &Result{}
	var contribs []merger.Contribution
	primary := 0
	for i, r := range results {
		if r.err != nil {
			result.Skipped = append(result.Skipped, SkippedSource{Index: i, Location: sources[i].Location, Err: r.err})
			result.Warnings = append(result.Warnings, merger.NewSourceSkippedWarning(sources[i].Location, r.err))
			c.logger.Warn("skipping source", "index", i, "location", sources[i].Location, "error", r.err)
			continue
		}
		if i == c.cfg.primary {
			primary = len(contribs)
		}
		contribs = append(contribs, merger.Contribution{Location: sources[i].Location, Document: r.doc})
		result.Stats.References += r.refs
	}
	if len(contribs) == 0 {
		return nil, result.Skipped[0].Err
	}

	combined, err := merger.New(merger.Config{
		PathStrategy:       c.cfg.pathStrategy,
		DefinitionStrategy: c.cfg.definitionStrategy,
		Primary:            primary,
		Metadata:           metadata,
	}).Merge(contribs)
	if err != nil {
		return nil, fmt.Errorf("combiner: merge failed: %w", err)
	}

	result.Document = Prune(combined.Document())
	result.Dialect = combined.Dialect()
	result.Warnings = append(result.Warnings, combined.Warnings()...)
	result.Stats.Sources = len(contribs)
	result.Stats.Skipped = len(result.Skipped)
	result.Stats.Paths = result.Document.Get("paths").Len()
	result.Stats.Operations = len(document.Operations(result.Document))
	result.Stats.Documents = c.cache.Len()

	c.logger.Info("combined sources",
		"sources", result.Stats.Sources,
		"skipped", result.Stats.Skipped,
		"paths", result.Stats.Paths,
		"operations", result.Stats.Operations,
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// firstFatal returns the first error, in source order, that aborts the
// combine. Cancellations caused by another source's failure are passed
// over so that the originating error is reported.
func firstFatal(ctx context.Context, results []pipelineResult, continueOnError bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var canceled error
	for _, r := range results {
		if r.err == nil || (continueOnError && oaserrors.IsRecoverable(r.err)) {
			continue
		}
		if errors.Is(r.err, context.Canceled) {
			if canceled == nil {
				canceled = r.err
			}
			continue
		}
		return r.err
	}
	return canceled
}

func (c *combiner) runSource(ctx context.Context, index int, src Source) (*document.Node, int, error) {
	fail := func(stage oaserrors.Stage, err error) (*document.Node, int, error) {
		return nil, 0, &oaserrors.SourceError{Index: index, Location: src.Location, Stage: stage, Cause: err}
	}
	log := c.logger.With("index", index, "location", src.Location)

	steps, err := transformer.Plan(src.Config)
	if err != nil {
		return fail(oaserrors.StageTransform, err)
	}
	raw, err := c.cache.Load(ctx, src.Location)
	if err != nil {
		return fail(oaserrors.StageLoad, err)
	}
	if err := Validate(raw, src.Location); err != nil {
		return fail(oaserrors.StageValidate, err)
	}

	resolverOpts := []resolver.Option{resolver.WithLogger(log)}
	if c.cfg.maxRefDepth > 0 {
		resolverOpts = append(resolverOpts, resolver.WithMaxDepth(c.cfg.maxRefDepth))
	}
	r := resolver.New(c.cache, resolverOpts...)
	resolved, err := r.Resolve(ctx, raw, src.Location)
	if err != nil {
		return fail(oaserrors.StageResolve, err)
	}

	out, err := transformer.Apply(resolved, steps)
	if err != nil {
		return fail(oaserrors.StageTransform, err)
	}
	stats := r.Stats()
	log.Debug("source ready", "references", stats.References, "steps", len(steps))
	return out, stats.References, nil
}

// overlayMetadata returns base with the members of override set on top.
func overlayMetadata(base, override *document.Node) *document.Node {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}
	out := document.NewObject(base.Members()...)
	for _, m := range override.Members() {
		out.Set(m.Key, m.Value)
	}
	return out
}
