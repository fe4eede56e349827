package resolver

import (
	"context"
	"errors"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/loader"
	"github.com/erraggy/oascombine/oaserrors"
)

// MaxRefDepth is the default maximum nesting of $ref resolution.
const MaxRefDepth = 100

// Stats describes the work done by a Resolver.
type Stats struct {
	// References is the number of reference markers replaced.
	References int
	// Targets is the number of distinct (document, fragment) targets resolved.
	Targets int
	// Documents is the number of foreign documents fetched.
	Documents int
}

// Resolver replaces every reference marker of a document with the resolved
// target, fetching foreign documents through a Loader.
//
// A Resolver memoizes targets across calls, so one Resolver should serve one
// source document. It is not safe for concurrent use.
type Resolver struct {
	loader   loader.Loader
	logger   loader.Logger
	maxDepth int

	docs       map[string]*document.Node
	memo       map[refKey]*document.Node
	inProgress map[refKey]bool
	stats      Stats
}

type refKey struct {
	location string
	fragment string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDepth overrides MaxRefDepth.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l loader.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Resolver that fetches foreign documents through l.
func New(l loader.Loader, opts ...Option) *Resolver {
	r := &Resolver{
		loader:     l,
		logger:     loader.NopLogger{},
		maxDepth:   MaxRefDepth,
		docs:       make(map[string]*document.Node),
		memo:       make(map[refKey]*document.Node),
		inProgress: make(map[refKey]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a copy of raw with every reference marker replaced by its
// target. base is the location raw was loaded from; relative references
// resolve against it. raw is not modified.
//
// A reference that leads back to itself fails with a *oaserrors.ReferenceError
// whose IsCircular field is set. A missing target or an unreachable foreign
// document fails with a *oaserrors.ReferenceError as well.
func (r *Resolver) Resolve(ctx context.Context, raw *document.Node, base string) (*document.Node, error) {
	r.docs[loader.Canonical(base)] = raw
	return r.resolveNode(ctx, raw, base, 0)
}

// Stats returns counters accumulated over every Resolve call.
func (r *Resolver) Stats() Stats {
	return r.stats
}

func (r *Resolver) resolveNode(ctx context.Context, n *document.Node, location string, depth int) (*document.Node, error) {
	switch n.Kind() {
	case document.KindRef:
		r.stats.References++
		return r.resolveRef(ctx, n.Ref(), location, depth)
	case document.KindObject:
		out := document.NewObject()
		for _, m := range n.Members() {
			v, err := r.resolveNode(ctx, m.Value, location, depth)
			if err != nil {
				return nil, err
			}
			out.Set(m.Key, v)
		}
		return out, nil
	case document.KindArray:
		items := n.Items()
		for i, item := range items {
			v, err := r.resolveNode(ctx, item, location, depth)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return document.NewArray(items...), nil
	}
	// Scalars are immutable and can be shared.
	return n, nil
}

func (r *Resolver) resolveRef(ctx context.Context, ref, location string, depth int) (*document.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refLoc, fragment := document.SplitRef(ref)
	target := location
	if refLoc != "" {
		var err error
		if target, err = loader.ResolveLocation(location, refLoc); err != nil {
			return nil, r.refError(ref, location, "invalid reference location", err)
		}
	}
	key := refKey{location: loader.Canonical(target), fragment: fragment}

	if resolved, ok := r.memo[key]; ok {
		return resolved, nil
	}
	if r.inProgress[key] {
		return nil, &oaserrors.ReferenceError{
			Ref:        ref,
			Location:   location,
			RefType:    refType(refLoc, target),
			IsCircular: true,
		}
	}
	if depth >= r.maxDepth {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "ref_depth",
			Limit:        int64(r.maxDepth),
			Actual:       int64(depth + 1),
			Message:      "reference " + ref + " nests too deeply",
		}
	}

	r.inProgress[key] = true
	defer delete(r.inProgress, key)

	doc, err := r.document(ctx, target)
	if err != nil {
		return nil, r.refError(ref, location, "failed to load referenced document", err)
	}
	tokens, err := document.ParsePointer(fragment)
	if err != nil {
		return nil, r.refError(ref, location, err.Error(), nil)
	}

	node, err := r.follow(ctx, doc, target, tokens, depth)
	if err != nil {
		var refErr *oaserrors.ReferenceError
		if errors.As(err, &refErr) || errors.Is(err, oaserrors.ErrResourceLimit) || ctx.Err() != nil {
			return nil, err
		}
		return nil, r.refError(ref, location, err.Error(), nil)
	}

	resolved, err := r.resolveNode(ctx, node, target, depth+1)
	if err != nil {
		return nil, err
	}
	r.memo[key] = resolved
	r.stats.Targets++
	r.logger.Debug("resolved reference", "ref", ref, "location", location, "depth", depth)
	return resolved, nil
}

// follow walks tokens from doc, resolving any reference marker met on the
// way before descending into it.
func (r *Resolver) follow(ctx context.Context, doc *document.Node, location string, tokens []string, depth int) (*document.Node, error) {
	cur := doc
	for i, tok := range tokens {
		if cur.IsRef() {
			resolved, err := r.resolveRef(ctx, cur.Ref(), location, depth+1)
			if err != nil {
				return nil, err
			}
			cur = resolved
		}
		next, ok := cur.Child(tok)
		if !ok {
			return nil, &pointerError{tokens: tokens[:i+1]}
		}
		cur = next
	}
	return cur, nil
}

type pointerError struct {
	tokens []string
}

func (e *pointerError) Error() string {
	return "target not found: " + document.FormatPointer(e.tokens)
}

func (r *Resolver) document(ctx context.Context, location string) (*document.Node, error) {
	key := loader.Canonical(location)
	if doc, ok := r.docs[key]; ok {
		return doc, nil
	}
	if r.loader == nil {
		return nil, &oaserrors.FetchError{Location: location, Message: "no loader configured"}
	}
	doc, err := r.loader.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	r.docs[key] = doc
	r.stats.Documents++
	r.logger.Debug("loaded referenced document", "location", location)
	return doc, nil
}

func (r *Resolver) refError(ref, location, msg string, cause error) error {
	refLoc, _ := document.SplitRef(ref)
	return &oaserrors.ReferenceError{
		Ref:      ref,
		Location: location,
		RefType:  refType(refLoc, refLoc),
		Message:  msg,
		Cause:    cause,
	}
}

func refType(refLoc, target string) string {
	switch {
	case refLoc == "":
		return "local"
	case loader.IsURL(target):
		return "http"
	default:
		return "file"
	}
}
