// Package merger folds transformed API descriptions into one combined
// document.
//
// Documents are merged in order by a pure left fold: [Merger.Fold] returns
// a new [Combined] and leaves its accumulator untouched, and [Merger.Merge]
// folds a whole list. The rules are:
//
//   - paths: union; a key already present is a collision
//   - registries (definitions, components, security schemes): union by key;
//     identical values under the same key are accepted, differing values
//     are a collision
//   - tags: union by name, first declaration wins
//   - global security: union of distinct requirements
//   - metadata (info, host, servers, ...): taken from the primary document
//     and optionally overridden, never mixed
//
// Collisions fail with a *oaserrors.CollisionError unless the strategy for
// the section is [StrategyAcceptLeft] or [StrategyAcceptRight], in which
// case a [Warning] records the choice.
package merger
