// Package transformer rewrites one resolved API description according to a
// declarative per-source configuration.
//
// A [Config] is compiled by [Plan] into an ordered list of [Step] values,
// drawn from a closed set:
//
//  1. [Filter] keeps or drops paths and operations by pattern
//  2. [ParameterFilter] keeps or drops parameters by name
//  3. [RenamePath] moves a path item to a new key
//  4. [RenameTag] renames a tag in the registry and on every operation
//  5. [RenameSecurity] renames a security scheme and every requirement on it
//  6. [AddTag] appends tags to every operation
//  7. [AddSecurity] appends a security requirement to matching operations
//  8. [Prefix] prepends a base path to every path key
//
// [Apply] folds the steps over a deep copy of the document, so the input is
// never modified:
//
//	steps, err := transformer.Plan(cfg)
//	if err != nil {
//	    return err
//	}
//	out, err := transformer.Apply(doc, steps)
//
// [Transform] does both. Configuration mistakes, such as renaming a path
// that does not exist, fail with a *oaserrors.ConfigError.
package transformer
