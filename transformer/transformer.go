package transformer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/internal/pathutil"
	"github.com/erraggy/oascombine/oaserrors"
)

// Plan validates cfg and compiles it into steps, in the order they are
// applied. A zero Config yields no steps.
func Plan(cfg Config) ([]Step, error) {
	var steps []Step

	if !cfg.Paths.IsZero() {
		only, err := compilePatterns("paths.only", cfg.Paths.Only)
		if err != nil {
			return nil, err
		}
		exclude, err := compilePatterns("paths.exclude", cfg.Paths.Exclude)
		if err != nil {
			return nil, err
		}
		steps = append(steps, Filter{Only: only, Exclude: exclude})
	}

	if !cfg.Parameters.IsZero() {
		if err := checkNames("parameters.only", cfg.Parameters.Only); err != nil {
			return nil, err
		}
		if err := checkNames("parameters.exclude", cfg.Parameters.Exclude); err != nil {
			return nil, err
		}
		steps = append(steps, ParameterFilter{Only: cfg.Parameters.Only, Exclude: cfg.Parameters.Exclude})
	}

	renamePaths, err := renameMap("renamePaths", cfg.RenamePaths)
	if err != nil {
		return nil, err
	}
	if renamePaths != nil {
		for _, from := range slices.Sorted(maps.Keys(renamePaths)) {
			if to := renamePaths[from]; !strings.HasPrefix(to, "/") {
				return nil, &oaserrors.ConfigError{Option: "renamePaths", Value: to, Message: "path must start with '/'"}
			}
		}
		steps = append(steps, RenamePath{Names: renamePaths})
	}

	renameTags, err := renameMap("renameTags", cfg.RenameTags)
	if err != nil {
		return nil, err
	}
	if renameTags != nil {
		steps = append(steps, RenameTag{Names: renameTags})
	}

	renameSecurity, err := renameMap("renameSecurity", cfg.RenameSecurity)
	if err != nil {
		return nil, err
	}
	if renameSecurity != nil {
		steps = append(steps, RenameSecurity{Names: renameSecurity})
	}

	if len(cfg.AddTags) > 0 {
		if err := checkNames("addTags", cfg.AddTags); err != nil {
			return nil, err
		}
		var names []string
		for _, name := range cfg.AddTags {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
		steps = append(steps, AddTag{Names: names})
	}

	schemes := make([]string, 0, len(cfg.AddSecurity))
	for scheme := range cfg.AddSecurity {
		schemes = append(schemes, scheme)
	}
	slices.Sort(schemes)
	for _, scheme := range schemes {
		if scheme == "" {
			return nil, &oaserrors.ConfigError{Option: "addSecurity", Message: "scheme name must not be empty"}
		}
		steps = append(steps, AddSecurity{Scheme: scheme, Scopes: cfg.AddSecurity[scheme]})
	}
	for i, rule := range cfg.SecurityRules {
		option := fmt.Sprintf("securityRules[%d]", i)
		if rule.Scheme == "" {
			return nil, &oaserrors.ConfigError{Option: option, Message: "scheme is required"}
		}
		if len(rule.Paths) == 0 {
			return nil, &oaserrors.ConfigError{Option: option, Value: rule.Scheme, Message: "at least one path pattern is required"}
		}
		patterns, err := compilePatterns(option+".paths", rule.Paths)
		if err != nil {
			return nil, err
		}
		steps = append(steps, AddSecurity{Scheme: rule.Scheme, Scopes: rule.Scopes, Paths: patterns})
	}

	if cfg.Base != "" {
		if !strings.HasPrefix(cfg.Base, "/") {
			return nil, &oaserrors.ConfigError{Option: "base", Value: cfg.Base, Message: "must start with '/'"}
		}
		steps = append(steps, Prefix{Base: cfg.Base})
	}
	return steps, nil
}

// Apply folds steps over a deep copy of doc and returns the copy. doc is
// not modified.
func Apply(doc *document.Node, steps []Step) (*document.Node, error) {
	if !doc.IsObject() {
		return nil, &oaserrors.ValidationError{Message: "document must be an object"}
	}
	out := doc.Clone()
	for _, step := range steps {
		if err := step.apply(out); err != nil {
			return nil, fmt.Errorf("transformer: %s: %w", step.Name(), err)
		}
	}
	return out, nil
}

// Transform plans cfg and applies it to doc.
func Transform(doc *document.Node, cfg Config) (*document.Node, error) {
	steps, err := Plan(cfg)
	if err != nil {
		return nil, err
	}
	return Apply(doc, steps)
}

func compilePatterns(option string, raw []string) ([]pathutil.Pattern, error) {
	patterns := make([]pathutil.Pattern, 0, len(raw))
	for _, s := range raw {
		p, err := pathutil.ParsePattern(s)
		if err != nil {
			return nil, &oaserrors.ConfigError{Option: option, Value: s, Message: "invalid path pattern", Cause: err}
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func checkNames(option string, names []string) error {
	for _, name := range names {
		if name == "" {
			return &oaserrors.ConfigError{Option: option, Message: "names must not be empty"}
		}
	}
	return nil
}

// renameMap returns a copy of m, or nil when m is empty. It rejects empty
// names and two old names mapped to the same new name.
func renameMap(option string, m map[string]string) (map[string]string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	targets := make(map[string]string, len(m))
	for _, from := range slices.Sorted(maps.Keys(m)) {
		to := m[from]
		if from == "" || to == "" {
			return nil, &oaserrors.ConfigError{Option: option, Value: from, Message: "rename needs both an old and a new name"}
		}
		if prev, dup := targets[to]; dup {
			return nil, &oaserrors.ConfigError{
				Option:  option,
				Value:   to,
				Message: fmt.Sprintf("both %q and %q are renamed to it", prev, from),
			}
		}
		targets[to] = from
	}
	return maps.Clone(m), nil
}
