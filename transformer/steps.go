package transformer

import (
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/internal/httputil"
	"github.com/erraggy/oascombine/internal/pathutil"
	"github.com/erraggy/oascombine/oaserrors"
)

// Step is one transformation. The set of steps is closed: only the types
// in this package implement it.
type Step interface {
	// Name identifies the step in errors and logs.
	Name() string
	apply(doc *document.Node) error
}

// Filter keeps the paths matched by Only (all paths when Only is empty),
// then drops those matched by Exclude. A pattern with a method suffix
// selects a single operation instead of the whole path item. A path item
// left without operations is removed.
type Filter struct {
	Only    []pathutil.Pattern
	Exclude []pathutil.Pattern
}

// Name implements Step.
func (Filter) Name() string { return "filter" }

func (f Filter) apply(doc *document.Node) error {
	paths := doc.Get("paths")
	if !paths.IsObject() {
		return nil
	}
	for _, m := range paths.Members() {
		removed := false
		if len(f.Only) > 0 {
			whole, methods := selectPatterns(f.Only, m.Key)
			switch {
			case whole:
			case len(methods) > 0:
				removed = deleteOperations(m.Value, func(method string) bool { return !methods[method] })
			default:
				paths.Delete(m.Key)
				continue
			}
		}
		whole, methods := selectPatterns(f.Exclude, m.Key)
		if whole {
			paths.Delete(m.Key)
			continue
		}
		if len(methods) > 0 && deleteOperations(m.Value, func(method string) bool { return methods[method] }) {
			removed = true
		}
		if removed && !document.HasOperations(m.Value) {
			paths.Delete(m.Key)
		}
	}
	return nil
}

// selectPatterns reports whether a method-less pattern matches template,
// and which methods are selected by method patterns.
func selectPatterns(patterns []pathutil.Pattern, template string) (bool, map[string]bool) {
	var methods map[string]bool
	for _, p := range patterns {
		if !p.Match(template) {
			continue
		}
		if p.Method() == "" {
			return true, nil
		}
		if methods == nil {
			methods = make(map[string]bool)
		}
		methods[p.Method()] = true
	}
	return false, methods
}

func deleteOperations(pathItem *document.Node, drop func(method string) bool) bool {
	removed := false
	for _, key := range pathItem.Keys() {
		if httputil.IsMethod(key) && drop(key) {
			pathItem.Delete(key)
			removed = true
		}
	}
	return removed
}

// ParameterFilter keeps or drops parameters by name, on every operation
// and every path item.
type ParameterFilter struct {
	Only    []string
	Exclude []string
}

// Name implements Step.
func (ParameterFilter) Name() string { return "parameter-filter" }

func (f ParameterFilter) apply(doc *document.Node) error {
	keep := func(param *document.Node) bool {
		name := document.ParameterName(param)
		if len(f.Only) > 0 && !slices.Contains(f.Only, name) {
			return false
		}
		return !slices.Contains(f.Exclude, name)
	}
	for _, m := range doc.Get("paths").Members() {
		params, err := document.PathParameters(m.Value, m.Key)
		if err != nil {
			return err
		}
		if params != nil {
			params.Filter(keep)
		}
	}
	for _, op := range document.Operations(doc) {
		params, err := op.Parameters()
		if err != nil {
			return err
		}
		if params != nil {
			params.Filter(keep)
		}
	}
	return nil
}

// RenamePath renames path items by the Names map, old template to new,
// keeping their positions. All renames apply at once against the original
// templates, so chains and swaps are allowed.
type RenamePath struct {
	Names map[string]string
}

// Name implements Step.
func (RenamePath) Name() string { return "rename-path" }

func (r RenamePath) apply(doc *document.Node) error {
	paths := doc.Get("paths")
	for _, from := range slices.Sorted(maps.Keys(r.Names)) {
		if !paths.Has(from) {
			return &oaserrors.ConfigError{Option: "renamePaths", Value: from, Message: "path not found"}
		}
	}
	if key, ok := paths.RenameKeys(r.Names); !ok {
		return &oaserrors.ConfigError{Option: "renamePaths", Value: key, Message: "path already exists"}
	}
	return nil
}

// RenameTag renames tags by the Names map, in the tag registry and on every
// operation, in one pass over the original names. A renamed registry entry
// whose new name is held by an entry that is not renamed is dropped.
type RenameTag struct {
	Names map[string]string
}

// Name implements Step.
func (RenameTag) Name() string { return "rename-tag" }

func (r RenameTag) apply(doc *document.Node) error {
	found := make(map[string]bool, len(r.Names))
	rename := func(name string) string {
		to, ok := r.Names[name]
		if !ok {
			return name
		}
		found[name] = true
		return to
	}

	if registry := doc.Get("tags"); registry.IsArray() {
		kept := make(map[string]bool)
		for _, name := range document.TagNames(doc) {
			if _, renamed := r.Names[name]; !renamed {
				kept[name] = true
			}
		}
		seen := make(map[string]bool)
		registry.Filter(func(tag *document.Node) bool {
			name, ok := tag.Get("name").Str()
			if !ok || !tag.IsObject() {
				return true
			}
			to := rename(name)
			if (to != name && kept[to]) || seen[to] {
				return false
			}
			seen[to] = true
			if to != name {
				tag.Set("name", document.NewString(to))
			}
			return true
		})
	}

	for _, op := range document.Operations(doc) {
		tags, err := op.Tags()
		if err != nil {
			return err
		}
		changed := false
		renamed := make([]string, 0, len(tags))
		for _, t := range tags {
			if to := rename(t); to != t {
				t = to
				changed = true
			}
			if !slices.Contains(renamed, t) {
				renamed = append(renamed, t)
			}
		}
		if changed {
			op.SetTags(renamed)
		}
	}

	for _, from := range slices.Sorted(maps.Keys(r.Names)) {
		if !found[from] {
			return &oaserrors.ConfigError{Option: "renameTags", Value: from, Message: "tag not found"}
		}
	}
	return nil
}

// RenameSecurity renames security scheme definitions by the Names map, and
// every requirement that names them, globally and per operation. All renames
// apply at once against the original scheme names.
type RenameSecurity struct {
	Names map[string]string
}

// Name implements Step.
func (RenameSecurity) Name() string { return "rename-security" }

func (r RenameSecurity) apply(doc *document.Node) error {
	registry := document.SecurityRegistry(document.DetectDialect(doc)).Lookup(doc)
	for _, from := range slices.Sorted(maps.Keys(r.Names)) {
		if !registry.Has(from) {
			return &oaserrors.ConfigError{Option: "renameSecurity", Value: from, Message: "security scheme not defined"}
		}
	}
	if key, ok := registry.RenameKeys(r.Names); !ok {
		return &oaserrors.ConfigError{Option: "renameSecurity", Value: key, Message: "security scheme already defined"}
	}

	global, err := document.SecurityRequirements(doc, "security")
	if err != nil {
		return err
	}
	for _, req := range global.Items() {
		req.RenameKeys(r.Names)
	}
	for _, op := range document.Operations(doc) {
		sec, err := op.Security()
		if err != nil {
			return err
		}
		for _, req := range sec.Items() {
			req.RenameKeys(r.Names)
		}
	}
	return nil
}

// AddTag appends Names to every operation's tags, skipping tags an
// operation already carries.
type AddTag struct {
	Names []string
}

// Name implements Step.
func (AddTag) Name() string { return "add-tag" }

func (a AddTag) apply(doc *document.Node) error {
	for _, op := range document.Operations(doc) {
		tags, err := op.Tags()
		if err != nil {
			return err
		}
		n := len(tags)
		for _, name := range a.Names {
			if !slices.Contains(tags, name) {
				tags = append(tags, name)
			}
		}
		if len(tags) != n {
			op.SetTags(tags)
		}
	}
	return nil
}

// AddSecurity appends a requirement on Scheme to every operation matched
// by Paths, or to every operation when Paths is empty. Operations that
// already name Scheme are left alone.
type AddSecurity struct {
	Scheme string
	Scopes []string
	Paths  []pathutil.Pattern
}

// Name implements Step.
func (AddSecurity) Name() string { return "add-security" }

func (a AddSecurity) apply(doc *document.Node) error {
	option := "addSecurity"
	if len(a.Paths) > 0 {
		option = "securityRules"
	}
	if !document.SecurityRegistry(document.DetectDialect(doc)).Lookup(doc).Has(a.Scheme) {
		return &oaserrors.ConfigError{Option: option, Value: a.Scheme, Message: "security scheme not defined"}
	}
	global, err := document.SecurityRequirements(doc, "security")
	if err != nil {
		return err
	}
	for _, op := range document.Operations(doc) {
		if len(a.Paths) > 0 && !slices.ContainsFunc(a.Paths, func(p pathutil.Pattern) bool {
			return p.MatchOperation(op.Path, op.Method)
		}) {
			continue
		}
		sec, err := op.Security()
		if err != nil {
			return err
		}
		if sec == nil {
			// An operation without its own list inherits the global one;
			// keep those alternatives when it gets a list of its own.
			sec = document.NewArray()
			for _, req := range global.Items() {
				sec.Append(req.Clone())
			}
			op.Node.Set("security", sec)
		}
		if !document.HasRequirementFor(sec, a.Scheme) {
			sec.Append(document.NewRequirement(a.Scheme, a.Scopes))
		}
	}
	return nil
}

// Prefix prepends Base to every path key.
type Prefix struct {
	Base string
}

// Name implements Step.
func (Prefix) Name() string { return "prefix" }

func (p Prefix) apply(doc *document.Node) error {
	base := strings.TrimSuffix(p.Base, "/")
	paths := doc.Get("paths")
	if base == "" || !paths.IsObject() {
		return nil
	}
	prefixed := document.NewObject()
	for _, m := range paths.Members() {
		key := m.Key
		if !strings.HasPrefix(key, "/") {
			key = "/" + key
		}
		prefixed.Set(base+key, m.Value)
	}
	doc.Set("paths", prefixed)
	return nil
}

var (
	_ Step = Filter{}
	_ Step = ParameterFilter{}
	_ Step = RenamePath{}
	_ Step = RenameTag{}
	_ Step = RenameSecurity{}
	_ Step = AddTag{}
	_ Step = AddSecurity{}
	_ Step = Prefix{}
)
