package document

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/oascombine/internal/httputil"
	"github.com/erraggy/oascombine/oaserrors"
)

// Dialect distinguishes Swagger 2.0 documents from OpenAPI 3.x documents.
type Dialect int

const (
	// DialectUnknown is a document with neither a swagger nor an openapi field.
	DialectUnknown Dialect = iota
	// DialectSwagger2 is a Swagger 2.0 document.
	DialectSwagger2
	// DialectOpenAPI3 is an OpenAPI 3.x document.
	DialectOpenAPI3
)

// String returns a human-readable dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectSwagger2:
		return "Swagger 2.0"
	case DialectOpenAPI3:
		return "OpenAPI 3.x"
	default:
		return "unknown"
	}
}

// DetectDialect inspects the version field of doc.
func DetectDialect(doc *Node) Dialect {
	if v, ok := doc.Get("swagger").Str(); ok && strings.HasPrefix(v, "2.") {
		return DialectSwagger2
	}
	if v, ok := doc.Get("openapi").Str(); ok && strings.HasPrefix(v, "3.") {
		return DialectOpenAPI3
	}
	return DialectUnknown
}

// Registry names one keyed collection of reusable definitions.
type Registry struct {
	// Name is the dotted path of the registry, e.g. "components.schemas".
	Name string
	// Path holds the keys leading from the document root to the registry.
	Path []string
}

var (
	swagger2Registries = []Registry{
		{Name: "definitions", Path: []string{"definitions"}},
		{Name: "parameters", Path: []string{"parameters"}},
		{Name: "responses", Path: []string{"responses"}},
		{Name: "securityDefinitions", Path: []string{"securityDefinitions"}},
	}
	openAPI3Registries = []Registry{
		{Name: "components.schemas", Path: []string{"components", "schemas"}},
		{Name: "components.responses", Path: []string{"components", "responses"}},
		{Name: "components.parameters", Path: []string{"components", "parameters"}},
		{Name: "components.examples", Path: []string{"components", "examples"}},
		{Name: "components.requestBodies", Path: []string{"components", "requestBodies"}},
		{Name: "components.headers", Path: []string{"components", "headers"}},
		{Name: "components.securitySchemes", Path: []string{"components", "securitySchemes"}},
		{Name: "components.links", Path: []string{"components", "links"}},
		{Name: "components.callbacks", Path: []string{"components", "callbacks"}},
		{Name: "components.pathItems", Path: []string{"components", "pathItems"}},
		{Name: "webhooks", Path: []string{"webhooks"}},
	}
)

// Registries returns the keyed definition collections of a dialect.
func Registries(d Dialect) []Registry {
	switch d {
	case DialectSwagger2:
		return swagger2Registries
	case DialectOpenAPI3:
		return openAPI3Registries
	}
	return nil
}

// RegistryRoots returns the top-level keys that hold registries, so callers
// can tell registry content from document metadata.
func RegistryRoots(d Dialect) []string {
	var roots []string
	for _, r := range Registries(d) {
		if !slices.Contains(roots, r.Path[0]) {
			roots = append(roots, r.Path[0])
		}
	}
	return roots
}

// SecurityRegistry returns the registry holding security scheme
// definitions for the dialect.
func SecurityRegistry(d Dialect) Registry {
	if d == DialectOpenAPI3 {
		return Registry{Name: "components.securitySchemes", Path: []string{"components", "securitySchemes"}}
	}
	return Registry{Name: "securityDefinitions", Path: []string{"securityDefinitions"}}
}

// Lookup returns the registry object inside doc, or nil when absent.
func (r Registry) Lookup(doc *Node) *Node {
	n, ok := doc.At(r.Path)
	if !ok || !n.IsObject() {
		return nil
	}
	return n
}

// Ensure returns the registry object inside doc, creating it and any
// missing parents.
func (r Registry) Ensure(doc *Node) *Node {
	cur := doc
	for _, key := range r.Path {
		next := cur.Get(key)
		if !next.IsObject() {
			next = NewObject()
			cur.Set(key, next)
		}
		cur = next
	}
	return cur
}

// Operation is a view of one operation object inside a document.
type Operation struct {
	Path   string
	Method string
	Node   *Node
}

// Operations returns every operation of doc in path order, then in the
// order methods appear within each path item.
func Operations(doc *Node) []Operation {
	var ops []Operation
	for _, p := range doc.Get("paths").Members() {
		if !p.Value.IsObject() {
			continue
		}
		for _, m := range p.Value.members {
			if httputil.IsMethod(m.Key) && m.Value.IsObject() {
				ops = append(ops, Operation{Path: p.Key, Method: m.Key, Node: m.Value})
			}
		}
	}
	return ops
}

// HasOperations reports whether a path item holds at least one operation.
func HasOperations(pathItem *Node) bool {
	for _, m := range pathItem.Members() {
		if httputil.IsMethod(m.Key) {
			return true
		}
	}
	return false
}

func (o Operation) location() string {
	return fmt.Sprintf("paths.%s.%s", o.Path, o.Method)
}

// Tags returns the operation's tags. A missing tags member yields nil.
func (o Operation) Tags() ([]string, error) {
	tags, ok := o.Node.Lookup("tags")
	if !ok || tags.IsNull() {
		return nil, nil
	}
	if !tags.IsArray() {
		return nil, &oaserrors.ValidationError{Path: o.location(), Field: "tags", Message: "must be an array of strings"}
	}
	out := make([]string, 0, tags.Len())
	for _, t := range tags.items {
		s, ok := t.Str()
		if !ok {
			return nil, &oaserrors.ValidationError{Path: o.location(), Field: "tags", Value: t.Value(), Message: "must be an array of strings"}
		}
		out = append(out, s)
	}
	return out, nil
}

// SetTags replaces the operation's tags.
func (o Operation) SetTags(tags []string) {
	arr := NewArray()
	for _, t := range tags {
		arr.Append(NewString(t))
	}
	o.Node.Set("tags", arr)
}

// Parameters returns the operation's parameter list. A missing member
// yields nil.
func (o Operation) Parameters() (*Node, error) {
	return parameterList(o.Node, o.location())
}

// Security returns the operation's security requirement list, or nil when
// the operation inherits the global requirements.
func (o Operation) Security() (*Node, error) {
	return SecurityRequirements(o.Node, o.location())
}

// EnsureSecurity returns the operation's security list, creating it when
// absent.
func (o Operation) EnsureSecurity() (*Node, error) {
	sec, err := o.Security()
	if err != nil {
		return nil, err
	}
	if sec == nil {
		sec = NewArray()
		o.Node.Set("security", sec)
	}
	return sec, nil
}

// PathParameters returns the parameter list of a path item.
func PathParameters(pathItem *Node, path string) (*Node, error) {
	return parameterList(pathItem, "paths."+path)
}

func parameterList(owner *Node, loc string) (*Node, error) {
	params, ok := owner.Lookup("parameters")
	if !ok || params.IsNull() {
		return nil, nil
	}
	if !params.IsArray() {
		return nil, &oaserrors.ValidationError{Path: loc, Field: "parameters", Message: "must be an array"}
	}
	for _, p := range params.items {
		if !p.IsObject() && !p.IsRef() {
			return nil, &oaserrors.ValidationError{Path: loc, Field: "parameters", Message: "must be an array of objects"}
		}
	}
	return params, nil
}

// ParameterName returns the name of a parameter object.
func ParameterName(param *Node) string {
	name, _ := param.Get("name").Str()
	return name
}

// SecurityRequirements returns the security requirement list held by owner
// (a document or an operation).
func SecurityRequirements(owner *Node, loc string) (*Node, error) {
	sec, ok := owner.Lookup("security")
	if !ok || sec.IsNull() {
		return nil, nil
	}
	if !sec.IsArray() {
		return nil, &oaserrors.ValidationError{Path: loc, Field: "security", Message: "must be an array"}
	}
	for _, req := range sec.items {
		if !req.IsObject() {
			return nil, &oaserrors.ValidationError{Path: loc, Field: "security", Message: "must be an array of objects"}
		}
	}
	return sec, nil
}

// NewRequirement returns a security requirement object naming one scheme.
func NewRequirement(scheme string, scopes []string) *Node {
	arr := NewArray()
	for _, s := range scopes {
		arr.Append(NewString(s))
	}
	return NewObject(Member{Key: scheme, Value: arr})
}

// HasRequirementFor reports whether any requirement in list names scheme.
func HasRequirementFor(list *Node, scheme string) bool {
	for _, req := range list.Items() {
		if req.Has(scheme) {
			return true
		}
	}
	return false
}

// TagNames returns the names of the top-level tag registry, in order.
func TagNames(doc *Node) []string {
	var names []string
	for _, t := range doc.Get("tags").Items() {
		if name, ok := t.Get("name").Str(); ok {
			names = append(names, name)
		}
	}
	return names
}
