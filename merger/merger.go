package merger

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/internal/severity"
	"github.com/erraggy/oascombine/oaserrors"
)

// Config controls how documents are merged.
type Config struct {
	// PathStrategy handles a path key contributed by two documents.
	PathStrategy Strategy
	// DefinitionStrategy handles a registry key (definition, parameter,
	// security scheme, ...) contributed by two documents with different
	// values. Identical values never collide.
	DefinitionStrategy Strategy
	// Primary is the index of the document whose metadata (info, host,
	// servers, ...) the combined document carries.
	Primary int
	// Metadata overrides top-level metadata fields of the primary document.
	Metadata *document.Node
}

// DefaultConfig returns a Config that fails on every collision and takes
// metadata from the first document.
func DefaultConfig() Config {
	return Config{PathStrategy: StrategyFail, DefinitionStrategy: StrategyFail}
}

// Contribution is one transformed document entering the merge.
type Contribution struct {
	// Location identifies the document in collisions and warnings.
	Location string
	// Document is the resolved, transformed document.
	Document *document.Node
}

// Merger folds documents into a Combined document.
type Merger struct {
	config Config
}

// New returns a Merger. Empty strategies default to StrategyFail.
func New(cfg Config) *Merger {
	cfg.PathStrategy = cfg.PathStrategy.orDefault()
	cfg.DefinitionStrategy = cfg.DefinitionStrategy.orDefault()
	return &Merger{config: cfg}
}

// Merge folds contribs in order, starting from an empty Combined.
func (m *Merger) Merge(contribs []Contribution) (*Combined, error) {
	if len(contribs) == 0 {
		return nil, &oaserrors.ConfigError{Option: "sources", Message: "no documents to merge"}
	}
	if m.config.Primary < 0 || m.config.Primary >= len(contribs) {
		return nil, &oaserrors.ConfigError{
			Option:  "primary",
			Value:   m.config.Primary,
			Message: fmt.Sprintf("must be between 0 and %d", len(contribs)-1),
		}
	}
	for _, s := range []Strategy{m.config.PathStrategy, m.config.DefinitionStrategy} {
		if !s.IsValid() {
			return nil, &oaserrors.ConfigError{Option: "strategy", Value: string(s), Message: "unknown collision strategy"}
		}
	}

	var acc *Combined
	for _, c := range contribs {
		next, err := m.Fold(acc, c)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

// Fold merges c into acc and returns the result as a new Combined. acc is
// not modified, and a nil acc stands for the empty Combined.
func (m *Merger) Fold(acc *Combined, c Contribution) (*Combined, error) {
	dialect := document.DetectDialect(c.Document)
	if dialect == document.DialectUnknown {
		return nil, &oaserrors.ValidationError{
			Path:    c.Location,
			Message: "not a Swagger 2.0 or OpenAPI 3.x document",
		}
	}
	if acc != nil && acc.count > 0 && acc.dialect != dialect {
		return nil, &oaserrors.ConfigError{
			Option:  "sources",
			Value:   c.Location,
			Message: fmt.Sprintf("cannot combine %s with %s", dialect, acc.dialect),
		}
	}

	next := acc.clone()
	next.dialect = dialect
	if next.count == m.config.Primary {
		next.takeMetadata(c, m.config.Metadata)
	}
	next.sources = append(next.sources, snapshotSource(c, dialect))

	if err := m.mergePaths(next, c); err != nil {
		return nil, err
	}
	if err := m.mergeRegistries(next, c); err != nil {
		return nil, err
	}
	mergeTags(next, c)
	mergeSecurity(next, c)
	next.count++
	return next, nil
}

func (m *Merger) mergePaths(next *Combined, c Contribution) error {
	for _, p := range c.Document.Get("paths").Members() {
		err := next.mergeKey(next.paths, "paths", p.Key, p.Value, c.Location, m.config.PathStrategy, false, WarnPathCollision)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Merger) mergeRegistries(next *Combined, c Contribution) error {
	for _, r := range document.Registries(next.dialect) {
		src := r.Lookup(c.Document)
		if src == nil {
			continue
		}
		target := next.registry(r.Name)
		for _, entry := range src.Members() {
			err := next.mergeKey(target, r.Name, entry.Key, entry.Value, c.Location, m.config.DefinitionStrategy, true, WarnDefinitionCollision)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeTags appends tags not yet declared. The first declaration of a name
// wins.
func mergeTags(next *Combined, c Contribution) {
	for _, tag := range c.Document.Get("tags").Items() {
		name, ok := tag.Get("name").Str()
		if !ok {
			if !slices.ContainsFunc(next.tags.Items(), tag.Equal) {
				next.tags.Append(tag)
			}
			continue
		}
		i := slices.IndexFunc(next.tags.Items(), func(t *document.Node) bool {
			n, _ := t.Get("name").Str()
			return n == name
		})
		if i < 0 {
			next.tags.Append(tag)
			next.origins[originKey("tags", name)] = c.Location
			continue
		}
		if !next.tags.Index(i).Equal(tag) {
			next.warnings = append(next.warnings, newTagConflictWarning(name, next.origins[originKey("tags", name)], c.Location))
		}
	}
}

// mergeSecurity unions the global security requirements.
func mergeSecurity(next *Combined, c Contribution) {
	for _, req := range c.Document.Get("security").Items() {
		if !slices.ContainsFunc(next.security.Items(), req.Equal) {
			next.security.Append(req)
		}
	}
}

// Combined is the result of merging documents. It is immutable once
// returned by Fold.
type Combined struct {
	dialect document.Dialect
	count   int
	primary int

	order      []string
	metadata   *document.Node
	paths      *document.Node
	registries map[string]*document.Node
	tags       *document.Node
	security   *document.Node

	origins  map[string]string
	sources  []sourceMeta
	warnings []*Warning
}

type sourceMeta struct {
	location string
	version  string
	fields   map[string]*document.Node
}

// compared lists the metadata fields whose disagreement is reported.
var compared = []string{"host", "basePath", "schemes", "servers"}

func snapshotSource(c Contribution, d document.Dialect) sourceMeta {
	field := "swagger"
	if d == document.DialectOpenAPI3 {
		field = "openapi"
	}
	version, _ := c.Document.Get(field).Str()
	meta := sourceMeta{location: c.Location, version: version, fields: make(map[string]*document.Node)}
	for _, f := range compared {
		if v, ok := c.Document.Lookup(f); ok {
			meta.fields[f] = v
		}
	}
	return meta
}

func originKey(section, key string) string {
	return section + "\x00" + key
}

func shallowCopy(n *document.Node) *document.Node {
	return document.NewObject(n.Members()...)
}

func (c *Combined) clone() *Combined {
	if c == nil {
		return &Combined{
			paths:      document.NewObject(),
			registries: make(map[string]*document.Node),
			tags:       document.NewArray(),
			security:   document.NewArray(),
			origins:    make(map[string]string),
		}
	}
	next := &Combined{
		dialect:    c.dialect,
		count:      c.count,
		primary:    c.primary,
		order:      c.order,
		metadata:   c.metadata,
		paths:      shallowCopy(c.paths),
		registries: make(map[string]*document.Node, len(c.registries)),
		tags:       document.NewArray(c.tags.Items()...),
		security:   document.NewArray(c.security.Items()...),
		origins:    maps.Clone(c.origins),
		sources:    slices.Clone(c.sources),
		warnings:   slices.Clone(c.warnings),
	}
	for name, reg := range c.registries {
		next.registries[name] = shallowCopy(reg)
	}
	return next
}

func (c *Combined) registry(name string) *document.Node {
	reg, ok := c.registries[name]
	if !ok {
		reg = document.NewObject()
		c.registries[name] = reg
	}
	return reg
}

func (c *Combined) mergeKey(target *document.Node, section, key string, value *document.Node, location string, strategy Strategy, idempotent bool, category WarningCategory) error {
	existing, ok := target.Lookup(key)
	if !ok {
		target.Set(key, value)
		c.origins[originKey(section, key)] = location
		return nil
	}
	if idempotent && existing.Equal(value) {
		return nil
	}
	first := c.origins[originKey(section, key)]
	switch strategy {
	case StrategyAcceptLeft:
	case StrategyAcceptRight:
		target.Set(key, value)
		c.origins[originKey(section, key)] = location
	default:
		return &oaserrors.CollisionError{Section: section, Key: key, FirstSource: first, SecondSource: location}
	}
	c.warnings = append(c.warnings, newCollisionWarning(category, section, key, strategy, first, location))
	return nil
}

// isSection reports whether a top-level key is assembled by the merge
// rather than taken from the primary document.
func (c *Combined) isSection(key string) bool {
	switch key {
	case "paths", "tags", "security":
		return true
	}
	return slices.Contains(document.RegistryRoots(c.dialect), key)
}

func (c *Combined) takeMetadata(primary Contribution, override *document.Node) {
	c.primary = c.count
	c.order = primary.Document.Keys()
	c.metadata = document.NewObject()
	for _, m := range primary.Document.Members() {
		if !c.isSection(m.Key) {
			c.metadata.Set(m.Key, m.Value)
		}
	}
	for _, m := range override.Members() {
		if c.isSection(m.Key) {
			c.warnings = append(c.warnings, &Warning{
				Category: WarnMetadataIgnored,
				Path:     m.Key,
				Message:  fmt.Sprintf("metadata override %q ignored: it is assembled from the sources", m.Key),
				Severity: severity.SeverityWarning,
			})
			continue
		}
		c.metadata.Set(m.Key, m.Value)
	}
}

// Dialect returns the dialect shared by the merged documents.
func (c *Combined) Dialect() document.Dialect {
	return c.dialect
}

// Len returns the number of documents merged.
func (c *Combined) Len() int {
	return c.count
}

// Warnings returns the conditions met while merging, followed by
// disagreements between the primary document's metadata and the others.
func (c *Combined) Warnings() []*Warning {
	warnings := slices.Clone(c.warnings)
	if c.metadata == nil {
		return warnings
	}
	primary := c.sources[c.primary]
	versionField := "swagger"
	if c.dialect == document.DialectOpenAPI3 {
		versionField = "openapi"
	}
	for i, s := range c.sources {
		if i == c.primary {
			continue
		}
		if minorVersion(s.version) != minorVersion(primary.version) {
			warnings = append(warnings, newVersionMismatchWarning(versionField, primary.version, s.version, s.location))
		}
		for _, f := range compared {
			v, ok := s.fields[f]
			if ok && !v.Equal(primary.fields[f]) {
				warnings = append(warnings, newMetadataMismatchWarning(f, primary.location, s.location))
			}
		}
	}
	return warnings
}

// Document renders the combined document. Top-level keys follow the
// primary document's order; merged sections it lacks come last.
func (c *Combined) Document() *document.Node {
	out := document.NewObject()
	emit := func(key string) {
		if out.Has(key) {
			return
		}
		if c.isSection(key) {
			if v := c.section(key); v != nil {
				out.Set(key, v)
			}
			return
		}
		if v, ok := c.metadata.Lookup(key); ok {
			out.Set(key, v)
		}
	}
	for _, key := range c.order {
		emit(key)
	}
	for _, key := range c.metadata.Keys() {
		emit(key)
	}
	emit("paths")
	for _, root := range document.RegistryRoots(c.dialect) {
		emit(root)
	}
	emit("tags")
	emit("security")
	return out
}

// section assembles a merged top-level member, or returns nil when no
// document contributed to it.
func (c *Combined) section(key string) *document.Node {
	switch key {
	case "paths":
		return c.paths
	case "tags":
		if c.tags.Len() == 0 {
			return nil
		}
		return c.tags
	case "security":
		if c.security.Len() == 0 {
			return nil
		}
		return c.security
	}
	var out *document.Node
	for _, r := range document.Registries(c.dialect) {
		if r.Path[0] != key {
			continue
		}
		reg, ok := c.registries[r.Name]
		if !ok {
			continue
		}
		if len(r.Path) == 1 {
			return reg
		}
		if out == nil {
			out = document.NewObject()
		}
		out.Set(r.Path[1], reg)
	}
	return out
}

func minorVersion(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return v
	}
	return parts[0] + "." + parts[1]
}
