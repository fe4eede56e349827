package combiner

import (
	"context"
	"fmt"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/loader"
	"github.com/erraggy/oascombine/oaserrors"
	"github.com/erraggy/oascombine/resolver"
	"github.com/erraggy/oascombine/transformer"
	"go.yaml.in/yaml/v4"
)

// Config is a combine configuration file:
//
//	swagger: "2.0"
//	info:
//	  title: Combined API
//	  version: 1.0.0
//	continueOnError: true
//	apis:
//	  - location: pets.yaml
//	    paths:
//	      exclude: [/pet.put]
//	  - url: https://example.com/store.json
//	    base: /store
//
// Every top-level key other than apis and continueOnError overrides the
// metadata of the combined document.
type Config struct {
	// Location is where the configuration was loaded from.
	Location string
	// APIs lists the sources in order.
	APIs []transformer.Config
	// ContinueOnError is the continueOnError flag of the file.
	ContinueOnError bool
	// Metadata holds the remaining top-level keys, or nil when there are
	// none.
	Metadata *document.Node
}

// Sources returns the configured sources. Relative locations resolve
// against the configuration file's location.
func (c *Config) Sources() ([]Source, error) {
	sources := make([]Source, 0, len(c.APIs))
	for i, api := range c.APIs {
		location := api.SourceLocation()
		if location == "" {
			return nil, &oaserrors.ConfigError{Option: fmt.Sprintf("apis[%d]", i), Message: "location is required"}
		}
		resolved, err := loader.ResolveLocation(c.Location, location)
		if err != nil {
			return nil, &oaserrors.ConfigError{Option: fmt.Sprintf("apis[%d]", i), Value: location, Cause: err}
		}
		sources = append(sources, Source{Location: resolved, Config: api})
	}
	return sources, nil
}

// LoadConfig loads and parses a combine configuration file. A nil l means
// loader.New().
func LoadConfig(ctx context.Context, location string, l loader.Loader) (*Config, error) {
	if l == nil {
		l = loader.New()
	}
	raw, err := l.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("combiner: failed to load config: %w", err)
	}
	return ParseConfig(ctx, raw, location, l)
}

// ParseConfig interprets raw as a combine configuration. References inside
// raw are resolved first, relative to location.
func ParseConfig(ctx context.Context, raw *document.Node, location string, l loader.Loader) (*Config, error) {
	if !raw.IsObject() {
		return nil, &oaserrors.ConfigError{Option: "config", Value: location, Message: "must be an object"}
	}
	doc, err := resolver.New(l).Resolve(ctx, raw, location)
	if err != nil {
		return nil, fmt.Errorf("combiner: failed to resolve config: %w", err)
	}

	cfg := &Config{Location: location}
	apis, ok := doc.Lookup("apis")
	if !ok || !apis.IsArray() || apis.Len() == 0 {
		return nil, &oaserrors.ConfigError{Option: "apis", Message: "must be a non-empty list of sources"}
	}
	data, err := document.EncodeYAML(apis)
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "apis", Cause: err}
	}
	if err := yaml.Load(data, &cfg.APIs, yaml.WithKnownFields()); err != nil {
		return nil, &oaserrors.ConfigError{Option: "apis", Message: "invalid source configuration", Cause: err}
	}

	if flag, ok := doc.Lookup("continueOnError"); ok && !flag.IsNull() {
		b, isBool := flag.Value().(bool)
		if !isBool {
			return nil, &oaserrors.ConfigError{Option: "continueOnError", Value: flag.Value(), Message: "must be a boolean"}
		}
		cfg.ContinueOnError = b
	}

	md := document.NewObject()
	for _, m := range doc.Members() {
		if m.Key != "apis" && m.Key != "continueOnError" {
			md.Set(m.Key, m.Value)
		}
	}
	if md.Len() > 0 {
		cfg.Metadata = md
	}
	return cfg, nil
}
