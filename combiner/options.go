package combiner

import (
	"runtime"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/internal/options"
	"github.com/erraggy/oascombine/loader"
	"github.com/erraggy/oascombine/merger"
	"github.com/erraggy/oascombine/oaserrors"
)

// Option is a function that configures a combine operation.
type Option func(*combineConfig) error

type combineConfig struct {
	// Input sources; exactly one kind must be set.
	sources    []Source
	configFile string
	config     *Config

	continueOnError    *bool
	pathStrategy       merger.Strategy
	definitionStrategy merger.Strategy
	primary            int
	metadata           *document.Node
	concurrency        int
	maxRefDepth        int

	loader loader.Loader
	logger loader.Logger
}

func applyOptions(opts ...Option) (*combineConfig, error) {
	cfg := &combineConfig{
		pathStrategy:       merger.StrategyFail,
		definitionStrategy: merger.StrategyFail,
		concurrency:        runtime.GOMAXPROCS(0),
		logger:             loader.NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if err := options.ValidateSingleInputSource("sources",
		"must specify sources, a config file or a config",
		"must specify exactly one of sources, config file or config",
		len(cfg.sources) > 0, cfg.configFile != "", cfg.config != nil,
	); err != nil {
		return nil, err
	}
	if cfg.loader == nil {
		cfg.loader = loader.New(loader.WithLogger(cfg.logger))
	}
	return cfg, nil
}

// WithSources specifies the sources to combine.
func WithSources(sources ...Source) Option {
	return func(cfg *combineConfig) error {
		cfg.sources = append(cfg.sources, sources...)
		return nil
	}
}

// WithConfigFile reads the sources, metadata and continue-on-error flag
// from a combine configuration file. See LoadConfig.
func WithConfigFile(location string) Option {
	return func(cfg *combineConfig) error {
		if location == "" {
			return &oaserrors.ConfigError{Option: "configFile", Message: "location must not be empty"}
		}
		cfg.configFile = location
		return nil
	}
}

// WithConfig uses an already loaded combine configuration.
func WithConfig(c *Config) Option {
	return func(cfg *combineConfig) error {
		cfg.config = c
		return nil
	}
}

// WithContinueOnError skips sources that cannot be loaded or are invalid
// instead of failing. It overrides the flag of a configuration file.
func WithContinueOnError(enabled bool) Option {
	return func(cfg *combineConfig) error {
		cfg.continueOnError = &enabled
		return nil
	}
}

// WithPathStrategy sets how path collisions are handled.
// Default: merger.StrategyFail.
func WithPathStrategy(s merger.Strategy) Option {
	return func(cfg *combineConfig) error {
		if !s.IsValid() {
			return &oaserrors.ConfigError{Option: "pathStrategy", Value: string(s), Message: "unknown collision strategy"}
		}
		cfg.pathStrategy = s
		return nil
	}
}

// WithDefinitionStrategy sets how differing definitions under the same
// name are handled. Default: merger.StrategyFail.
func WithDefinitionStrategy(s merger.Strategy) Option {
	return func(cfg *combineConfig) error {
		if !s.IsValid() {
			return &oaserrors.ConfigError{Option: "definitionStrategy", Value: string(s), Message: "unknown collision strategy"}
		}
		cfg.definitionStrategy = s
		return nil
	}
}

// WithPrimary selects the source whose metadata the combined document
// carries. Default: 0.
func WithPrimary(index int) Option {
	return func(cfg *combineConfig) error {
		if index < 0 {
			return &oaserrors.ConfigError{Option: "primary", Value: index, Message: "must not be negative"}
		}
		cfg.primary = index
		return nil
	}
}

// WithMetadata overrides top-level metadata (info, host, servers, ...) of
// the combined document. md must be an object.
func WithMetadata(md *document.Node) Option {
	return func(cfg *combineConfig) error {
		if md != nil && !md.IsObject() {
			return &oaserrors.ConfigError{Option: "metadata", Message: "must be an object"}
		}
		cfg.metadata = md
		return nil
	}
}

// WithConcurrency limits how many sources are processed at once.
// Default: runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(cfg *combineConfig) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "concurrency", Value: n, Message: "must be at least 1"}
		}
		cfg.concurrency = n
		return nil
	}
}

// WithMaxRefDepth overrides resolver.MaxRefDepth.
func WithMaxRefDepth(n int) Option {
	return func(cfg *combineConfig) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "maxRefDepth", Value: n, Message: "must be at least 1"}
		}
		cfg.maxRefDepth = n
		return nil
	}
}

// WithLoader sets the loader for sources and referenced documents.
// Default: loader.New().
func WithLoader(l loader.Loader) Option {
	return func(cfg *combineConfig) error {
		cfg.loader = l
		return nil
	}
}

// WithLogger sets the logger. Default: loader.NopLogger.
func WithLogger(l loader.Logger) Option {
	return func(cfg *combineConfig) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}
