package transformer

// Config is the per-source transformation configuration. Field names match
// the combine configuration file.
type Config struct {
	// Location is the path or URL of the source document.
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
	// URL is accepted as an alias for Location.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`

	Paths      FilterConfig `yaml:"paths,omitempty" json:"paths,omitempty"`
	Parameters FilterConfig `yaml:"parameters,omitempty" json:"parameters,omitempty"`

	RenamePaths    map[string]string `yaml:"renamePaths,omitempty" json:"renamePaths,omitempty"`
	RenameTags     map[string]string `yaml:"renameTags,omitempty" json:"renameTags,omitempty"`
	RenameSecurity map[string]string `yaml:"renameSecurity,omitempty" json:"renameSecurity,omitempty"`

	AddTags       []string            `yaml:"addTags,omitempty" json:"addTags,omitempty"`
	AddSecurity   map[string][]string `yaml:"addSecurity,omitempty" json:"addSecurity,omitempty"`
	SecurityRules []SecurityRule      `yaml:"securityRules,omitempty" json:"securityRules,omitempty"`

	// Base is prepended to every path key.
	Base string `yaml:"base,omitempty" json:"base,omitempty"`
}

// FilterConfig is a whitelist and a blacklist. An empty Only lets
// everything through.
type FilterConfig struct {
	Only    []string `yaml:"only,omitempty" json:"only,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// IsZero reports whether the filter has no entries.
func (f FilterConfig) IsZero() bool {
	return len(f.Only) == 0 && len(f.Exclude) == 0
}

// SecurityRule adds a security requirement to the operations matched by
// Paths.
type SecurityRule struct {
	Paths  []string `yaml:"paths" json:"paths"`
	Scheme string   `yaml:"scheme" json:"scheme"`
	Scopes []string `yaml:"scopes,omitempty" json:"scopes,omitempty"`
}

// SourceLocation returns Location, falling back to URL.
func (c Config) SourceLocation() string {
	if c.Location != "" {
		return c.Location
	}
	return c.URL
}

// IsZero reports whether the configuration changes nothing.
func (c Config) IsZero() bool {
	return c.Paths.IsZero() && c.Parameters.IsZero() &&
		len(c.RenamePaths) == 0 && len(c.RenameTags) == 0 && len(c.RenameSecurity) == 0 &&
		len(c.AddTags) == 0 && len(c.AddSecurity) == 0 && len(c.SecurityRules) == 0 &&
		c.Base == ""
}
