package mcpserver

import (
	"fmt"
	"path/filepath"

	"github.com/erraggy/oascombine"
	"github.com/erraggy/oascombine/combiner"
	"github.com/erraggy/oascombine/loader"
	"github.com/erraggy/oascombine/transformer"
)

// sourceInput is one source of a combine call: the document, given as
// exactly one of File, URL or Content, plus its transformation.
type sourceInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OAS file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch an OAS document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline OAS document content (JSON or YAML)"`

	Only           []string            `json:"only,omitempty"            jsonschema:"Path patterns to keep, e.g. /pets/** or /pet.get"`
	Exclude        []string            `json:"exclude,omitempty"         jsonschema:"Path patterns to drop, e.g. /internal/** or /pet.put"`
	ParamsOnly     []string            `json:"params_only,omitempty"     jsonschema:"Parameter names to keep"`
	ParamsExclude  []string            `json:"params_exclude,omitempty"  jsonschema:"Parameter names to drop"`
	RenamePaths    map[string]string   `json:"rename_paths,omitempty"    jsonschema:"Path keys to rename, old to new"`
	RenameTags     map[string]string   `json:"rename_tags,omitempty"     jsonschema:"Tags to rename, old to new"`
	RenameSecurity map[string]string   `json:"rename_security,omitempty" jsonschema:"Security schemes to rename, old to new"`
	AddTags        []string            `json:"add_tags,omitempty"        jsonschema:"Tags appended to every operation"`
	AddSecurity    map[string][]string `json:"add_security,omitempty"    jsonschema:"Security requirements appended to every operation, scheme to scopes"`
	Base           string              `json:"base,omitempty"            jsonschema:"Prefix prepended to every path, e.g. /v1"`
}

// inlineLocation names the in-memory document holding source i's content.
func inlineLocation(i int) string {
	return fmt.Sprintf("inline/source-%d.yaml", i)
}

// location returns where the source document is loaded from.
func (s sourceInput) location(i int) (string, error) {
	count := 0
	for _, v := range []string{s.File, s.URL, s.Content} {
		if v != "" {
			count++
		}
	}
	if count != 1 {
		return "", fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}
	switch {
	case s.File != "":
		return filepath.Clean(s.File), nil
	case s.URL != "":
		if !loader.IsURL(s.URL) {
			return "", fmt.Errorf("url must start with http:// or https://: %q", s.URL)
		}
		return s.URL, nil
	}
	if int64(len(s.Content)) > cfg.MaxInlineSize {
		return "", fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASCOMBINE_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}
	return inlineLocation(i), nil
}

func (s sourceInput) transform() transformer.Config {
	return transformer.Config{
		Paths:          transformer.FilterConfig{Only: s.Only, Exclude: s.Exclude},
		Parameters:     transformer.FilterConfig{Only: s.ParamsOnly, Exclude: s.ParamsExclude},
		RenamePaths:    s.RenamePaths,
		RenameTags:     s.RenameTags,
		RenameSecurity: s.RenameSecurity,
		AddTags:        s.AddTags,
		AddSecurity:    s.AddSecurity,
		Base:           s.Base,
	}
}

// buildSources converts the tool input into combiner sources and a loader
// that serves inline content from memory.
func buildSources(inputs []sourceInput) ([]combiner.Source, loader.Loader, error) {
	sources := make([]combiner.Source, 0, len(inputs))
	inline := make(map[string][]byte)
	for i, in := range inputs {
		location, err := in.location(i)
		if err != nil {
			return nil, nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if in.Content != "" {
			inline[location] = []byte(in.Content)
		}
		tc := in.transform()
		tc.Location = location
		sources = append(sources, combiner.Source{Location: location, Config: tc})
	}
	return sources, newLoader(inline), nil
}

func newLoader(inline map[string][]byte) loader.Loader {
	opts := []loader.Option{
		loader.WithMemory(inline),
		loader.WithUserAgent(oascombine.UserAgent() + " mcp"),
	}
	// Inject SSRF-safe HTTP client for URL sources unless private IPs are allowed.
	if !cfg.AllowPrivateIPs {
		opts = append(opts, loader.WithHTTPClient(newSafeHTTPClient()))
	}
	return loader.New(opts...)
}
