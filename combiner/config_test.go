package combiner

import (
	"context"
	"testing"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/loader"
	"github.com/erraggy/oascombine/oaserrors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const combineYAML = `
swagger: "2.0"
info:
  title: Combined Petstore
  version:
    $ref: "version.yaml#/version"
continueOnError: true
apis:
  - location: pets.yaml
    paths:
      exclude: [/pet.put]
    addTags: [medium]
  - url: apis/store.yaml
    base: /shop
  - location: missing.yaml
`

func configFixtures() *loader.MemoryLoader {
	l := fixtures()
	l.Add("combine.yaml", []byte(combineYAML))
	l.Add("version.yaml", []byte("version: 9.9.9\n"))
	l.Add("apis/store.yaml", []byte(storeYAML))
	return l
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(context.Background(), "combine.yaml", configFixtures())
	require.NoError(t, err)

	assert.True(t, cfg.ContinueOnError)
	require.Len(t, cfg.APIs, 3)
	assert.Equal(t, []string{"/pet.put"}, cfg.APIs[0].Paths.Exclude)
	assert.Equal(t, "apis/store.yaml", cfg.APIs[1].URL)
	assert.Equal(t, "/shop", cfg.APIs[1].Base)

	want := map[string]any{
		"swagger": "2.0",
		"info":    map[string]any{"title": "Combined Petstore", "version": "9.9.9"},
	}
	if diff := cmp.Diff(want, cfg.Metadata.Interface()); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	sources, err := cfg.Sources()
	require.NoError(t, err)
	assert.Equal(t, "pets.yaml", sources[0].Location)
	assert.Equal(t, "apis/store.yaml", sources[1].Location)
}

func TestCombineWithOptions_ConfigFile(t *testing.T) {
	result, err := CombineWithOptions(context.Background(),
		WithConfigFile("combine.yaml"),
		WithLoader(configFixtures()),
	)
	require.NoError(t, err)

	doc := result.Document
	assert.False(t, doc.Has("apis"))
	assert.False(t, doc.Has("continueOnError"))
	version, _ := doc.Get("info").Get("version").Str()
	assert.Equal(t, "9.9.9", version)
	title, _ := doc.Get("info").Get("title").Str()
	assert.Equal(t, "Combined Petstore", title)

	assert.Equal(t, []string{"/pet", "/shop/store"}, doc.Get("paths").Keys())
	assert.Equal(t, []string{"get"}, doc.Get("paths").Get("/pet").Keys())
	tags, err := document.Operation{Path: "/pet", Method: "get", Node: doc.Get("paths").Get("/pet").Get("get")}.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"Old", "medium"}, tags)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "missing.yaml", result.Skipped[0].Location)
	assertNoRefs(t, doc)

	_, err = CombineWithOptions(context.Background(),
		WithConfigFile("combine.yaml"),
		WithLoader(configFixtures()),
		WithContinueOnError(false),
	)
	assert.ErrorIs(t, err, oaserrors.ErrSourceUnreachable, "option overrides the file's flag")
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"no apis", `info: {title: x}`},
		{"empty apis", `apis: []`},
		{"apis not a list", `apis: {location: a.yaml}`},
		{"unknown field", `apis: [{location: a.yaml, rename: {a: b}}]`},
		{"bad flag", "continueOnError: sometimes\napis: [{location: a.yaml}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := document.Decode([]byte(tt.config), "combine.yaml")
			require.NoError(t, err)
			_, err = ParseConfig(context.Background(), raw, "combine.yaml", fixtures())
			assert.ErrorIs(t, err, oaserrors.ErrConfig)
		})
	}
}

func TestConfig_SourcesRequireLocation(t *testing.T) {
	raw, err := document.Decode([]byte("apis: [{base: /x}]"), "combine.yaml")
	require.NoError(t, err)
	cfg, err := ParseConfig(context.Background(), raw, "combine.yaml", fixtures())
	require.NoError(t, err)
	assert.Nil(t, cfg.Metadata)

	_, err = cfg.Sources()
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}

func TestLoadConfig_Unreachable(t *testing.T) {
	_, err := LoadConfig(context.Background(), "nope.yaml", fixtures())
	assert.ErrorIs(t, err, oaserrors.ErrSourceUnreachable)
}
