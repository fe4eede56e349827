package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceInput_Location(t *testing.T) {
	loc, err := sourceInput{File: "specs/../pets.yaml"}.location(0)
	require.NoError(t, err)
	assert.Equal(t, "pets.yaml", loc)

	loc, err = sourceInput{URL: "https://example.com/a.json"}.location(0)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.json", loc)

	loc, err = sourceInput{Content: petsSpec}.location(3)
	require.NoError(t, err)
	assert.Equal(t, "inline/source-3.yaml", loc)
}

func TestSourceInput_InlineSizeLimit(t *testing.T) {
	old := cfg.MaxInlineSize
	cfg.MaxInlineSize = 16
	t.Cleanup(func() { cfg.MaxInlineSize = old })

	_, err := sourceInput{Content: strings.Repeat("x", 17)}.location(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OASCOMBINE_MAX_INLINE_SIZE")
}

func TestBuildSources(t *testing.T) {
	sources, l, err := buildSources([]sourceInput{
		{Content: petsSpec, Only: []string{"/pets"}, RenamePaths: map[string]string{"/pets": "/animals"}},
		{File: "store.yaml", Base: "/shop"},
	})
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "inline/source-0.yaml", sources[0].Location)
	assert.Equal(t, "inline/source-0.yaml", sources[0].Config.Location)
	assert.Equal(t, []string{"/pets"}, sources[0].Config.Paths.Only)
	assert.Equal(t, "/animals", sources[0].Config.RenamePaths["/pets"])
	assert.Equal(t, "/shop", sources[1].Config.Base)

	doc, err := l.Load(context.Background(), "inline/source-0.yaml")
	require.NoError(t, err)
	assert.True(t, doc.Has("swagger"))
}
