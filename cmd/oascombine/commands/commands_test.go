package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/oaserrors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petsYAML = `swagger: "2.0"
info: {title: Pets, version: "1.0.0"}
paths:
  /pets:
    get:
      responses:
        "200":
          description: ok
          schema: {$ref: "#/definitions/Pet"}
  /internal/health:
    get:
      responses:
        "200": {description: ok}
definitions:
  Pet: {type: object}
`

const storeYAML = `swagger: "2.0"
info: {title: Store, version: "1.0.0"}
paths:
  /orders:
    get:
      responses:
        "200": {description: ok}
`

const brokenRefYAML = `swagger: "2.0"
info: {title: Broken, version: "1.0.0"}
paths:
  /broken:
    get:
      responses:
        "200": {$ref: "#/responses/Missing"}
`

type runResult struct {
	stdout string
	stderr string
	code   int
	err    error
}

func run(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(viper.New(), &stderr)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return runResult{stdout: stdout.String(), stderr: stderr.String(), code: ExitCode(err), err: err}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand(viper.New(), &bytes.Buffer{})
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"combine", "mcp", "version"} {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestCombineCommandFlags(t *testing.T) {
	root := newRootCommand(viper.New(), &bytes.Buffer{})
	cmd, _, err := root.Find([]string{"combine"})
	require.NoError(t, err)
	for _, name := range []string{
		"config", "output", "format", "continue-on-error", "path-strategy",
		"definition-strategy", "primary", "base", "only", "exclude", "add-tags",
		"concurrency", "max-ref-depth", "quiet",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestCombine_Locations(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pets.yaml": petsYAML, "store.yaml": storeYAML})

	res := run(t, "combine", "--base", "/v1", "--exclude", "/internal/**",
		filepath.Join(dir, "pets.yaml"), filepath.Join(dir, "store.yaml"))
	require.NoError(t, res.err)

	doc, err := document.Decode([]byte(res.stdout), "out.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"/v1/pets", "/v1/orders"}, doc.Get("paths").Keys())
	schema, ok := doc.At([]string{"paths", "/v1/pets", "get", "responses", "200", "schema"})
	require.True(t, ok)
	assert.False(t, schema.IsRef())
	assert.Contains(t, res.stderr, "Combined 2 of 2 sources")
}

func TestCombine_ConfigFileToJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"pets.yaml":  petsYAML,
		"store.yaml": storeYAML,
		"combine.yaml": `info: {title: Shop, version: "2.0.0"}
apis:
  - location: pets.yaml
    paths:
      only: [/pets]
  - location: store.yaml
    base: /store
`,
	})
	out := filepath.Join(dir, "combined.json")

	res := run(t, "combine", "-q", "--config", filepath.Join(dir, "combine.yaml"), "-o", out)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Empty(t, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, document.FormatJSON, document.FormatFromContent(data))
	doc, err := document.Decode(data, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"/pets", "/store/orders"}, doc.Get("paths").Keys())
	title, _ := doc.Get("info").Get("title").Str()
	assert.Equal(t, "Shop", title)
	assert.False(t, doc.Has("apis"))
}

func TestCombine_ExitCodes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"pets.yaml":   petsYAML,
		"store.yaml":  storeYAML,
		"broken.yaml": brokenRefYAML,
	})
	pets := filepath.Join(dir, "pets.yaml")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"collision", []string{"combine", pets, pets}, ExitCollision},
		{"unreachable", []string{"combine", pets, filepath.Join(dir, "missing.yaml")}, ExitSource},
		{"broken reference", []string{"combine", filepath.Join(dir, "broken.yaml")}, ExitReference},
		{"bad strategy", []string{"combine", "--path-strategy", "rename", pets}, ExitConfig},
		{"bad format", []string{"combine", "--format", "xml", pets}, ExitConfig},
		{"no sources", []string{"combine"}, ExitConfig},
		{"config and locations", []string{"combine", "--config", "c.yaml", pets}, ExitConfig},
		{"filters with config", []string{"combine", "--config", "c.yaml", "--base", "/v1"}, ExitConfig},
		{"output overwrites a source", []string{"combine", "-o", pets, pets, filepath.Join(dir, "store.yaml")}, ExitConfig},
		{"output is a directory", []string{"combine", "-o", dir, pets}, ExitConfig},
		{"unknown flag", []string{"combine", "--nope", pets}, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, tt.want, res.code, "error: %v", res.err)
		})
	}
}

func TestCombine_ContinueOnError(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pets.yaml": petsYAML})

	res := run(t, "combine", "--continue-on-error", filepath.Join(dir, "pets.yaml"), filepath.Join(dir, "missing.yaml"))
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Combined 1 of 2 sources")
	assert.Contains(t, res.stderr, "skipped: source 2")
}

func TestCombine_EnvironmentSettings(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pets.yaml": petsYAML})
	pets := filepath.Join(dir, "pets.yaml")
	t.Setenv("OASCOMBINE_PATH_STRATEGY", "accept-left")

	res := run(t, "combine", pets, pets)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "path_collision")

	res = run(t, "combine", "--path-strategy", "fail", pets, pets)
	assert.Equal(t, ExitCollision, res.code, "flag overrides the environment")
}

func TestCombine_SettingsFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"pets.yaml":     petsYAML,
		"settings.yaml": "continue_on_error: true\nformat: json\nlog_level: info\n",
	})

	res := run(t, "--settings", filepath.Join(dir, "settings.yaml"), "combine",
		filepath.Join(dir, "pets.yaml"), filepath.Join(dir, "missing.yaml"))
	require.NoError(t, res.err)
	assert.Equal(t, document.FormatJSON, document.FormatFromContent([]byte(res.stdout)))
	assert.Contains(t, res.stderr, "combined sources", "info logging is enabled")

	res = run(t, "--settings", filepath.Join(dir, "nope.yaml"), "combine", filepath.Join(dir, "pets.yaml"))
	assert.Equal(t, ExitConfig, res.code)
}

func TestVersionCommand(t *testing.T) {
	res := run(t, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "oascombine v")
	assert.Contains(t, res.stdout, "Go Version:")
}

func TestMCPCommand(t *testing.T) {
	old := runMCP
	t.Cleanup(func() { runMCP = old })

	called := false
	runMCP = func(context.Context) error {
		called = true
		return errors.New("transport closed")
	}
	res := run(t, "mcp")
	assert.True(t, called)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "mcp server: transport closed")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"config", &oaserrors.ConfigError{Option: "x"}, ExitConfig},
		{"collision", &oaserrors.CollisionError{Section: "paths", Key: "/a"}, ExitCollision},
		{"reference", &oaserrors.ReferenceError{Ref: "#/a"}, ExitReference},
		{"reference to unreachable", &oaserrors.ReferenceError{Ref: "b.yaml#/a", Cause: &oaserrors.FetchError{Location: "b.yaml"}}, ExitReference},
		{"unreachable", &oaserrors.SourceError{Index: 1, Cause: &oaserrors.FetchError{Location: "b.yaml"}}, ExitSource},
		{"invalid", fmt.Errorf("wrapped: %w", &oaserrors.ValidationError{Field: "info"}), ExitSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestOutputFormat(t *testing.T) {
	f, err := outputFormat("", "")
	require.NoError(t, err)
	assert.Equal(t, document.FormatYAML, f)

	f, err = outputFormat("", "out.json")
	require.NoError(t, err)
	assert.Equal(t, document.FormatJSON, f)

	f, err = outputFormat("yaml", "out.json")
	require.NoError(t, err)
	assert.Equal(t, document.FormatYAML, f)

	_, err = outputFormat("toml", "")
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}

func TestZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel))

	adapter.Debug("hidden")
	adapter.With("source", "pets.yaml").Info("loaded", "paths", 2)
	adapter.Warn("skipping source", "index", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"source":"pets.yaml"`)
	assert.Contains(t, out, `"paths":2`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"index":1`)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "bogus")
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger = newLogger(&buf, "debug")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
