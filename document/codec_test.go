package document

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/erraggy/oascombine/oaserrors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstoreYAML = `swagger: "2.0"
info:
  title: Petstore
  version: 1.0.0
paths:
  /pets:
    get:
      tags: [pets]
      responses:
        200:
          description: ok
          schema:
            $ref: '#/definitions/Pet'
            description: ignored sibling
definitions:
  Pet:
    type: object
    properties:
      id:
        type: integer
        format: int64
        maximum: 10.5
`

func TestDecode_YAML(t *testing.T) {
	doc, err := Decode([]byte(petstoreYAML), "petstore.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"swagger", "info", "paths", "definitions"}, doc.Keys())

	schema, ok := doc.At([]string{"paths", "/pets", "get", "responses", "200", "schema"})
	require.True(t, ok, "integer response key decodes as string key")
	assert.True(t, schema.IsRef())
	assert.Equal(t, "#/definitions/Pet", schema.Ref())

	maximum, ok := doc.At([]string{"definitions", "Pet", "properties", "id", "maximum"})
	require.True(t, ok)
	assert.Equal(t, 10.5, maximum.Value())

	version, _ := doc.Get("info").Get("version").Str()
	assert.Equal(t, "1.0.0", version)
}

func TestDecode_JSON(t *testing.T) {
	input := `{"openapi":"3.0.3","info":{"title":"T","version":"1"},"paths":{"/b":{},"/a":{}},"x-n":3,"x-null":null,"x-bool":true}`
	doc, err := Decode([]byte(input), "api.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"/b", "/a"}, doc.Get("paths").Keys())
	assert.Equal(t, int64(3), doc.Get("x-n").Value())
	assert.True(t, doc.Get("x-null").IsNull())
	assert.Equal(t, true, doc.Get("x-bool").Value())
}

func TestDecode_MergeKeys(t *testing.T) {
	input := `
base: &base
  type: string
  format: uuid
derived:
  <<: *base
  format: email
`
	doc, err := Decode([]byte(input), "merge.yaml")
	require.NoError(t, err)

	want := map[string]any{"type": "string", "format": "email"}
	if diff := cmp.Diff(want, doc.Get("derived").Interface()); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t"},
		{"malformed", "paths: [unclosed"},
		{"bad json", `{"a": [}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input), "bad.yaml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, oaserrors.ErrSourceInvalid))
			var parseErr *oaserrors.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "bad.yaml", parseErr.Path)
		})
	}
}

func TestEncodeJSON_PreservesOrder(t *testing.T) {
	doc := NewObject(
		Member{Key: "zebra", Value: NewScalar(1)},
		Member{Key: "alpha", Value: NewArray(NewString("x"), Null(), NewScalar(2.5))},
		Member{Key: "ref", Value: NewRef("#/a")},
	)

	out, err := EncodeJSON(doc, "")
	require.NoError(t, err)
	assert.Equal(t, `{"zebra":1,"alpha":["x",null,2.5],"ref":{"$ref":"#/a"}}`, string(out))

	indented, err := EncodeJSON(doc, "  ")
	require.NoError(t, err)
	assert.True(t, json.Valid(indented))
	assert.Less(t, strings.Index(string(indented), "zebra"), strings.Index(string(indented), "alpha"))
}

func TestEncodeYAML_RoundTrip(t *testing.T) {
	doc, err := Decode([]byte(petstoreYAML), "petstore.yaml")
	require.NoError(t, err)

	out, err := EncodeYAML(doc)
	require.NoError(t, err)

	again, err := Decode(out, "roundtrip.yaml")
	require.NoError(t, err)
	assert.True(t, doc.Equal(again), "YAML round trip changed the tree:\n%s", out)
	assert.Equal(t, doc.Keys(), again.Keys())

	s := string(out)
	assert.Less(t, strings.Index(s, "swagger"), strings.Index(s, "definitions"))
}

func TestEncode_StringsThatLookLikeNumbers(t *testing.T) {
	doc := NewObject(
		Member{Key: "200", Value: NewString("1.0")},
		Member{Key: "flag", Value: NewString("true")},
		Member{Key: "whole", Value: NewScalar(2.0)},
	)
	out, err := EncodeYAML(doc)
	require.NoError(t, err)

	again, err := Decode(out, "x.yaml")
	require.NoError(t, err)
	v, ok := again.Get("200").Str()
	require.True(t, ok)
	assert.Equal(t, "1.0", v)
	flag, ok := again.Get("flag").Str()
	require.True(t, ok)
	assert.Equal(t, "true", flag)
	assert.Equal(t, 2.0, again.Get("whole").Value())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}

func TestFormatDetection(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("b.yml"))
	assert.Equal(t, FormatUnknown, FormatFromPath("b.txt"))
	assert.Equal(t, FormatJSON, FormatFromContent([]byte("  \n{}")))
	assert.Equal(t, FormatYAML, FormatFromContent([]byte("openapi: 3.0.0")))
	assert.Equal(t, FormatUnknown, FormatFromContent(nil))
}
