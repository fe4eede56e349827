package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRef(t *testing.T) {
	tests := []struct {
		ref, loc, frag string
	}{
		{"#/definitions/Pet", "", "/definitions/Pet"},
		{"other.yaml#/definitions/A", "other.yaml", "/definitions/A"},
		{"other.yaml", "other.yaml", ""},
		{"https://host/x.json#/a", "https://host/x.json", "/a"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			loc, frag := SplitRef(tt.ref)
			assert.Equal(t, tt.loc, loc)
			assert.Equal(t, tt.frag, frag)
		})
	}
}

func TestParsePointer(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"root", "", nil, false},
		{"simple", "/definitions/Pet", []string{"definitions", "Pet"}, false},
		{"escaped slash", "/paths/~1pets~1{id}", []string{"paths", "/pets/{id}"}, false},
		{"escaped tilde", "/a~0b", []string{"a~b"}, false},
		{"tilde one literal", "/a~01", []string{"a~1"}, false},
		{"percent encoded", "/paths/~1pets%7Bid%7D", []string{"paths", "/pets{id}"}, false},
		{"no leading slash", "definitions/Pet", nil, true},
		{"bad escape", "/a%zz", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePointer(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPointer(t *testing.T) {
	assert.Equal(t, "/paths/~1pets~1{id}/get", FormatPointer([]string{"paths", "/pets/{id}", "get"}))
	assert.Equal(t, "", FormatPointer(nil))
}

func TestNode_At(t *testing.T) {
	doc := NewObject(
		Member{Key: "list", Value: NewArray(NewString("zero"), NewObject(Member{Key: "k", Value: NewScalar(1)}))},
		Member{Key: "ref", Value: NewRef("#/list")},
	)

	n, ok := doc.At([]string{"list", "1", "k"})
	require.True(t, ok)
	assert.Equal(t, int64(1), n.Value())

	_, ok = doc.At([]string{"list", "01"})
	assert.False(t, ok, "leading zeros are not array indexes")
	_, ok = doc.At([]string{"list", "5"})
	assert.False(t, ok)
	_, ok = doc.At([]string{"ref", "0"})
	assert.False(t, ok, "At does not follow markers")

	root, ok := doc.At(nil)
	require.True(t, ok)
	assert.Same(t, doc, root)
}
