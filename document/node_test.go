package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_SetKeepsPosition(t *testing.T) {
	obj := NewObject(
		Member{Key: "b", Value: NewString("1")},
		Member{Key: "a", Value: NewString("2")},
	)
	obj.Set("b", NewString("3"))
	obj.Set("c", NewString("4"))

	assert.Equal(t, []string{"b", "a", "c"}, obj.Keys())
	s, ok := obj.Get("b").Str()
	require.True(t, ok)
	assert.Equal(t, "3", s)
}

func TestNode_Delete(t *testing.T) {
	obj := NewObject(
		Member{Key: "a", Value: NewScalar(1)},
		Member{Key: "b", Value: NewScalar(2)},
		Member{Key: "c", Value: NewScalar(3)},
	)

	assert.True(t, obj.Delete("a"))
	assert.False(t, obj.Delete("a"))
	assert.Equal(t, []string{"b", "c"}, obj.Keys())
	// index stays consistent after the shift
	assert.Equal(t, int64(3), obj.Get("c").Value())
	obj.Set("c", NewScalar(30))
	assert.Equal(t, []string{"b", "c"}, obj.Keys())
	assert.Equal(t, int64(30), obj.Get("c").Value())
}

func TestNode_RenameKey(t *testing.T) {
	obj := NewObject(
		Member{Key: "/a", Value: NewObject()},
		Member{Key: "/b", Value: NewObject()},
		Member{Key: "/c", Value: NewObject()},
	)

	assert.True(t, obj.RenameKey("/b", "/bee"))
	assert.Equal(t, []string{"/a", "/bee", "/c"}, obj.Keys())
	assert.False(t, obj.RenameKey("/missing", "/x"))
	assert.False(t, obj.RenameKey("/a", "/c"), "target already present")
	assert.True(t, obj.Has("/bee"))
	assert.False(t, obj.Has("/b"))
}

func TestNode_RenameKeys(t *testing.T) {
	newObj := func() *Node {
		return NewObject(
			Member{Key: "a", Value: NewString("1")},
			Member{Key: "b", Value: NewString("2")},
			Member{Key: "c", Value: NewString("3")},
		)
	}
	tests := []struct {
		name     string
		names    map[string]string
		wantKeys []string
		conflict string
	}{
		{"chain", map[string]string{"a": "b", "b": "d"}, []string{"b", "d", "c"}, ""},
		{"swap", map[string]string{"a": "b", "b": "a"}, []string{"b", "a", "c"}, ""},
		{"rotate", map[string]string{"a": "b", "b": "c", "c": "a"}, []string{"b", "c", "a"}, ""},
		{"missing keys ignored", map[string]string{"x": "y"}, []string{"a", "b", "c"}, ""},
		{"onto kept key", map[string]string{"a": "c"}, []string{"a", "b", "c"}, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := newObj()
			conflict, ok := obj.RenameKeys(tt.names)
			assert.Equal(t, tt.conflict == "", ok)
			assert.Equal(t, tt.conflict, conflict)
			assert.Equal(t, tt.wantKeys, obj.Keys())
			for i, key := range tt.wantKeys {
				got, _ := obj.Get(key).Str()
				want, _ := newObj().Members()[i].Value.Str()
				assert.Equal(t, want, got, "value of %s keeps its position", key)
			}
		})
	}
}

func TestNode_Clone(t *testing.T) {
	orig := NewObject(Member{Key: "tags", Value: NewArray(NewString("pet"))})
	c := orig.Clone()
	c.Get("tags").Append(NewString("store"))
	c.Set("extra", NewScalar(true))

	assert.Equal(t, 1, orig.Get("tags").Len())
	assert.False(t, orig.Has("extra"))
	assert.True(t, c.Equal(c.Clone()))
}

func TestNode_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b *Node
		want bool
	}{
		{"member order ignored", NewObject(Member{"a", NewScalar(1)}, Member{"b", NewScalar(2)}), NewObject(Member{"b", NewScalar(2)}, Member{"a", NewScalar(1)}), true},
		{"array order matters", NewArray(NewString("x"), NewString("y")), NewArray(NewString("y"), NewString("x")), false},
		{"null and nil", Null(), nil, true},
		{"int vs string", NewScalar(1), NewString("1"), false},
		{"refs", NewRef("#/a"), NewRef("#/a"), true},
		{"kinds differ", NewObject(), NewArray(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestNode_IsEmpty(t *testing.T) {
	assert.True(t, NewObject().IsEmpty())
	assert.True(t, NewArray().IsEmpty())
	assert.True(t, Null().IsEmpty())
	assert.False(t, NewString("").IsEmpty())
	assert.False(t, NewScalar(false).IsEmpty())
	assert.False(t, NewRef("#/x").IsEmpty())
}

func TestNode_Filter(t *testing.T) {
	arr := NewArray(NewString("a"), NewString("b"), NewString("c"))
	arr.Filter(func(n *Node) bool {
		s, _ := n.Str()
		return s != "b"
	})
	if diff := cmp.Diff([]any{"a", "c"}, arr.Interface()); diff != "" {
		t.Errorf("unexpected items (-want +got):\n%s", diff)
	}
}

func TestNode_Walk(t *testing.T) {
	doc := NewObject(
		Member{Key: "paths", Value: NewObject(
			Member{Key: "/pets", Value: NewObject(
				Member{Key: "get", Value: NewObject(Member{Key: "tags", Value: NewArray(NewString("pets"))})},
			)},
		)},
	)

	var seen [][]string
	doc.Walk(func(path []string, n *Node) bool {
		if s, ok := n.Str(); ok && s == "pets" {
			seen = append(seen, append([]string(nil), path...))
		}
		return true
	})
	assert.Equal(t, [][]string{{"paths", "/pets", "get", "tags", "0"}}, seen)
}

func TestNode_SetPanicsOnNonObject(t *testing.T) {
	assert.Panics(t, func() { NewArray().Set("a", nil) })
	assert.Panics(t, func() { NewObject().Append(NewString("a")) })
}

func TestFromInterface(t *testing.T) {
	n := FromInterface(map[string]any{
		"b":     []any{"x", 2},
		"a":     map[string]any{"$ref": "#/definitions/Pet"},
		"c":     nil,
		"float": 1.5,
	})
	assert.Equal(t, []string{"a", "b", "c", "float"}, n.Keys())
	assert.Equal(t, "#/definitions/Pet", n.Get("a").Ref())
	assert.Equal(t, int64(2), n.Get("b").Index(1).Value())
	assert.True(t, n.Get("c").IsNull())

	want := map[string]any{
		"a":     map[string]any{"$ref": "#/definitions/Pet"},
		"b":     []any{"x", int64(2)},
		"c":     nil,
		"float": 1.5,
	}
	if diff := cmp.Diff(want, n.Interface()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
