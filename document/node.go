package document

import (
	"fmt"
	"math"
	"slices"
)

// Kind identifies the variant held by a Node.
type Kind uint8

const (
	// KindScalar holds a string, bool, int64, float64 or nil.
	KindScalar Kind = iota
	// KindObject holds ordered members with unique keys.
	KindObject
	// KindArray holds an ordered list of nodes.
	KindArray
	// KindRef is an unresolved $ref marker.
	KindRef
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindRef:
		return "ref"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Member is a single key/value pair of an object node.
type Member struct {
	Key   string
	Value *Node
}

// Node is one value of a document tree.
//
// Object members keep their insertion order and keys are unique. The zero
// value is a null scalar.
type Node struct {
	kind    Kind
	members []Member
	index   map[string]int
	items   []*Node
	value   any
	ref     string
}

// NewObject returns an object node holding members in order. A repeated key
// replaces the earlier value in its original position.
func NewObject(members ...Member) *Node {
	n := &Node{kind: KindObject}
	for _, m := range members {
		n.Set(m.Key, m.Value)
	}
	return n
}

// NewArray returns an array node holding items.
func NewArray(items ...*Node) *Node {
	return &Node{kind: KindArray, items: slices.Clone(items)}
}

// NewString returns a string scalar.
func NewString(s string) *Node {
	return &Node{kind: KindScalar, value: s}
}

// NewScalar returns a scalar node. Integers are stored as int64 and floats as
// float64. Other types are stored as their string form.
func NewScalar(v any) *Node {
	return &Node{kind: KindScalar, value: normalizeScalar(v)}
}

// Null returns a null scalar.
func Null() *Node {
	return &Node{kind: KindScalar}
}

// NewRef returns a reference marker pointing at ref.
func NewRef(ref string) *Node {
	return &Node{kind: KindRef, ref: ref}
}

func normalizeScalar(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int64:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return uint64ToScalar(uint64(val))
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return uint64ToScalar(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func uint64ToScalar(v uint64) any {
	if v > math.MaxInt64 {
		return float64(v)
	}
	return int64(v)
}

// Kind returns the node's variant. A nil node reports KindScalar.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindScalar
	}
	return n.kind
}

// IsObject reports whether n is an object.
func (n *Node) IsObject() bool { return n != nil && n.kind == KindObject }

// IsArray reports whether n is an array.
func (n *Node) IsArray() bool { return n != nil && n.kind == KindArray }

// IsRef reports whether n is a reference marker.
func (n *Node) IsRef() bool { return n != nil && n.kind == KindRef }

// IsNull reports whether n is nil or a null scalar.
func (n *Node) IsNull() bool {
	return n == nil || (n.kind == KindScalar && n.value == nil)
}

// IsEmpty reports whether n is null, an object without members or an
// array without items.
func (n *Node) IsEmpty() bool {
	if n.IsNull() {
		return true
	}
	switch n.kind {
	case KindObject:
		return len(n.members) == 0
	case KindArray:
		return len(n.items) == 0
	}
	return false
}

// Value returns the scalar value, or nil for non-scalars.
func (n *Node) Value() any {
	if n == nil || n.kind != KindScalar {
		return nil
	}
	return n.value
}

// Str returns the string value of a string scalar.
func (n *Node) Str() (string, bool) {
	if n == nil || n.kind != KindScalar {
		return "", false
	}
	s, ok := n.value.(string)
	return s, ok
}

// Ref returns the pointer string of a reference marker.
func (n *Node) Ref() string {
	if n == nil || n.kind != KindRef {
		return ""
	}
	return n.ref
}

// Len returns the number of members or items. Scalars and markers report 0.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case KindObject:
		return len(n.members)
	case KindArray:
		return len(n.items)
	}
	return 0
}

// Get returns the member value stored under key, or nil when n is not an
// object or has no such key.
func (n *Node) Get(key string) *Node {
	v, _ := n.Lookup(key)
	return v
}

// Lookup returns the member value stored under key.
func (n *Node) Lookup(key string) (*Node, bool) {
	if n == nil || n.kind != KindObject {
		return nil, false
	}
	i, ok := n.index[key]
	if !ok {
		return nil, false
	}
	return n.members[i].Value, true
}

// Has reports whether the object holds key.
func (n *Node) Has(key string) bool {
	_, ok := n.Lookup(key)
	return ok
}

// Set stores value under key. An existing key keeps its position.
// Set panics if n is not an object.
func (n *Node) Set(key string, value *Node) {
	n.mustBe(KindObject)
	if value == nil {
		value = Null()
	}
	if i, ok := n.index[key]; ok {
		n.members[i].Value = value
		return
	}
	if n.index == nil {
		n.index = make(map[string]int)
	}
	n.index[key] = len(n.members)
	n.members = append(n.members, Member{Key: key, Value: value})
}

// Delete removes key and reports whether it was present.
func (n *Node) Delete(key string) bool {
	if n == nil || n.kind != KindObject {
		return false
	}
	i, ok := n.index[key]
	if !ok {
		return false
	}
	n.members = slices.Delete(n.members, i, i+1)
	delete(n.index, key)
	for j := i; j < len(n.members); j++ {
		n.index[n.members[j].Key] = j
	}
	return true
}

// RenameKey renames from to to in place. It reports false when from is
// missing or to is already present.
func (n *Node) RenameKey(from, to string) bool {
	if n == nil || n.kind != KindObject {
		return false
	}
	i, ok := n.index[from]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	if _, taken := n.index[to]; taken {
		return false
	}
	n.members[i].Key = to
	delete(n.index, from)
	n.index[to] = i
	return true
}

// RenameKeys renames every key found in names to names[key], all at once,
// keeping member positions. Other keys are unchanged. When two members would
// end up under one key, n is left untouched and that key is returned with
// false.
func (n *Node) RenameKeys(names map[string]string) (string, bool) {
	if n == nil || n.kind != KindObject {
		return "", true
	}
	keys := make([]string, len(n.members))
	index := make(map[string]int, len(n.members))
	for i, m := range n.members {
		key := m.Key
		if to, ok := names[key]; ok {
			key = to
		}
		if _, dup := index[key]; dup {
			return key, false
		}
		keys[i] = key
		index[key] = i
	}
	for i := range n.members {
		n.members[i].Key = keys[i]
	}
	n.index = index
	return "", true
}

// Keys returns the object keys in order.
func (n *Node) Keys() []string {
	if n == nil || n.kind != KindObject {
		return nil
	}
	keys := make([]string, len(n.members))
	for i, m := range n.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns a copy of the object's member list.
func (n *Node) Members() []Member {
	if n == nil || n.kind != KindObject {
		return nil
	}
	return slices.Clone(n.members)
}

// Items returns a copy of the array's item list.
func (n *Node) Items() []*Node {
	if n == nil || n.kind != KindArray {
		return nil
	}
	return slices.Clone(n.items)
}

// Index returns the i-th array item, or nil when out of range.
func (n *Node) Index(i int) *Node {
	if n == nil || n.kind != KindArray || i < 0 || i >= len(n.items) {
		return nil
	}
	return n.items[i]
}

// Append adds items to the end of an array. Append panics if n is not an
// array.
func (n *Node) Append(items ...*Node) {
	n.mustBe(KindArray)
	n.items = append(n.items, items...)
}

// SetItems replaces the array's items.
func (n *Node) SetItems(items []*Node) {
	n.mustBe(KindArray)
	n.items = slices.Clone(items)
}

// Filter keeps the array items for which keep returns true.
func (n *Node) Filter(keep func(*Node) bool) {
	n.mustBe(KindArray)
	n.items = slices.DeleteFunc(n.items, func(item *Node) bool { return !keep(item) })
}

func (n *Node) mustBe(k Kind) {
	if n == nil || n.kind != k {
		panic(fmt.Sprintf("document: %s operation on %s node", k, n.Kind()))
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{kind: n.kind, value: n.value, ref: n.ref}
	switch n.kind {
	case KindObject:
		c.members = make([]Member, len(n.members))
		c.index = make(map[string]int, len(n.members))
		for i, m := range n.members {
			c.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
			c.index[m.Key] = i
		}
	case KindArray:
		c.items = make([]*Node, len(n.items))
		for i, item := range n.items {
			c.items[i] = item.Clone()
		}
	}
	return c
}

// Equal reports whether n and other are structurally equal. Object member
// order is not significant.
func (n *Node) Equal(other *Node) bool {
	if n.IsNull() || other.IsNull() {
		return n.IsNull() && other.IsNull()
	}
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindScalar:
		return n.value == other.value
	case KindRef:
		return n.ref == other.ref
	case KindArray:
		if len(n.items) != len(other.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(n.members) != len(other.members) {
			return false
		}
		for _, m := range n.members {
			v, ok := other.Lookup(m.Key)
			if !ok || !m.Value.Equal(v) {
				return false
			}
		}
		return true
	}
	return false
}

// Walk calls fn for n and every descendant in depth-first order. The path
// holds object keys and array indexes (as strings) leading to the node.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(path []string, node *Node) bool) {
	walk(nil, n, fn)
}

func walk(path []string, n *Node, fn func([]string, *Node) bool) {
	if n == nil || !fn(path, n) {
		return
	}
	switch n.kind {
	case KindObject:
		for _, m := range n.members {
			walk(append(path[:len(path):len(path)], m.Key), m.Value, fn)
		}
	case KindArray:
		for i, item := range n.items {
			walk(append(path[:len(path):len(path)], fmt.Sprint(i)), item, fn)
		}
	}
}

// Interface converts n to plain Go values: map[string]any, []any and
// scalars. Member order is lost. A reference marker becomes a
// {"$ref": ...} map.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindObject:
		m := make(map[string]any, len(n.members))
		for _, member := range n.members {
			m[member.Key] = member.Value.Interface()
		}
		return m
	case KindArray:
		s := make([]any, len(n.items))
		for i, item := range n.items {
			s[i] = item.Interface()
		}
		return s
	case KindRef:
		return map[string]any{"$ref": n.ref}
	}
	return n.value
}

// FromInterface converts plain Go values (as produced by encoding/json or a
// YAML decoder) into a Node tree. Map keys are sorted, since Go maps carry
// no order.
func FromInterface(v any) *Node {
	switch val := v.(type) {
	case map[string]any:
		if ref, ok := val["$ref"].(string); ok {
			return NewRef(ref)
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromInterface(val[k]))
		}
		return obj
	case []any:
		arr := NewArray()
		for _, item := range val {
			arr.Append(FromInterface(item))
		}
		return arr
	case []string:
		arr := NewArray()
		for _, item := range val {
			arr.Append(NewString(item))
		}
		return arr
	case *Node:
		return val
	}
	return NewScalar(v)
}
