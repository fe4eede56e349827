package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/erraggy/oascombine/oaserrors"
	"go.yaml.in/yaml/v4"
)

// Format identifies the serialization of a document.
type Format int

const (
	// FormatUnknown is used when the format cannot be determined.
	FormatUnknown Format = iota
	// FormatJSON is JSON.
	FormatJSON
	// FormatYAML is YAML.
	FormatYAML
)

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseFormat parses "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatUnknown, &oaserrors.ConfigError{Option: "format", Value: s, Message: "expected json or yaml"}
}

// FormatFromPath detects the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// FormatFromContent guesses the format from the first significant byte.
func FormatFromContent(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\n\r")
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatYAML
}

// maxDecodeDepth bounds nesting while converting YAML nodes, which also
// stops alias expansion from running away.
const maxDecodeDepth = 1000

// Decode parses YAML or JSON bytes into a Node tree. An object whose "$ref"
// member is a string becomes a reference marker. The location only labels
// errors.
func Decode(data []byte, location string) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &oaserrors.ParseError{Path: location, Message: "empty document"}
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &oaserrors.ParseError{Path: location, Message: "failed to parse YAML/JSON", Cause: err}
	}
	n, err := fromYAML(&root, 0)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: location, Line: err.line, Column: err.column, Message: err.msg}
	}
	return n, nil
}

type decodeError struct {
	line, column int
	msg          string
}

func (e *decodeError) Error() string { return e.msg }

func fromYAML(y *yaml.Node, depth int) (*Node, *decodeError) {
	if depth > maxDecodeDepth {
		return nil, &decodeError{line: y.Line, column: y.Column, msg: "document nesting too deep"}
	}
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(y.Content[0], depth+1)
	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, &decodeError{line: y.Line, column: y.Column, msg: "dangling alias"}
		}
		return fromYAML(y.Alias, depth+1)
	case yaml.MappingNode:
		return mappingFromYAML(y, depth)
	case yaml.SequenceNode:
		arr := &Node{kind: KindArray, items: make([]*Node, 0, len(y.Content))}
		for _, c := range y.Content {
			item, err := fromYAML(c, depth+1)
			if err != nil {
				return nil, err
			}
			arr.items = append(arr.items, item)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarFromYAML(y), nil
	}
	return nil, &decodeError{line: y.Line, column: y.Column, msg: fmt.Sprintf("unsupported YAML node kind %v", y.Kind)}
}

func mappingFromYAML(y *yaml.Node, depth int) (*Node, *decodeError) {
	for i := 0; i+1 < len(y.Content); i += 2 {
		k, v := y.Content[i], y.Content[i+1]
		if k.Value == "$ref" && v.Kind == yaml.ScalarNode && v.ShortTag() == "!!str" {
			return NewRef(v.Value), nil
		}
	}

	obj := &Node{kind: KindObject}
	var merges []*yaml.Node
	for i := 0; i+1 < len(y.Content); i += 2 {
		k, v := y.Content[i], y.Content[i+1]
		if k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}
		val, err := fromYAML(v, depth+1)
		if err != nil {
			return nil, err
		}
		obj.Set(k.Value, val)
	}

	// Explicit keys take precedence over merged ones.
	for _, m := range merges {
		src, err := fromYAML(m, depth+1)
		if err != nil {
			return nil, err
		}
		sources := []*Node{src}
		if src.IsArray() {
			sources = src.items
		}
		for _, s := range sources {
			if !s.IsObject() {
				return nil, &decodeError{line: m.Line, column: m.Column, msg: "merge key requires a mapping"}
			}
			for _, member := range s.members {
				if !obj.Has(member.Key) {
					obj.Set(member.Key, member.Value)
				}
			}
		}
	}
	return obj, nil
}

func scalarFromYAML(y *yaml.Node) *Node {
	switch y.ShortTag() {
	case "!!null":
		return Null()
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err == nil {
			return NewScalar(b)
		}
	case "!!int":
		var i int64
		if err := y.Decode(&i); err == nil {
			return NewScalar(i)
		}
		var f float64
		if err := y.Decode(&f); err == nil {
			return NewScalar(f)
		}
	case "!!float":
		var f float64
		if err := y.Decode(&f); err == nil {
			return NewScalar(f)
		}
	}
	return NewString(y.Value)
}

// Encode renders n in the given format. JSON output is indented with two
// spaces.
func Encode(n *Node, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return EncodeJSON(n, "  ")
	case FormatYAML:
		return EncodeYAML(n)
	}
	return nil, &oaserrors.ConfigError{Option: "format", Value: format.String(), Message: "expected json or yaml"}
}

// EncodeYAML renders n as YAML, preserving member order.
func EncodeYAML(n *Node) ([]byte, error) {
	y, err := n.toYAML()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(y); err != nil {
		return nil, fmt.Errorf("document: failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("document: failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJSON renders n as JSON, preserving member order. An empty indent
// produces compact output.
func EncodeJSON(n *Node, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	if indent == "" {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", indent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// MarshalJSON implements json.Marshaler with member order preserved.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler with member order preserved.
func (n *Node) MarshalYAML() (any, error) {
	return n.toYAML()
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.kind {
	case KindObject:
		buf.WriteByte('{')
		for i, m := range n.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindRef:
		buf.WriteString(`{"$ref":`)
		if err := writeJSONValue(buf, n.ref); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return writeJSONValue(buf, n.value)
	}
	return nil
}

func writeJSONValue(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("document: failed to encode JSON: %w", err)
	}
	buf.Write(data)
	return nil
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func (n *Node) toYAML() (*yaml.Node, error) {
	if n == nil {
		return scalarNode("!!null", "null"), nil
	}
	switch n.kind {
	case KindObject:
		y := &yaml.Node{Kind: yaml.MappingNode, Content: make([]*yaml.Node, 0, 2*len(n.members))}
		for _, m := range n.members {
			v, err := m.Value.toYAML()
			if err != nil {
				return nil, err
			}
			y.Content = append(y.Content, scalarNode("!!str", m.Key), v)
		}
		return y, nil
	case KindArray:
		y := &yaml.Node{Kind: yaml.SequenceNode, Content: make([]*yaml.Node, 0, len(n.items))}
		for _, item := range n.items {
			v, err := item.toYAML()
			if err != nil {
				return nil, err
			}
			y.Content = append(y.Content, v)
		}
		return y, nil
	case KindRef:
		return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			scalarNode("!!str", "$ref"), scalarNode("!!str", n.ref),
		}}, nil
	}

	switch v := n.value.(type) {
	case nil:
		return scalarNode("!!null", "null"), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(v)), nil
	case int64:
		return scalarNode("!!int", strconv.FormatInt(v, 10)), nil
	case float64:
		return scalarNode("!!float", formatFloat(v)), nil
	case string:
		return scalarNode("!!str", v), nil
	}
	return nil, fmt.Errorf("document: cannot encode scalar of type %T", n.value)
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
