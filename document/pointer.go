package document

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SplitRef splits a reference into its location and fragment parts.
//
//	"#/definitions/Pet"          -> "", "/definitions/Pet"
//	"other.yaml#/definitions/A"  -> "other.yaml", "/definitions/A"
//	"other.yaml"                 -> "other.yaml", ""
func SplitRef(ref string) (location, fragment string) {
	location, fragment, _ = strings.Cut(ref, "#")
	return location, fragment
}

// ParsePointer parses a JSON Pointer fragment (RFC 6901) into reference
// tokens. The fragment may be percent-encoded as in a URI fragment. An empty
// fragment addresses the whole document.
func ParsePointer(fragment string) ([]string, error) {
	if fragment == "" {
		return nil, nil
	}
	decoded, err := url.PathUnescape(fragment)
	if err != nil {
		return nil, fmt.Errorf("invalid pointer %q: %w", fragment, err)
	}
	if !strings.HasPrefix(decoded, "/") {
		return nil, fmt.Errorf("invalid pointer %q: must start with '/'", fragment)
	}
	tokens := strings.Split(decoded[1:], "/")
	for i, tok := range tokens {
		tokens[i] = UnescapeToken(tok)
	}
	return tokens, nil
}

// FormatPointer renders reference tokens as a JSON Pointer.
func FormatPointer(tokens []string) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteByte('/')
		sb.WriteString(EscapeToken(tok))
	}
	return sb.String()
}

// EscapeToken escapes '~' and '/' in a reference token.
func EscapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~", "~0")
	return strings.ReplaceAll(tok, "/", "~1")
}

// UnescapeToken reverses EscapeToken.
func UnescapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	return strings.ReplaceAll(tok, "~0", "~")
}

// Child returns the member or item addressed by one reference token.
func (n *Node) Child(token string) (*Node, bool) {
	switch n.Kind() {
	case KindObject:
		return n.Lookup(token)
	case KindArray:
		i, err := strconv.Atoi(token)
		if err != nil || i < 0 || i >= len(n.items) || strconv.Itoa(i) != token {
			return nil, false
		}
		return n.items[i], true
	}
	return nil, false
}

// At follows tokens from n. It stops with false at a missing member or at a
// reference marker that still has tokens left to follow.
func (n *Node) At(tokens []string) (*Node, bool) {
	cur := n
	for _, tok := range tokens {
		next, ok := cur.Child(tok)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
