package pathutil

import (
	"fmt"
	"path"
	"strings"

	"github.com/erraggy/oascombine/internal/httputil"
)

// Pattern is a compiled path filter.
type Pattern struct {
	raw      string
	segments []string
	method   string
}

// ParsePattern compiles s. A trailing ".method" names a single operation
// when the text after the last dot is an HTTP method; otherwise the dot is
// part of the path.
func ParsePattern(s string) (Pattern, error) {
	if s == "" {
		return Pattern{}, fmt.Errorf("pathutil: empty pattern")
	}
	p := Pattern{raw: s}
	tmpl := s
	if i := strings.LastIndexByte(s, '.'); i >= 0 && !strings.Contains(s[i:], "/") {
		if m, ok := httputil.NormalizeMethod(s[i+1:]); ok {
			p.method = m
			tmpl = s[:i]
		}
	}
	if !strings.HasPrefix(tmpl, "/") && !strings.HasPrefix(tmpl, "*") {
		return Pattern{}, fmt.Errorf("pathutil: pattern %q must start with '/'", s)
	}
	p.segments = split(tmpl)
	for _, seg := range p.segments {
		if seg == "**" {
			continue
		}
		if _, err := path.Match(seg, ""); err != nil {
			return Pattern{}, fmt.Errorf("pathutil: invalid pattern %q: %w", s, err)
		}
	}
	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as written.
func (p Pattern) String() string { return p.raw }

// Method returns the operation the pattern is narrowed to, or "" when it
// applies to the whole path item.
func (p Pattern) Method() string { return p.method }

// Match reports whether the path template matches, ignoring any method
// suffix.
func (p Pattern) Match(template string) bool {
	return matchSegments(p.segments, split(template))
}

// MatchOperation reports whether the pattern selects the given operation.
func (p Pattern) MatchOperation(template, method string) bool {
	if p.method != "" && p.method != method {
		return false
	}
	return p.Match(template)
}

func split(s string) []string {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 || !matchSegment(pat[0], segs[0]) {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

func matchSegment(pat, seg string) bool {
	if pat == seg {
		return true
	}
	if IsParamSegment(pat) && IsParamSegment(seg) {
		return true
	}
	ok, _ := path.Match(pat, seg)
	return ok
}
