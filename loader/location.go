package loader

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// IsURL reports whether location is an http:// or https:// URL.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// ResolveLocation resolves ref against the location of the document that
// contains it. Absolute URLs and absolute file paths are returned as is.
// A relative ref inside a URL-loaded document resolves against that URL; a
// relative ref inside a file resolves against the file's directory.
func ResolveLocation(base, ref string) (string, error) {
	if ref == "" {
		return base, nil
	}
	if IsURL(ref) {
		return ref, nil
	}
	if IsURL(base) {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("loader: invalid base URL %q: %w", base, err)
		}
		r, err := url.Parse(filepath.ToSlash(ref))
		if err != nil {
			return "", fmt.Errorf("loader: invalid reference %q: %w", ref, err)
		}
		resolved := b.ResolveReference(r)
		resolved.Fragment = ""
		return resolved.String(), nil
	}
	if filepath.IsAbs(ref) || path.IsAbs(ref) {
		return filepath.Clean(ref), nil
	}
	if base == "" {
		return filepath.Clean(ref), nil
	}
	return filepath.Join(filepath.Dir(base), ref), nil
}

// Canonical returns the form of location used as a cache and cycle key.
func Canonical(location string) string {
	if IsURL(location) {
		u, err := url.Parse(location)
		if err != nil {
			return location
		}
		u.Fragment = ""
		return u.String()
	}
	return filepath.Clean(location)
}
