// Package httputil provides the HTTP method names recognised as operations
// inside a path item.
package httputil

import (
	"slices"

	"golang.org/x/text/cases"
)

// HTTP Method Constants
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace" // OAS 3.0+ only
	MethodQuery   = "query" // OAS 3.2+ only
)

// Methods lists every operation key of a path item in canonical order.
var Methods = []string{
	MethodGet,
	MethodPut,
	MethodPost,
	MethodDelete,
	MethodOptions,
	MethodHead,
	MethodPatch,
	MethodTrace,
	MethodQuery,
}

// IsMethod reports whether key is an operation key of a path item.
// Path item keys are case-sensitive, so "GET" is not an operation.
func IsMethod(key string) bool {
	return slices.Contains(Methods, key)
}

// NormalizeMethod case-folds s and reports whether the result names an
// operation. It is used for user-supplied method names such as the
// ".put" suffix of a path pattern.
func NormalizeMethod(s string) (string, bool) {
	folded := cases.Fold().String(s)
	if !IsMethod(folded) {
		return "", false
	}
	return folded, true
}
