package pathutil

import "regexp"

// PathParamRegex matches path template parameters like {paramName}.
// It captures the parameter name inside the braces.
var PathParamRegex = regexp.MustCompile(`\{([^}]+)\}`)

// IsParamSegment reports whether a path segment consists of a single
// template parameter, such as "{petId}".
func IsParamSegment(segment string) bool {
	loc := PathParamRegex.FindStringIndex(segment)
	return loc != nil && loc[0] == 0 && loc[1] == len(segment)
}
