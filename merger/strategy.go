package merger

import (
	"strings"

	"github.com/erraggy/oascombine/oaserrors"
)

// Strategy defines how to handle a key contributed by two documents.
type Strategy string

const (
	// StrategyFail reports the collision as an error.
	StrategyFail Strategy = "fail"
	// StrategyAcceptLeft keeps the value from the earlier document.
	StrategyAcceptLeft Strategy = "accept-left"
	// StrategyAcceptRight keeps the value from the later document.
	StrategyAcceptRight Strategy = "accept-right"
)

// ValidStrategies returns the accepted strategy names.
func ValidStrategies() []string {
	return []string{string(StrategyFail), string(StrategyAcceptLeft), string(StrategyAcceptRight)}
}

// ParseStrategy parses a strategy name. The empty string means
// StrategyFail.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StrategyFail, nil
	case StrategyFail, StrategyAcceptLeft, StrategyAcceptRight:
		return st, nil
	}
	return "", &oaserrors.ConfigError{
		Option:  "strategy",
		Value:   s,
		Message: "must be one of " + strings.Join(ValidStrategies(), ", "),
	}
}

// IsValid reports whether s is a known strategy.
func (s Strategy) IsValid() bool {
	_, err := ParseStrategy(string(s))
	return err == nil && s != ""
}

func (s Strategy) orDefault() Strategy {
	if s == "" {
		return StrategyFail
	}
	return s
}
