package commands

import (
	"io"

	"github.com/erraggy/oascombine/loader"
	"github.com/rs/zerolog"
)

// newLogger returns a console logger on out at the named level. Unknown
// levels fall back to warn.
func newLogger(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true}).
		Level(lvl).
		With().Timestamp().Logger()
}

// ZerologAdapter implements loader.Logger on top of a zerolog.Logger.
// Attributes are alternating keys and values, as with log/slog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps l.
func NewZerologAdapter(l zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: l}
}

// Debug logs at debug level.
func (z *ZerologAdapter) Debug(msg string, attrs ...any) {
	z.logger.Debug().Fields(attrs).Msg(msg)
}

// Info logs at info level.
func (z *ZerologAdapter) Info(msg string, attrs ...any) {
	z.logger.Info().Fields(attrs).Msg(msg)
}

// Warn logs at warn level.
func (z *ZerologAdapter) Warn(msg string, attrs ...any) {
	z.logger.Warn().Fields(attrs).Msg(msg)
}

// Error logs at error level.
func (z *ZerologAdapter) Error(msg string, attrs ...any) {
	z.logger.Error().Fields(attrs).Msg(msg)
}

// With returns a logger carrying attrs on every entry.
func (z *ZerologAdapter) With(attrs ...any) loader.Logger {
	return &ZerologAdapter{logger: z.logger.With().Fields(attrs).Logger()}
}

var _ loader.Logger = (*ZerologAdapter)(nil)
