package memlcd

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// nopHandler discards all records; Enabled returns false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(defaultLogger())
}

// defaultLogger is silent, unless MEMLCD_DEBUG is set in which case bus
// transactions are logged to stderr.
func defaultLogger() *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(nopHandler{})
}

// SetLogger configures the logger used by the display driver. By default
// nothing is logged. Pass nil to restore the default.
//
// Log levels used:
//   - [slog.LevelDebug]: bus transactions (opcode, byte count, duration)
//   - [slog.LevelWarn]: failed periodic VCOM toggles
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = defaultLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
