// Package logging builds the structured logger used by the CLI.
//
// Callers receive a logr.Logger backed by zap. Verbosity follows logr
// conventions: V(1) is debug.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is one of auto, console, json. Auto selects console on a
	// terminal and json otherwise.
	Format string

	// Writer receives log lines. Defaults to os.Stderr.
	Writer io.Writer
}

// New builds a logger from opts.
func New(opts Options) (logr.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return logr.Discard(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var encoder zapcore.Encoder
	switch format := resolveFormat(opts.Format, w); format {
	case "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !isTerminal(w) {
			cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(cfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return logr.Discard(), fmt.Errorf("invalid log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zapr.NewLogger(zap.New(core)), nil
}

func resolveFormat(format string, w io.Writer) string {
	if format != "auto" && format != "" {
		return format
	}
	if isTerminal(w) {
		return "console"
	}
	return "json"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
