// Package logging builds the zap logger shared by a selection run.
package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a logger at the given level ("debug", "info", ...) encoding
// entries as json or console text with RFC3339 timestamps and caller
// information. With a nil w, errors go to stderr and everything else to
// stdout; otherwise every entry goes to w.
func New(level, format string, w io.Writer) (*zap.Logger, error) {
	var min zapcore.Level
	if err := min.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "parsing log level %q", level)
	}

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder

	var encoder zapcore.Encoder
	switch format {
	case FormatJSON, "":
		encoder = zapcore.NewJSONEncoder(config)
	case FormatConsole:
		config.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(config)
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}

	if w != nil {
		core := zapcore.NewCore(encoder, zapcore.AddSync(w), min)
		return zap.New(core, zap.AddCaller()), nil
	}

	isError := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= min
	})
	isInfo := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= min
	})
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), isError),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), isInfo),
	)
	return zap.New(core, zap.AddCaller()), nil
}
