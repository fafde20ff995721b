// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Config represents logger configuration.
type Config struct {
	Output string // "stdout", "stderr", or "file"
	Level  string // "debug", "info", "warn", "error"
	File   string // log file path, used when Output is "file"
}

// Init initializes the global zerolog logger with the given configuration.
// The returned closer releases the log file, if any.
func Init(cfg Config) (io.Closer, error) {
	level := ParseLevel(cfg.Level)

	writer, console, closer, err := openWriter(cfg)
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.TimeOnly
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.CallerMarshalFunc = shortCaller

	logger := New(writer, console, level)
	zerolog.DefaultContextLogger = &logger
	zlog.Logger = logger

	return closer, nil
}

// New builds a logger writing to w. Console loggers are colored; the rest emit JSON.
// Caller information is attached at debug level only.
func New(w io.Writer, console bool, level zerolog.Level) zerolog.Logger {
	if console {
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
		if level == zerolog.DebugLevel {
			cw.PartsOrder = []string{"time", "level", "message", "caller"}
			cw.FormatCaller = func(i interface{}) string {
				s, _ := i.(string)
				return "(" + s + ")"
			}
			return zerolog.New(cw).With().Timestamp().Caller().Logger()
		}
		return zerolog.New(cw).With().Timestamp().Logger()
	}

	ctx := zerolog.New(w).With().Timestamp()
	if level == zerolog.DebugLevel {
		return ctx.Caller().Logger()
	}
	return ctx.Logger()
}

func openWriter(cfg Config) (io.Writer, bool, io.Closer, error) {
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		return os.Stdout, true, io.NopCloser(nil), nil
	case "stderr":
		return os.Stderr, true, io.NopCloser(nil), nil
	case "file":
		if cfg.File == "" {
			return nil, false, nil, errors.New("log file path is required for file output")
		}
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, false, nil, errors.Wrap(err, "failed to create log directory")
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, false, nil, errors.Wrap(err, "failed to open log file")
		}
		return f, false, f, nil
	default:
		return nil, false, nil, errors.Newf("unknown log output %q", cfg.Output)
	}
}

// shortCaller keeps the last directory and file name.
func shortCaller(pc uintptr, file string, line int) string {
	parts := strings.Split(file, string(filepath.Separator))
	if len(parts) > 1 {
		return filepath.Join(parts[len(parts)-2:]...) + ":" + strconv.Itoa(line)
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// ParseLevel parses the log level string. Unknown levels fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
