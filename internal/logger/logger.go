package logger

import (
	"io"
	"os"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type Config struct {
	Service string
	Version string
	// Level is one of debug, info, warn, error or none. Anything else means info.
	Level string
	// Output defaults to stderr
	Output io.Writer
}

// New creates a new structured logger using go-kit/log
func New(config Config) kitlog.Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	// Using logfmt format, human readable and easy to parse by log aggregators like datadog, ELK stack etc.
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(out))
	logger = level.NewFilter(logger, allowed(config.Level))
	// Add timestamp with UTC timezone
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	// Add caller information, which is the file and line number of the code that called the logger
	logger = kitlog.With(logger, "caller", kitlog.DefaultCaller)
	// Add service and version information
	logger = kitlog.With(logger, "service", config.Service, "version", config.Version)
	return logger
}

func allowed(lvl string) level.Option {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	case "none":
		return level.AllowNone()
	default:
		return level.AllowInfo()
	}
}
