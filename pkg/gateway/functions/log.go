package functions

import (
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/gateway/pkg/gateway"
)

// ParseLevel parses debug, info, warn or error. An empty name is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// Log writes its expanded message to the request logger.
type Log struct {
	gateway.Base
	message string
	level   slog.Level
}

func NewLog(name, message string, level slog.Level) *Log {
	return &Log{
		Base:    gateway.NewBase(nameOr(name, "Log")),
		message: message,
		level:   level,
	}
}

func (f *Log) Execute(ec *gateway.ExecutionContext) gateway.Result {
	ec.Logger().Log(ec.Context(), f.level, ec.Parse(f.message), "function", f.Name())
	return gateway.Succeeded()
}
