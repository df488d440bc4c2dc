package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// LogLevel is the textual level accepted by --log-level.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

func (l LogLevel) charm() (charmlog.Level, error) {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel, nil
	case InfoLevel, "":
		return charmlog.InfoLevel, nil
	case WarnLevel:
		return charmlog.WarnLevel, nil
	case ErrorLevel:
		return charmlog.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", string(l))
	}
}

// newLogger returns a slog logger backed by a charm logger writing to w.
func newLogger(w io.Writer, level LogLevel, json bool) (*slog.Logger, error) {
	lvl, err := level.charm()
	if err != nil {
		return nil, err
	}
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           lvl,
		Prefix:          "derive",
	})
	if json {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return slog.New(l), nil
}
