package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logMu  sync.RWMutex
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// setLogOutput replaces the process logger. The terminal player points it at a
// file so log lines do not draw over the screen.
func setLogOutput(w io.Writer, level slog.Level) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format("2006/01/02 15:04:05.000"))
			}
			return a
		},
	})
	logMu.Lock()
	logger = slog.New(h)
	logMu.Unlock()
}

// openLogFile sends logs to path, appending.
func openLogFile(path string, level slog.Level) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	setLogOutput(f, level)
	return f, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func currentLogger() *slog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

func logDebug(msg string, args ...any) { currentLogger().Debug(msg, args...) }
func logInfo(msg string, args ...any)  { currentLogger().Info(msg, args...) }
func logWarn(msg string, args ...any)  { currentLogger().Warn(msg, args...) }
func logError(msg string, args ...any) { currentLogger().Error(msg, args...) }
