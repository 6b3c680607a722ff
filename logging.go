package bmc

import "log/slog"

// loggerOrDefault substitutes slog.Default() for a nil *slog.Logger, so
// every transport/session constructor can accept an optional logger
// without every caller needing a nil check of its own.
func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
