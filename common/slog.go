package common

import "log/slog"

// SlogResetLevel sets the default slog level and returns a func restoring
// the previous one.
//
//	defer common.SlogResetLevel(slog.LevelWarn)()
func SlogResetLevel(level slog.Level) (reset func()) {
	old := slog.SetLogLoggerLevel(level)
	return func() {
		slog.SetLogLoggerLevel(old)
	}
}
