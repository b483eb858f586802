package cli

import (
	"github.com/yildizm/LogPanel/internal/emoji"
	"github.com/yildizm/LogPanel/internal/logs"
)

// GetEmoji is a wrapper for the shared emoji package
func GetEmoji(key string) string {
	return emoji.GetEmoji(key)
}

// GetLevelEmoji returns emoji for log levels with fallback support
func GetLevelEmoji(level logs.LogLevel) string {
	switch level {
	case logs.LevelFatal, logs.LevelError:
		return GetEmoji("error")
	case logs.LevelWarn:
		return GetEmoji("warning")
	case logs.LevelInfo:
		return GetEmoji("info")
	default:
		return GetEmoji("logs")
	}
}
