package common

import (
	"log/slog"
	"os"
)

// ConfigureLogging installs the default logger used by all components.
// Output goes to stderr so stdout stays reserved for the wrapped tools
// and the generated script.
func ConfigureLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func NewLogger() *slog.Logger {
	return slog.New(slog.Default().Handler())
}
