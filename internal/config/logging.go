package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates a dual-output logger: text to stderr, JSON to file.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	return setupWithFile(os.Stderr, logFile, level)
}

// SetupDashboardLogger is SetupLogger for full-screen mode: the text
// output goes to panel instead of stderr, which would corrupt the screen.
func SetupDashboardLogger(logFile string, level slog.Level, panel io.Writer) (*slog.Logger, func() error) {
	return setupWithFile(panel, logFile, level)
}

func setupWithFile(text io.Writer, logFile string, level slog.Level) (*slog.Logger, func() error) {
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Fall back to text-only if file fails
		logger := slog.New(slog.NewTextHandler(text, &slog.HandlerOptions{Level: level}))
		logger.Error("failed to open log file, using text output only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	logger := SetupLoggerWithWriters(text, file, level)

	cleanup := func() error {
		return file.Close()
	}

	return logger, cleanup
}

// SetupLoggerWithWriters fans out to a text handler on text and a JSON
// handler on file.
func SetupLoggerWithWriters(text, file io.Writer, level slog.Level) *slog.Logger {
	textHandler := slog.NewTextHandler(text, &slog.HandlerOptions{Level: level})
	// JSON for machine parsing
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(textHandler, fileHandler))
}
