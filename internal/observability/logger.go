package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileOptions controls rotation of the optional log file
type LogFileOptions struct {
	MaxSizeMB  int // Rotate after this size (default: 10)
	MaxBackups int // Rotated files to keep (default: 3)
	MaxAgeDays int // Days to keep rotated files (default: 28)
}

// DefaultLogFileOptions returns default rotation settings
func DefaultLogFileOptions() LogFileOptions {
	return LogFileOptions{
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// InitLogger initializes the global logger with the specified level
// If logFile is not empty, logs are also written to that file with rotation
// Console output uses human-readable format, file output uses JSON format
func InitLogger(level string, logFile string) {
	InitLoggerWithOptions(level, logFile, DefaultLogFileOptions())
}

// InitLoggerWithOptions is InitLogger with explicit rotation settings
func InitLoggerWithOptions(level string, logFile string, opts LogFileOptions) {
	var writers []io.Writer

	// Console goes to stderr so stdout stays clean for exported JSON
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}
	writers = append(writers, consoleWriter)

	if logFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()

	logLevel := ParseLogLevel(level)
	zerolog.SetGlobalLevel(logLevel)

	log.Debug().
		Str("level", logLevel.String()).
		Str("file", logFile).
		Msg("Logger initialized")
}

// ParseLogLevel parses a string log level to zerolog.Level
func ParseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
