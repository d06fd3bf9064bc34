package domain

import "strings"

// LevelStyle names the presentation style of a record level
type LevelStyle string

const (
	StyleDebug    LevelStyle = "debug"
	StyleInfo     LevelStyle = "info"
	StyleWarn     LevelStyle = "warn"
	StyleError    LevelStyle = "error"
	StyleFatal    LevelStyle = "fatal"
	StyleFallback LevelStyle = "default"
)

var levelStyles = map[string]LevelStyle{
	"DEBUG": StyleDebug,
	"INFO":  StyleInfo,
	"WARN":  StyleWarn,
	"ERROR": StyleError,
	"FATAL": StyleFatal,
}

// StyleForLevel returns the style of a level; unknown levels get StyleFallback
func StyleForLevel(level string) LevelStyle {
	if s, ok := levelStyles[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return s
	}
	return StyleFallback
}
