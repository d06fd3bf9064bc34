// Package normalizer reduces log messages to patterns so that records
// differing only in ids, numbers or timestamps group together.
package normalizer

import (
	"regexp"
	"strings"
)

// MessageNormalizer replaces the dynamic parts of a message with placeholders
type MessageNormalizer struct {
	guidPattern      *regexp.Regexp
	timestampPattern *regexp.Regexp
	hexPattern       *regexp.Regexp
	ipPattern        *regexp.Regexp
	numberPattern    *regexp.Regexp
	stringPattern    *regexp.Regexp
	spacePattern     *regexp.Regexp
}

// NewMessageNormalizer creates a normalizer with compiled patterns
func NewMessageNormalizer() *MessageNormalizer {
	return &MessageNormalizer{
		guidPattern:      regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`),
		timestampPattern: regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:?\d{2})?`),
		hexPattern:       regexp.MustCompile(`(?i)\b0x[0-9a-f]+\b`),
		ipPattern:        regexp.MustCompile(`\b\d{1,3}(?:\.\d{1,3}){3}(?::\d+)?\b`),
		numberPattern:    regexp.MustCompile(`\b\d+(?:\.\d+)?\b`),
		stringPattern:    regexp.MustCompile(`"[^"]*"|'[^']*'`),
		spacePattern:     regexp.MustCompile(`\s+`),
	}
}

// Normalize returns the pattern of the first line of message.
// Order matters: the wider patterns run before numbers.
func (n *MessageNormalizer) Normalize(message string) string {
	if i := strings.IndexAny(message, "\r\n"); i >= 0 {
		message = message[:i]
	}
	if strings.TrimSpace(message) == "" {
		return ""
	}

	normalized := n.guidPattern.ReplaceAllString(message, "<GUID>")
	normalized = n.timestampPattern.ReplaceAllString(normalized, "<TIMESTAMP>")
	normalized = n.stringPattern.ReplaceAllString(normalized, "<STRING>")
	normalized = n.hexPattern.ReplaceAllString(normalized, "<HEX>")
	normalized = n.ipPattern.ReplaceAllString(normalized, "<ADDRESS>")
	normalized = n.numberPattern.ReplaceAllString(normalized, "<NUMBER>")
	normalized = n.spacePattern.ReplaceAllString(normalized, " ")

	return strings.TrimSpace(normalized)
}
