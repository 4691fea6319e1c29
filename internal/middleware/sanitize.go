package middleware

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	validIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	invalidIDPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// SanitizeConfig contains configuration for input sanitization
type SanitizeConfig struct {
	MaxStringLength int  // Maximum allowed length in runes
	AllowNewlines   bool // Whether to keep \n and \t (multi-line descriptions)
}

// DefaultSanitizeConfig returns default sanitization configuration
func DefaultSanitizeConfig() SanitizeConfig {
	return SanitizeConfig{
		MaxStringLength: 10000,
		AllowNewlines:   false,
	}
}

// SanitizeString sanitizes free text typed by the user (names, functions,
// responsibilities). Null bytes and control characters are removed, the text is
// trimmed and truncated to the configured length.
func SanitizeString(input string, config SanitizeConfig) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if unicode.IsControl(r) && !(config.AllowNewlines && (r == '\n' || r == '\t')) {
			continue
		}
		result.WriteRune(r)
	}
	input = strings.TrimSpace(result.String())

	// Truncate to max length without splitting a multi-byte character
	if config.MaxStringLength > 0 {
		if runes := []rune(input); len(runes) > config.MaxStringLength {
			input = string(runes[:config.MaxStringLength])
		}
	}

	return input
}

// SanitizeTitle sanitizes a title/name string
func SanitizeTitle(title string) string {
	config := DefaultSanitizeConfig()
	config.MaxStringLength = 255

	return SanitizeString(title, config)
}

// SanitizeDescription sanitizes a multi-line description
func SanitizeDescription(text string) string {
	config := DefaultSanitizeConfig()
	config.AllowNewlines = true

	return SanitizeString(text, config)
}

// SanitizeFilename sanitizes a filename by:
// - Removing path traversal attempts
// - Removing dangerous characters
// - Ensuring a non-empty result
func SanitizeFilename(filename string) string {
	// Get just the base name (remove any path components)
	filename = filepath.Base(filename)

	// Remove null bytes
	filename = strings.ReplaceAll(filename, "\x00", "")

	// Remove path traversal sequences
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "")
	filename = strings.ReplaceAll(filename, "\\", "")
	filename = strings.ReplaceAll(filename, "\"", "")

	// Remove control characters
	filename = removeControlChars(filename)

	// Trim whitespace
	filename = strings.TrimSpace(filename)

	// If filename is empty after sanitization, return a default
	if filename == "" || filename == "." {
		return "unnamed_file"
	}

	return filename
}

// SanitizeID sanitizes an ID string (session, task, front and role ids)
func SanitizeID(id string) string {
	// Remove whitespace
	id = strings.TrimSpace(id)

	// Remove any non-alphanumeric characters except hyphens and underscores
	return invalidIDPattern.ReplaceAllString(id, "")
}

// ValidateID validates that an ID is in a valid format
func ValidateID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}

	// ID should only contain alphanumeric characters, hyphens, and underscores
	return validIDPattern.MatchString(id)
}

// removeControlChars removes control characters from a string
func removeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
