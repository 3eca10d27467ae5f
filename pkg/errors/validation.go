package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateElementID validates a diagram element identifier. It rejects IDs
// that would break downstream target syntaxes or that could smuggle control
// sequences into generated output.
//
// The rules:
//   - No empty IDs
//   - No control characters
//   - No null bytes
//   - Maximum length of 256 characters
//
// Syntax-specific escaping (DOT quoting, XML entities) is handled by the
// individual generators; this is the floor every format shares.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "element ID cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidID, "element ID too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "element ID contains control characters")
		}
	}

	if strings.Contains(id, "\x00") {
		return New(ErrCodeInvalidID, "element ID contains null bytes")
	}

	return nil
}

// formatNameRegex matches valid format names: lowercase alphanumeric with
// optional single hyphens, as used by the format registry.
var formatNameRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateFormatName validates a diagram format name (e.g., "mermaid",
// "drawio"). Names are registry keys and appear in CLI flags and API
// payloads, so shape matters.
func ValidateFormatName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFormat, "format name cannot be empty")
	}

	if !formatNameRegex.MatchString(name) {
		return New(ErrCodeInvalidFormat, "invalid format name: %q", name)
	}

	return nil
}

// hexColorRegex matches 3- and 6-digit hex colors with a leading hash.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a style color value. Diaflow accepts hex colors
// (#rgb or #rrggbb) and a small set of CSS keywords that every supported
// target syntax understands.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidInput, "color cannot be empty")
	}

	if hexColorRegex.MatchString(color) {
		return nil
	}

	switch strings.ToLower(color) {
	case "none", "transparent", "black", "white", "red", "green", "blue",
		"yellow", "orange", "purple", "gray", "grey":
		return nil
	}

	return New(ErrCodeInvalidInput, "invalid color value: %q", color)
}
