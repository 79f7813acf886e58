package validation

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	separators       = regexp.MustCompile(`[\s\-_]+`)
	nonAlphaNumeric  = regexp.MustCompile(`[^a-z0-9\-]`)
	multipleHyphens  = regexp.MustCompile(`-+`)
	nonExtensionRune = regexp.MustCompile(`[^a-z0-9]`)
)

// Slugify converts a string to a URL-safe slug
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = removeAccents(s)
	s = separators.ReplaceAllString(s, "-")
	s = nonAlphaNumeric.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")

	return s
}

// SanitizeFilename slugifies the base name of an uploaded file and keeps a
// cleaned extension, so "My Sketch (1).PNG" becomes "my-sketch-1.png".
// Directory components are dropped.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := filepath.Ext(name)
	base := Slugify(strings.TrimSuffix(name, ext))
	ext = nonExtensionRune.ReplaceAllString(strings.ToLower(ext), "")

	if base == "" {
		base = "upload"
	}
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// removeAccents removes accents from characters
func removeAccents(s string) string {
	accentMap := map[rune]rune{
		'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
		'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
		'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
		'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
		'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
		'ý': 'y', 'ÿ': 'y',
		'ñ': 'n', 'ç': 'c',
		'ß': 's',
	}

	var result strings.Builder
	for _, r := range s {
		if replacement, exists := accentMap[r]; exists {
			result.WriteRune(replacement)
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
