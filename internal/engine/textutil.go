package engine

import (
	"regexp"
	"strings"
)

var (
	unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	dirPunct        = regexp.MustCompile(`[/:&,]`)
	multiSpace      = regexp.MustCompile(`\s+`)
	multiUnderscore = regexp.MustCompile(`_+`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// SanitizeFilename returns a filesystem-safe filename stem (no extension).
func SanitizeFilename(text string) string {
	if text == "" {
		return "untitled_video"
	}
	text = unsafeFileChars.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = strings.TrimSpace(Truncate(text, 100))
	if text == "" {
		return "untitled_video"
	}
	return text
}

// SafeDirName normalizes a module name into a directory name:
// punctuation to spaces, runs of whitespace to single underscores.
func SafeDirName(name string) string {
	s := dirPunct.ReplaceAllString(name, " ")
	s = multiSpace.ReplaceAllString(strings.TrimSpace(s), "_")
	return strings.Trim(multiUnderscore.ReplaceAllString(s, "_"), "_")
}

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// Truncate returns the first n characters of s, never splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
