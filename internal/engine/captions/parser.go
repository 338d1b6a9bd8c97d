// Package captions turns subtitle documents into validated plain-text
// transcripts. The parser and validator are pure; the fetcher resolves
// signed caption-serving URLs through the stealth HTTP client.
package captions

import (
	"regexp"
	"strings"
)

// Bare timestamp lines open a cue even without an arrow token: some players
// serve SRT-ish documents with "HH:MM:SS" or "MM:SS" prefixes only.
var (
	longTimestampRe  = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}`)
	shortTimestampRe = regexp.MustCompile(`^\d{2}:\d{2}`)
)

// Parse extracts plain spoken text from a VTT or SRT caption document.
// Header/NOTE lines are dropped, timestamp and arrow lines open a cue
// without contributing output, a blank line closes the cue, and all cue
// content lines are joined with single spaces. An input with no cues
// yields an empty string.
func Parse(doc string) string {
	var out []string
	inCue := false

	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			inCue = false
			continue
		}
		if strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") {
			continue
		}
		if longTimestampRe.MatchString(line) || shortTimestampRe.MatchString(line) {
			inCue = true
			continue
		}
		if strings.Contains(line, "-->") {
			inCue = true
			continue
		}
		if inCue {
			out = append(out, line)
		}
	}
	return strings.Join(out, " ")
}
