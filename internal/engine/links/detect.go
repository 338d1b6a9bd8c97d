// Package links discovers lecture-video links on course pages: anchor and
// iframe harvesting, video-provider detection, and the modules-page crawl.
package links

import "strings"

// providerPatterns maps a provider name to URL substrings that identify it.
// Matching is case-insensitive; first hit wins in map-independent order per
// provider, so patterns must not overlap across providers.
var providerPatterns = []struct {
	name     string
	patterns []string
}{
	{"panopto", []string{"panopto"}},
	{"kaltura", []string{"kaltura", "kaf"}},
	{"yuja", []string{"yuja"}},
	{"zoom", []string{"zoom.us"}},
	{"youtube", []string{"youtube.com", "youtu.be"}},
	{"canvas_media", []string{"instructuremedia", "mediaobjects"}},
	{"vimeo", []string{"vimeo.com"}},
}

// DetectProvider returns the video provider name for href, or "" when the
// URL does not belong to a known video platform.
func DetectProvider(href string) string {
	lower := strings.ToLower(href)
	for _, p := range providerPatterns {
		for _, pat := range p.patterns {
			if strings.Contains(lower, pat) {
				return p.name
			}
		}
	}
	return ""
}
