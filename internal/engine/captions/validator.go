package captions

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rejection reasons, in evaluation order. The first failing rule wins;
// later rules are not evaluated.
const (
	ReasonTooShort       = "too_short"
	ReasonTooManyBraces  = "too_many_braces"
	ReasonLowAlphaRatio  = "low_alpha_ratio"
	ReasonNotEnoughWords = "not_enough_words"
)

// cssPatternSources are markers characteristic of stylesheet/bundler
// payloads captured by over-broad selectors. Order matters: the first
// matching pattern's source is embedded in the rejection reason.
var cssPatternSources = []string{
	`sourceMappingURL`,
	`\.plugin-button__`,
	`\.scss\.`,
	`sourceMappingURL=`,
	`base64,`,
	`\{[\s]*[a-z-]+[\s]*:`,
	`background-color:`,
	`@media\s`,
	`@import\s`,
	`webpack://`,
	`__webpack_require__`,
}

var cssPatterns = compileCSSPatterns()

func compileCSSPatterns() []*regexp.Regexp {
	ps := make([]*regexp.Regexp, len(cssPatternSources))
	for i, src := range cssPatternSources {
		ps[i] = regexp.MustCompile(`(?i)` + src)
	}
	return ps
}

// Verdict classifies one candidate text blob. Reason is set only when the
// blob was rejected, and names exactly the first failing rule.
type Verdict struct {
	Valid  bool
	Reason string
}

// Validate decides whether text is genuine spoken-word transcript material.
// Pure function, no I/O. Rules apply in fixed order, each a hard gate:
// minimum length, stylesheet/bundler markers, brace/semicolon density,
// alphabetic ratio, word count.
func Validate(text string) Verdict {
	if utf8.RuneCountInString(text) < 50 {
		return Verdict{Reason: ReasonTooShort}
	}

	for i, p := range cssPatterns {
		if p.MatchString(text) {
			return Verdict{Reason: fmt.Sprintf("css_pattern_match:%s", cssPatternSources[i])}
		}
	}

	if strings.Count(text, "{") > 5 || strings.Count(text, ";") > 10 {
		return Verdict{Reason: ReasonTooManyBraces}
	}

	letters := 0
	total := 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if float64(letters)/float64(total) < 0.3 {
		return Verdict{Reason: ReasonLowAlphaRatio}
	}

	if len(strings.Fields(text)) < 10 {
		return Verdict{Reason: ReasonNotEnoughWords}
	}

	return Verdict{Valid: true}
}
