package mathtex

import (
	"regexp"
	"strings"
)

var (
	textToMathrmRe = regexp.MustCompile(`\\text\{`)
	leftRightRe    = regexp.MustCompile(`\\left|\\right`)
	runSpacesRe    = regexp.MustCompile(`[ \t]+`)
)

// Normalize prepares raw user input for a math renderer: strips display-math
// delimiters, converts \text to \mathrm, drops \left/\right sizing, escapes
// bare %, & and #, and wraps single-line input in $...$ if it is not already
// math mode.
func Normalize(source string) string {
	text := strings.TrimSpace(source)

	switch {
	case strings.HasPrefix(text, "$$") && strings.HasSuffix(text, "$$") && len(text) >= 4:
		text = strings.TrimSpace(text[2 : len(text)-2])
	case strings.HasPrefix(text, `\[`) && strings.HasSuffix(text, `\]`) && len(text) >= 4:
		text = strings.TrimSpace(text[2 : len(text)-2])
	}

	alreadyMath := strings.HasPrefix(text, "$") && strings.HasSuffix(text, "$") && len(text) >= 2

	text = textToMathrmRe.ReplaceAllString(text, `\mathrm{`)
	text = leftRightRe.ReplaceAllString(text, "")
	text = escapeSpecials(text)
	text = runSpacesRe.ReplaceAllString(text, " ")

	if !alreadyMath && !strings.Contains(text, "\n") {
		text = "$" + text + "$"
	}
	return text
}

// escapeSpecials backslash-escapes bare %, & and #. Already-escaped
// occurrences pass through untouched.
func escapeSpecials(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			b.WriteRune(r)
			escaped = true
		case '%', '&', '#':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
