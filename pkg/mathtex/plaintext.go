package mathtex

import (
	"regexp"
	"strings"
)

var (
	displayMathRe = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	inlineMathRe  = regexp.MustCompile(`(?s)\$(.*?)\$`)
	textGroupRe   = regexp.MustCompile(`\\(?:text|mathrm)\{([^}]*)\}`)
	// One level of nesting per argument, rewritten in a single left-to-right
	// pass: an outer \frac whose argument got rewritten is left alone and
	// only its braces become parentheses.
	fracRe   = regexp.MustCompile(`\\frac\{([^{}]+|\{[^}]*\})\}\{([^{}]+|\{[^}]*\})\}`)
	supRe    = regexp.MustCompile(`\^\{([^}]*)\}`)
	subRe    = regexp.MustCompile(`_\{([^}]*)\}`)
	spacesRe = regexp.MustCompile(`\s+`)
)

// ToPlainText converts LaTeX math to a readable single-line plain-text form:
// math delimiters dropped, \frac{a}{b} as (a)/(b), braces as parentheses.
// It is total: any input produces some output, never an error.
func ToPlainText(source string) string {
	out := displayMathRe.ReplaceAllString(source, "$1")
	out = inlineMathRe.ReplaceAllString(out, "$1")
	out = textGroupRe.ReplaceAllString(out, "$1")
	out = fracRe.ReplaceAllString(out, "($1)/($2)")
	out = strings.ReplaceAll(out, `\sqrt`, "sqrt")
	out = supRe.ReplaceAllString(out, "^$1")
	out = subRe.ReplaceAllString(out, "_$1")
	out = strings.ReplaceAll(out, "{", "(")
	out = strings.ReplaceAll(out, "}", ")")
	out = spacesRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
