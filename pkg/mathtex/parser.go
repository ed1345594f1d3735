// Package mathtex parses the LaTeX math subset understood by the built-in
// renderer and converts LaTeX source to plain text.
package mathtex

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	mathLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Frac", Pattern: `\\frac\b`},
		{Name: "Sqrt", Pattern: `\\sqrt\b`},
		{Name: "TextCmd", Pattern: `\\(?:text|mathrm)\b`},
		{Name: "Escaped", Pattern: `\\[{}%&#$_^ ,;!|\\]`},
		{Name: "Command", Pattern: `\\[a-zA-Z]+`},
		{Name: "Sup", Pattern: `\^`},
		{Name: "Sub", Pattern: `_`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
		{Name: "Run", Pattern: `[^\\^_{}]+`},
	})

	exprParser = participle.MustBuild[Expression](
		participle.Lexer(mathLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// Expression is a horizontal sequence of items.
type Expression struct {
	Items []*Item `parser:"@@*"`
}

// Item is an atom with optional superscript/subscript attachments.
type Item struct {
	Atom    *Atom     `parser:"@@"`
	Scripts []*Script `parser:"@@*"`
}

// Script attaches one superscript or subscript argument to the preceding atom.
type Script struct {
	Kind string `parser:"@('^' | '_')"`
	Arg  *Atom  `parser:"@@"`
}

// Sup reports whether the script raises its argument.
func (s *Script) Sup() bool { return s.Kind == "^" }

// Atom is a single horizontal unit. Exactly one field is set.
type Atom struct {
	Frac    *Frac       `parser:"  @@"`
	Sqrt    *Sqrt       `parser:"| @@"`
	Text    *TextGroup  `parser:"| @@"`
	Group   *Expression `parser:"| LBrace @@ RBrace"`
	Command *string     `parser:"| @Command"`
	Escaped *string     `parser:"| @Escaped"`
	Run     *string     `parser:"| @Run"`
}

// Frac is \frac{num}{den}.
type Frac struct {
	Num *Atom `parser:"Frac @@"`
	Den *Atom `parser:"@@"`
}

// Sqrt is \sqrt{arg}.
type Sqrt struct {
	Arg *Atom `parser:"Sqrt @@"`
}

// TextGroup is \text{...} or \mathrm{...}, rendered upright.
type TextGroup struct {
	Content *Expression `parser:"TextCmd LBrace @@ RBrace"`
}

// ParseError reports where parsing stopped and which fragment was rejected.
type ParseError struct {
	Fragment string
	Pos      lexer.Position
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d (near %q)", e.Message, e.Pos.Offset, e.Fragment)
}

// Parse parses math-mode content. Surrounding $/$$/\[ \] delimiters are
// stripped first, so callers can hand over raw user input.
func Parse(source string) (*Expression, error) {
	content := StripDelimiters(source)
	expr, err := exprParser.ParseString("", content)
	if err != nil {
		return nil, asParseError(content, err)
	}
	splitScripts(expr)
	return expr, nil
}

// splitScripts enforces single-token script arguments: in "x^23" only the
// "2" is raised and "3" continues on the baseline, matching TeX. The lexer
// hands the grammar a whole run after ^/_, so the split happens here.
func splitScripts(expr *Expression) {
	if expr == nil {
		return
	}
	for i := 0; i < len(expr.Items); i++ {
		item := expr.Items[i]
		splitAtomScripts(item.Atom)
		for j := 0; j < len(item.Scripts); j++ {
			script := item.Scripts[j]
			if script.Arg != nil && script.Arg.Run != nil {
				runes := []rune(*script.Arg.Run)
				if len(runes) > 1 {
					head := string(runes[0])
					rest := string(runes[1:])
					script.Arg = &Atom{Run: &head}

					tail := &Item{Atom: &Atom{Run: &rest}, Scripts: item.Scripts[j+1:]}
					item.Scripts = item.Scripts[:j+1]

					expr.Items = append(expr.Items, nil)
					copy(expr.Items[i+2:], expr.Items[i+1:])
					expr.Items[i+1] = tail
					break
				}
			}
			splitAtomScripts(script.Arg)
		}
	}
}

func splitAtomScripts(a *Atom) {
	if a == nil {
		return
	}
	switch {
	case a.Frac != nil:
		splitAtomScripts(a.Frac.Num)
		splitAtomScripts(a.Frac.Den)
	case a.Sqrt != nil:
		splitAtomScripts(a.Sqrt.Arg)
	case a.Text != nil:
		splitScripts(a.Text.Content)
	case a.Group != nil:
		splitScripts(a.Group)
	}
}

// StripDelimiters removes one layer of $...$, $$...$$ or \[...\] around the
// expression, if present.
func StripDelimiters(s string) string {
	text := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(text, "$$") && strings.HasSuffix(text, "$$") && len(text) >= 4:
		text = strings.TrimSpace(text[2 : len(text)-2])
	case strings.HasPrefix(text, `\[`) && strings.HasSuffix(text, `\]`) && len(text) >= 4:
		text = strings.TrimSpace(text[2 : len(text)-2])
	case strings.HasPrefix(text, "$") && strings.HasSuffix(text, "$") && len(text) >= 2:
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

func asParseError(content string, err error) error {
	perr, ok := err.(participle.Error)
	if !ok {
		return &ParseError{Fragment: content, Message: err.Error()}
	}

	pos := perr.Position()
	return &ParseError{
		Fragment: fragmentAt(content, pos.Offset),
		Pos:      pos,
		Message:  perr.Message(),
	}
}

// fragmentAt extracts a short window around the failing offset for error
// messages.
func fragmentAt(content string, offset int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	end := offset + 12
	if end > len(content) {
		end = len(content)
	}
	frag := content[offset:end]
	if frag == "" && content != "" {
		start := offset - 12
		if start < 0 {
			start = 0
		}
		frag = content[start:offset]
	}
	return frag
}
