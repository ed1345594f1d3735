package mathtex

import "testing"

func TestToPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inline delimiters dropped", "$E = mc^2$", "E = mc^2"},
		{"display delimiters dropped", "$$\\frac{a}{b}$$", "(a)/(b)"},
		{"simple fraction", "\\frac{1}{2}", "(1)/(2)"},
		{"nested fraction keeps outer command", "\\frac{1+\\frac{1}{x}}{y}", "\\frac(1+(1)/(x))(y)"},
		{"adjacent fractions both rewritten", "\\frac{a}{b}\\frac{c}{d}", "(a)/(b)(c)/(d)"},
		{"separated fractions both rewritten", "\\frac{a}{b} + \\frac{c}{d}", "(a)/(b) + (c)/(d)"},
		{"sqrt of fraction", "\\sqrt{\\frac{a}{b}}", "sqrt((a)/(b))"},
		{"text group with fraction", "\\text{Area} = \\frac{1}{2} b h", "Area = (1)/(2) b h"},
		{"braced superscript unwrapped", "x^{2}+y^{n+1}", "x^2+y^n+1"},
		{"braced subscript unwrapped", "a_{ij}", "a_ij"},
		{"bare scripts untouched", "x^2_i", "x^2_i"},
		{"braces become parens", "{a}{b}", "(a)(b)"},
		{"whitespace collapsed", "a  +\n\tb", "a + b"},
		{"unmatched brace survives", "\\frac{a}{", "\\frac(a)("},
		{"empty input", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ToPlainText(tc.in)
			if got != tc.want {
				t.Errorf("ToPlainText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
