package mathtex

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare text gets math mode", "x + y", "$x + y$"},
		{"already math stays", "$x + y$", "$x + y$"},
		{"display math unwrapped then rewrapped", "$$x^2$$", "$x^2$"},
		{"bracket display math", `\[ \frac{a}{b} \]`, `$\frac{a}{b}$`},
		{"text becomes mathrm", `\text{rate} = 5`, `$\mathrm{rate} = 5$`},
		{"left right removed", `\left( x \right)`, "$( x )$"},
		{"bare specials escaped", "Save 50% & more #1", `$Save 50\% \& more \#1$`},
		{"existing escapes untouched", `Already escaped \% value`, `$Already escaped \% value$`},
		{"spaces collapsed", "a   +   b", "$a + b$"},
		{"multiline left unwrapped", "a\nb", "a\nb"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEscapeSpecialsDoubleBackslash(t *testing.T) {
	// \\ ends the escape, so a following special still needs its own.
	got := escapeSpecials(`a \\ % b`)
	want := `a \\ \% b`
	if got != want {
		t.Errorf("escapeSpecials = %q, want %q", got, want)
	}
}
