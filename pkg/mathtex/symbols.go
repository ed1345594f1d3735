package mathtex

// symbols maps LaTeX command names (without the backslash) to the glyphs the
// built-in renderer draws for them. Structural commands (\frac, \sqrt, \text,
// \mathrm) have their own grammar rules and never reach this table.
var symbols = map[string]string{
	// Greek, lowercase
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ",
	"epsilon": "ε", "varepsilon": "ε", "zeta": "ζ", "eta": "η",
	"theta": "θ", "vartheta": "ϑ", "iota": "ι", "kappa": "κ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"pi": "π", "varpi": "ϖ", "rho": "ρ", "varrho": "ϱ",
	"sigma": "σ", "varsigma": "ς", "tau": "τ", "upsilon": "υ",
	"phi": "φ", "varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",

	// Greek, uppercase
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ",
	"Xi": "Ξ", "Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ",
	"Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",

	// Binary operators
	"pm": "±", "mp": "∓", "times": "×", "div": "÷",
	"cdot": "⋅", "ast": "∗", "star": "⋆", "circ": "∘",
	"bullet": "•", "oplus": "⊕", "ominus": "⊖", "otimes": "⊗",
	"cap": "∩", "cup": "∪", "wedge": "∧", "vee": "∨",
	"setminus": "∖",

	// Relations
	"leq": "≤", "le": "≤", "geq": "≥", "ge": "≥",
	"neq": "≠", "ne": "≠", "equiv": "≡", "approx": "≈",
	"sim": "∼", "simeq": "≃", "cong": "≅", "propto": "∝",
	"ll": "≪", "gg": "≫", "prec": "≺", "succ": "≻",
	"subset": "⊂", "supset": "⊃", "subseteq": "⊆", "supseteq": "⊇",
	"in": "∈", "notin": "∉", "ni": "∋",
	"perp": "⊥", "parallel": "∥", "mid": "∣",

	// Arrows
	"to": "→", "rightarrow": "→", "leftarrow": "←",
	"leftrightarrow": "↔", "Rightarrow": "⇒", "Leftarrow": "⇐",
	"Leftrightarrow": "⇔", "mapsto": "↦", "uparrow": "↑",
	"downarrow": "↓", "implies": "⟹", "iff": "⟺",

	// Big operators and calculus
	"sum": "∑", "prod": "∏", "int": "∫", "oint": "∮",
	"partial": "∂", "nabla": "∇", "infty": "∞",

	// Logic and sets
	"forall": "∀", "exists": "∃", "nexists": "∄", "neg": "¬",
	"lnot": "¬", "emptyset": "∅", "varnothing": "∅", "aleph": "ℵ",

	// Named functions, rendered upright as plain letters
	"sin": "sin", "cos": "cos", "tan": "tan", "cot": "cot",
	"sec": "sec", "csc": "csc", "arcsin": "arcsin", "arccos": "arccos",
	"arctan": "arctan", "sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"exp": "exp", "log": "log", "ln": "ln", "lg": "lg",
	"lim": "lim", "sup": "sup", "inf": "inf", "max": "max",
	"min": "min", "det": "det", "dim": "dim", "gcd": "gcd",
	"deg": "deg", "arg": "arg", "mod": "mod",

	// Dots, accents-as-glyphs, misc
	"cdots": "⋯", "ldots": "…", "dots": "…", "vdots": "⋮", "ddots": "⋱",
	"prime": "′", "hbar": "ℏ", "ell": "ℓ", "Re": "ℜ", "Im": "ℑ",
	"wp": "℘", "angle": "∠", "triangle": "△", "degree": "°",

	// Spacing. The punctuation spacers \, \; \! are lexed as escapes and
	// handled by the renderer directly, so they do not appear here.
	"quad": " ", "qquad": "  ",
}

// Symbol resolves a command name to its glyph.
func Symbol(name string) (string, bool) {
	glyph, ok := symbols[name]
	return glyph, ok
}

// SymbolNames returns every known command name, for "did you mean"
// suggestions against unknown commands.
func SymbolNames() []string {
	names := make([]string, 0, len(symbols)+4)
	for name := range symbols {
		names = append(names, name)
	}
	// Structural commands are valid input too, so suggestions should be able
	// to land on them.
	names = append(names, "frac", "sqrt", "text", "mathrm")
	return names
}
