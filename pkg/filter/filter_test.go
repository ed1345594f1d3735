package filter

import (
	"testing"
)

func TestNewStringFilter(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		mode    FilterMode
		wantErr bool
	}{
		{
			name:    "valid exact filter",
			pattern: "alpha",
			mode:    FilterModeExact,
			wantErr: false,
		},
		{
			name:    "valid regex filter",
			pattern: "^al.*",
			mode:    FilterModeRegex,
			wantErr: false,
		},
		{
			name:    "invalid regex filter",
			pattern: "[invalid(",
			mode:    FilterModeRegex,
			wantErr: true,
		},
		{
			name:    "valid fuzzy filter",
			pattern: "alp",
			mode:    FilterModeFuzzy,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := NewStringFilter(tt.pattern, tt.mode)
			if tt.wantErr {
				if err == nil {
					t.Error("NewStringFilter() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("NewStringFilter() unexpected error = %v", err)
			}
			if filter == nil {
				t.Error("NewStringFilter() returned nil filter")
			}
		})
	}
}

func TestStringFilter_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		mode    FilterMode
		input   string
		want    bool
	}{
		{
			name:    "exact match - case insensitive",
			pattern: "Alpha",
			mode:    FilterModeExact,
			input:   "alpha",
			want:    true,
		},
		{
			name:    "exact no match on prefix",
			pattern: "alpha",
			mode:    FilterModeExact,
			input:   "alphabet",
			want:    false,
		},
		{
			name:    "contains match",
			pattern: "arrow",
			mode:    FilterModeContains,
			input:   "Rightarrow",
			want:    true,
		},
		{
			name:    "regex match",
			pattern: "^.*arrow$",
			mode:    FilterModeRegex,
			input:   "leftarrow",
			want:    true,
		},
		{
			name:    "fuzzy match subsequence",
			pattern: "lmda",
			mode:    FilterModeFuzzy,
			input:   "lambda",
			want:    true,
		},
		{
			name:    "none mode matches everything",
			pattern: "",
			mode:    FilterModeNone,
			input:   "anything",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := NewStringFilter(tt.pattern, tt.mode)
			if err != nil {
				t.Fatalf("NewStringFilter() error = %v", err)
			}
			if got := filter.Match(tt.input); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"alpha", "alpha", 0},
		{"alpha", "alfa", 2},
		{"gamma", "gama", 1},
		{"", "beta", 4},
		{"Alpha", "alpha", 0},
	}

	for _, tt := range tests {
		if got := LevenshteinDistance(tt.s1, tt.s2); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"alpha", "beta", "gamma", "delta", "frac", "sqrt"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "close typo",
			input: "alfa",
			want:  "alpha",
		},
		{
			name:  "single dropped letter",
			input: "gama",
			want:  "gamma",
		},
		{
			name:  "exact candidate",
			input: "frac",
			want:  "frac",
		},
		{
			name:  "nothing plausible",
			input: "zzzzzzzz",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Suggest(tt.input, candidates); got != tt.want {
				t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
