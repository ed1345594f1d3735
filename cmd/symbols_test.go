package cmd

import (
	"sort"
	"testing"
)

func TestFilterSymbolNames(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		mode       string
		wantSome   []string
		wantAbsent []string
		wantErr    bool
	}{
		{
			name:       "empty pattern lists everything",
			wantSome:   []string{"alpha", "frac", "sqrt", "rightarrow"},
			wantAbsent: nil,
		},
		{
			name:       "contains narrows",
			pattern:    "arrow",
			mode:       "contains",
			wantSome:   []string{"rightarrow", "leftarrow", "uparrow"},
			wantAbsent: []string{"alpha", "frac"},
		},
		{
			name:       "exact is case-insensitive whole-name match",
			pattern:    "pi",
			mode:       "exact",
			wantSome:   []string{"pi", "Pi"},
			wantAbsent: []string{"varpi"},
		},
		{
			name:       "fuzzy matches subsequences",
			pattern:    "lmda",
			mode:       "fuzzy",
			wantSome:   []string{"lambda"},
			wantAbsent: []string{"frac"},
		},
		{
			name:     "regex mode",
			pattern:  "^var",
			mode:     "regex",
			wantSome: []string{"varepsilon", "varphi"},
		},
		{
			name:    "invalid regex",
			pattern: "[broken(",
			mode:    "regex",
			wantErr: true,
		},
		{
			name:    "unknown mode",
			pattern: "x",
			mode:    "sideways",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := filterSymbolNames(tt.pattern, tt.mode)
			if tt.wantErr {
				if err == nil {
					t.Error("filterSymbolNames() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("filterSymbolNames() unexpected error = %v", err)
			}

			if !sort.StringsAreSorted(names) {
				t.Error("result is not sorted")
			}

			have := make(map[string]bool, len(names))
			for _, n := range names {
				have[n] = true
			}
			for _, want := range tt.wantSome {
				if !have[want] {
					t.Errorf("expected %q in result", want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if have[absent] {
					t.Errorf("did not expect %q in result", absent)
				}
			}
		})
	}
}
