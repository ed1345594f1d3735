package cmd

import (
	"fmt"
	"sort"
	"strings"

	"latexclip/pkg/errors"
	"latexclip/pkg/filter"
	"latexclip/pkg/mathtex"

	"github.com/spf13/cobra"
)

var (
	symbolsPattern string
	symbolsMode    string
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List the LaTeX commands the built-in renderer understands",
	Long: `Lists every command the built-in renderer can typeset, with the glyph it
draws. Input outside this set needs the full toolchain (--full).`,
	Example: `  # All known commands
  latexclip symbols

  # Everything arrow-shaped
  latexclip symbols --filter arrow

  # Fuzzy search when you only remember fragments
  latexclip symbols --filter lmda --mode fuzzy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := filterSymbolNames(symbolsPattern, symbolsMode)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No symbols match.")
			return nil
		}

		for _, name := range names {
			glyph, ok := mathtex.Symbol(name)
			if ok && strings.TrimSpace(glyph) != "" && glyph != name {
				fmt.Printf("  \\%-16s %s\n", name, glyph)
			} else {
				fmt.Printf("  \\%s\n", name)
			}
		}
		return nil
	},
}

func parseFilterMode(s string) (filter.FilterMode, error) {
	switch strings.ToLower(s) {
	case "", "contains":
		return filter.FilterModeContains, nil
	case "exact":
		return filter.FilterModeExact, nil
	case "regex":
		return filter.FilterModeRegex, nil
	case "fuzzy":
		return filter.FilterModeFuzzy, nil
	default:
		return filter.FilterModeNone, errors.ValidationError(
			fmt.Sprintf("unknown filter mode %q (exact, contains, regex, fuzzy)", s))
	}
}

// filterSymbolNames returns the sorted command names matching the pattern
// under the given mode. An empty pattern lists everything.
func filterSymbolNames(pattern, mode string) ([]string, error) {
	names := mathtex.SymbolNames()
	sort.Strings(names)
	if pattern == "" {
		return names, nil
	}

	m, err := parseFilterMode(mode)
	if err != nil {
		return nil, err
	}
	f, err := filter.NewStringFilter(pattern, m)
	if err != nil {
		return nil, errors.ValidationError(err.Error())
	}

	var matched []string
	for _, name := range names {
		if f.Match(name) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

func init() {
	symbolsCmd.Flags().StringVar(&symbolsPattern, "filter", "", "Only list commands matching this pattern")
	symbolsCmd.Flags().StringVar(&symbolsMode, "mode", "contains", "Matching mode (exact, contains, regex, fuzzy)")
}
