package cmd

import (
	"fmt"

	"latexclip/pkg/clipboard"
	"latexclip/pkg/errors"
	"latexclip/pkg/mathtex"

	"github.com/spf13/cobra"
)

var textCopyFlag bool

var textCmd = &cobra.Command{
	Use:   "text [latex...]",
	Short: "Convert LaTeX math to readable plain text",
	Long: `Strips math delimiters and rewrites common constructs into a plain-text
approximation: \frac{a}{b} becomes (a)/(b), \sqrt{x} becomes sqrt(x),
braces become parentheses. Useful for chat clients that render no math
at all.`,
	Example: `  latexclip text '\frac{1}{2} m v^2'
  latexclip text --copy '$E = mc^2$'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args)
		if err != nil {
			return err
		}

		plain := mathtex.ToPlainText(source)
		fmt.Println(plain)

		if textCopyFlag {
			if err := clipboard.WriteText(plain); err != nil {
				return errors.NewWithError(errors.ExitCodeClipboard, "failed to write clipboard", err)
			}
		}
		return nil
	},
}

func init() {
	textCmd.Flags().BoolVar(&textCopyFlag, "copy", false, "Also place the text on the clipboard")
}
