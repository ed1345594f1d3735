package cmd

import (
	"fmt"

	"latexclip/pkg/clipboard"
	"latexclip/pkg/errors"

	"github.com/spf13/cobra"
)

var renderOutPath string

var renderCmd = &cobra.Command{
	Use:   "render [latex...]",
	Short: "Render LaTeX math to a PNG file",
	Long: `Renders a LaTeX math expression to a PNG image. The source is taken from
the positional arguments, or from stdin when none are given.`,
	Example: `  # Render an expression to equation.png
  latexclip render -o equation.png 'x = \frac{-b \pm \sqrt{b^2 - 4ac}}{2a}'

  # Render from stdin at 300 dpi with the full toolchain
  echo '\sum_{k=1}^{n} k' | latexclip render --full --dpi 300 -o sum.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if renderOutPath == "" {
			return errors.ValidationError("output path is required (-o)")
		}

		result, err := runRender(cmd, args)
		if err != nil {
			return err
		}

		if err := clipboard.SavePNG(result.Image, renderOutPath); err != nil {
			return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write output file", err)
		}

		b := result.Image.Bounds()
		fmt.Printf("Wrote %s (%dx%d, %s renderer, %s)\n",
			renderOutPath, b.Dx(), b.Dy(), result.Strategy, result.Elapsed.Round(roundTo))
		return nil
	},
}

func init() {
	addRenderFlags(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutPath, "out", "o", "", "Output PNG path (required)")
	if err := renderCmd.MarkFlagRequired("out"); err != nil {
		panic(err)
	}
}
