package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"latexclip/pkg/clipboard"
	"latexclip/pkg/errors"

	"github.com/spf13/cobra"
)

var copyFormat string

var copyCmd = &cobra.Command{
	Use:   "copy [latex...]",
	Short: "Render LaTeX math and copy the image to the clipboard",
	Long: `Renders a LaTeX math expression and places the resulting image on the
system clipboard, ready to paste into chat, documents or slides.

On platforms without image clipboard support the image is written to a
PNG file instead and its path is printed.`,
	Example: `  # Copy an equation to the clipboard
  latexclip copy 'e^{i\pi} + 1 = 0'

  # Copy with a white background for apps that ignore transparency
  latexclip copy --bg '#ffffff' '\frac{a}{b}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch copyFormat {
		case "all", "png", "dib":
		default:
			return errors.ValidationError("format must be one of: all, png, dib")
		}

		result, err := runRender(cmd, args)
		if err != nil {
			return err
		}

		err = clipboard.WriteImage(result.Image, result.DPI, copyFormat)
		if stderrors.Is(err, clipboard.ErrImageUnsupported) {
			path := fallbackPNGPath()
			if werr := clipboard.SavePNG(result.Image, path); werr != nil {
				return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write fallback image", werr)
			}
			fmt.Printf("Image clipboard not available here; saved to %s\n", path)
			return nil
		}
		if err != nil {
			return errors.NewWithError(errors.ExitCodeClipboard, "failed to write clipboard", err)
		}

		b := result.Image.Bounds()
		fmt.Printf("Copied %dx%d image to clipboard (%s renderer, %s)\n",
			b.Dx(), b.Dy(), result.Strategy, result.Elapsed.Round(roundTo))
		return nil
	},
}

func fallbackPNGPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "latexclip.png")
}

func init() {
	addRenderFlags(copyCmd)
	copyCmd.Flags().StringVar(&copyFormat, "format", "all", "Clipboard image formats to offer (all, png, dib)")
}
