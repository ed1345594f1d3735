package cmd

import (
	"fmt"

	"latexclip/pkg/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var probeRefreshFlag bool

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check whether the full LaTeX toolchain is available",
	Long: `Looks for pdflatex and pdftoppm, on PATH or at the paths pinned in the
config file. Results are cached per PATH value; use --refresh to force a
fresh lookup after installing or removing the toolchain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(presetFlag)
		if err != nil {
			return err
		}

		cap, err := probeToolchain(cfg, probeRefreshFlag)
		if err != nil {
			return err
		}

		if cap.Available {
			color.Green("Full LaTeX toolchain available")
			fmt.Printf("  pdflatex: %s\n", cap.LatexPath)
			fmt.Printf("  pdftoppm: %s\n", cap.RasterizerPath)
		} else {
			color.Yellow("Full LaTeX toolchain not found")
			fmt.Println("  The built-in renderer will be used.")
			fmt.Println("  Install TeX Live (pdflatex) and poppler-utils (pdftoppm) to enable --full.")
		}
		fmt.Printf("  Checked: %s\n", cap.CheckedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	probeCmd.Flags().BoolVar(&probeRefreshFlag, "refresh", false, "Ignore the cached result and probe again")
}
