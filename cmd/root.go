package cmd

import (
	"fmt"
	"os"

	"latexclip/pkg/errors"
	"latexclip/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	Version   string
	BuildTime string
	GitCommit string
)

var (
	logLevel   string
	presetFlag string
)

var rootCmd = &cobra.Command{
	Use:   "latexclip",
	Short: "Render LaTeX math to clipboard images",
	Long: `Converts LaTeX math into bitmap images and plain text for pasting into
chat, documents and slides. Renders with a built-in typesetter by default,
or with a full pdflatex toolchain when requested.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Explicit flag takes precedence over the environment.
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if envLevel := os.Getenv("LATEXCLIP_LOG_LEVEL"); envLevel != "" {
				level = envLevel
			}
		}
		logger.SetLevel(level)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver := Version
		if ver == "" {
			ver = "dev"
		}
		bt := BuildTime
		if bt == "" {
			bt = "unknown"
		}
		gc := GitCommit
		if gc == "" {
			gc = "unknown"
		}

		fmt.Printf("latexclip version %s\n", ver)
		fmt.Printf("Built: %s\n", bt)
		fmt.Printf("Git commit: %s\n", gc)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitCode := errors.HandleReturn(err)
		os.Exit(int(exitCode))
	}
}

func init() {
	RegisterCommands(rootCmd)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&presetFlag, "preset", "", "Named render preset from the config file")
}
