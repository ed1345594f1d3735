package cmd

import (
	"fmt"
	"os"

	"latexclip/pkg/config"
	"latexclip/pkg/errors"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage latexclip configuration and presets",
	Long:  `Show, initialize and inspect the latexclip configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Display the effective render settings after config, environment and preset resolution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(presetFlag)
		if err != nil {
			return err
		}

		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Println("Current Configuration:")
		fmt.Println("======================")
		fmt.Printf("Config file: %s\n", path)
		fmt.Printf("Active Preset: %s\n", func() string {
			if presetFlag != "" {
				return presetFlag
			}
			if cfg.ActivePreset == "" {
				return "(none)"
			}
			return cfg.ActivePreset
		}())
		fmt.Println()
		fmt.Printf("DPI: %d\n", cfg.Render.DPI)
		fmt.Printf("Font Size: %gpt\n", cfg.Render.FontSize)
		fmt.Printf("Foreground: %s\n", cfg.Render.Foreground)
		fmt.Printf("Background: %s\n", func() string {
			if cfg.Render.Transparent {
				return "transparent"
			}
			return cfg.Render.Background
		}())
		fmt.Printf("Full LaTeX: %t\n", cfg.Render.UseFullLatex)
		fmt.Printf("Fallback to Builtin: %t\n", cfg.Render.FallbackToBuiltin)
		fmt.Printf("Timeout: %dms\n", cfg.Render.TimeoutMs)

		if cfg.Toolchain.LatexPath != "" || cfg.Toolchain.RasterizerPath != "" {
			fmt.Println()
			fmt.Printf("Pinned pdflatex: %s\n", orUnset(cfg.Toolchain.LatexPath))
			fmt.Printf("Pinned pdftoppm: %s\n", orUnset(cfg.Toolchain.RasterizerPath))
		}

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long:  `Write a config file with the defaults and two example presets. Refuses to overwrite an existing file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return errors.ConfigError(fmt.Sprintf("config file already exists at %s", path))
		}

		cfg := &config.Config{
			Render: config.RenderConfig{
				DPI:       config.DefaultDPI,
				FontSize:  config.DefaultFontSize,
				TimeoutMs: config.DefaultTimeoutMs,
			},
			Presets: []config.Preset{
				{
					Name:   "slides",
					Render: config.RenderConfig{DPI: 300, FontSize: 40},
				},
				{
					Name:   "inline",
					Render: config.RenderConfig{DPI: 110, FontSize: 18},
				},
			},
		}
		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List configured render presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		names := cfg.ListPresets()
		if len(names) == 0 {
			fmt.Println("No presets configured.")
			fmt.Println("Run 'latexclip config init' to create a starter config with examples.")
			return nil
		}

		fmt.Println("Presets:")
		for _, name := range names {
			preset, _ := cfg.GetPreset(name)
			active := ""
			if name == cfg.ActivePreset {
				active = " *active*"
			}
			fmt.Printf("  %s%s\n", name, active)
			if preset.Render.DPI != 0 {
				fmt.Printf("    DPI: %d\n", preset.Render.DPI)
			}
			if preset.Render.FontSize != 0 {
				fmt.Printf("    Font Size: %gpt\n", preset.Render.FontSize)
			}
		}
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
