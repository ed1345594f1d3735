package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"latexclip/pkg/errors"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDPI       = 150
	DefaultFontSize  = 28
	DefaultTimeoutMs = 15000
)

// RenderConfig holds the settings the render pipeline consumes. The core
// never reads these from global state; the CLI resolves them into an
// explicit render.Request.
type RenderConfig struct {
	DPI               int     `yaml:"dpi"`
	FontSize          float64 `yaml:"font_size"`
	Foreground        string  `yaml:"foreground"`
	Background        string  `yaml:"background"`
	Transparent       bool    `yaml:"transparent"`
	UseFullLatex      bool    `yaml:"use_full_latex"`
	FallbackToBuiltin bool    `yaml:"fallback_to_builtin"`
	TimeoutMs         int     `yaml:"timeout_ms"`
}

// ToolchainConfig optionally pins the external binaries instead of
// discovering them on PATH.
type ToolchainConfig struct {
	LatexPath      string `yaml:"latex_path"`
	RasterizerPath string `yaml:"rasterizer_path"`
}

// Preset is a named bundle of render settings (e.g. "slides", "inline").
type Preset struct {
	Name    string       `yaml:"name"`
	Render  RenderConfig `yaml:"render"`
	Default bool         `yaml:"default,omitempty"`
}

// Config is the complete on-disk configuration.
type Config struct {
	Render       RenderConfig    `yaml:"render"`
	Toolchain    ToolchainConfig `yaml:"toolchain"`
	Presets      []Preset        `yaml:"presets,omitempty"`
	ActivePreset string          `yaml:"active_preset,omitempty"`
}

// Load loads the configuration, optionally applying a named preset.
func Load(presetName ...string) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	return loadFromPath(configPath, presetName...)
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "latexclip", "config.yaml"), nil
}

// Save writes the configuration to its default location.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write config file", err)
	}

	return nil
}

// GetPreset returns a preset by name.
func (c *Config) GetPreset(name string) (*Preset, error) {
	for i := range c.Presets {
		if c.Presets[i].Name == name {
			return &c.Presets[i], nil
		}
	}
	return nil, fmt.Errorf("preset '%s' not found", name)
}

// ListPresets returns the preset names in declaration order.
func (c *Config) ListPresets() []string {
	names := make([]string, 0, len(c.Presets))
	for _, p := range c.Presets {
		names = append(names, p.Name)
	}
	return names
}

func loadFromPath(configPath string, presetName ...string) (*Config, error) {
	cfg := &Config{}

	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(cfg)
	applyDefaults(cfg)

	target := ""
	if len(presetName) > 0 && presetName[0] != "" {
		target = presetName[0]
	} else if cfg.ActivePreset != "" {
		target = cfg.ActivePreset
	}

	if target != "" {
		preset, err := cfg.GetPreset(target)
		if err != nil {
			return nil, errors.ConfigError(err.Error())
		}
		applyPreset(cfg, preset)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFile reads and parses the config file from the given path.
// A missing file is fine: env vars and defaults still apply.
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to parse config file", err)
	}

	return nil
}

// applyPreset overlays non-zero preset values onto the base render config.
func applyPreset(cfg *Config, preset *Preset) {
	if preset.Render.DPI != 0 {
		cfg.Render.DPI = preset.Render.DPI
	}
	if preset.Render.FontSize != 0 {
		cfg.Render.FontSize = preset.Render.FontSize
	}
	if preset.Render.Foreground != "" {
		cfg.Render.Foreground = preset.Render.Foreground
	}
	if preset.Render.Background != "" {
		cfg.Render.Background = preset.Render.Background
	}
	if preset.Render.TimeoutMs != 0 {
		cfg.Render.TimeoutMs = preset.Render.TimeoutMs
	}
	if preset.Render.Transparent {
		cfg.Render.Transparent = true
	}
	if preset.Render.UseFullLatex {
		cfg.Render.UseFullLatex = true
	}
	if preset.Render.FallbackToBuiltin {
		cfg.Render.FallbackToBuiltin = true
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	if cfg.Render.DPI == 0 {
		cfg.Render.DPI = getEnvInt("LATEXCLIP_DPI", 0)
	}
	if cfg.Render.FontSize == 0 {
		if v := os.Getenv("LATEXCLIP_FONT_SIZE"); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				cfg.Render.FontSize = parsed
			}
		}
	}
	if cfg.Render.TimeoutMs == 0 {
		cfg.Render.TimeoutMs = getEnvInt("LATEXCLIP_TIMEOUT_MS", 0)
	}
	if !cfg.Render.UseFullLatex {
		cfg.Render.UseFullLatex = getEnvBool("LATEXCLIP_USE_FULL_LATEX")
	}
	if !cfg.Render.FallbackToBuiltin {
		cfg.Render.FallbackToBuiltin = getEnvBool("LATEXCLIP_FALLBACK")
	}
	if cfg.Toolchain.LatexPath == "" {
		cfg.Toolchain.LatexPath = os.Getenv("LATEXCLIP_PDFLATEX")
	}
	if cfg.Toolchain.RasterizerPath == "" {
		cfg.Toolchain.RasterizerPath = os.Getenv("LATEXCLIP_PDFTOPPM")
	}

	if preset := os.Getenv("LATEXCLIP_PRESET"); preset != "" {
		cfg.ActivePreset = preset
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Render.DPI == 0 {
		cfg.Render.DPI = DefaultDPI
	}
	if cfg.Render.FontSize == 0 {
		cfg.Render.FontSize = DefaultFontSize
	}
	if cfg.Render.TimeoutMs == 0 {
		cfg.Render.TimeoutMs = DefaultTimeoutMs
	}
	if cfg.Render.Foreground == "" {
		cfg.Render.Foreground = "#000000"
	}
	if cfg.Render.Background == "" {
		cfg.Render.Background = "transparent"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Render.DPI <= 0 {
		return errors.ConfigError("render dpi must be positive")
	}
	if cfg.Render.FontSize <= 0 {
		return errors.ConfigError("render font_size must be positive")
	}
	if cfg.Render.TimeoutMs <= 0 {
		return errors.ConfigError("render timeout_ms must be positive")
	}
	if _, err := ParseColor(cfg.Render.Foreground); err != nil {
		return errors.ConfigError(fmt.Sprintf("invalid foreground color: %v", err))
	}
	if _, err := ParseColor(cfg.Render.Background); err != nil {
		return errors.ConfigError(fmt.Sprintf("invalid background color: %v", err))
	}
	return nil
}

// ParseColor parses "#rgb", "#rrggbb" or the literal "transparent" into an
// NRGBA value. Transparent is alpha zero.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "transparent" || s == "none" {
		return color.NRGBA{}, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("color %q must be #rgb, #rrggbb or 'transparent'", s)
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.NRGBA{}, fmt.Errorf("color %q has invalid length", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q is not valid hex: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
