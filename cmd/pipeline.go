package cmd

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"
	"time"

	"latexclip/pkg/cache"
	"latexclip/pkg/config"
	"latexclip/pkg/errors"
	"latexclip/pkg/logger"
	"latexclip/pkg/progress"
	"latexclip/pkg/render"

	"github.com/spf13/cobra"
)

// Elapsed times are rounded before display; sub-millisecond noise is not
// useful to the user.
const roundTo = time.Millisecond

// Flags shared by every rendering command.
var (
	dpiFlag         int
	fontSizeFlag    float64
	fgFlag          string
	bgFlag          string
	transparentFlag bool
	fullFlag        bool
	fallbackFlag    bool
	timeoutFlag     time.Duration
)

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&dpiFlag, "dpi", 0, "Output resolution in dots per inch")
	cmd.Flags().Float64Var(&fontSizeFlag, "font-size", 0, "Font size in points")
	cmd.Flags().StringVar(&fgFlag, "fg", "", "Foreground color (#rgb or #rrggbb)")
	cmd.Flags().StringVar(&bgFlag, "bg", "", "Background color (#rrggbb or 'transparent')")
	cmd.Flags().BoolVar(&transparentFlag, "transparent", false, "Force a transparent background")
	cmd.Flags().BoolVar(&fullFlag, "full", false, "Render with the full LaTeX toolchain")
	cmd.Flags().BoolVar(&fallbackFlag, "fallback", false, "Fall back to the built-in renderer if the toolchain fails")
	cmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Render timeout (e.g. 10s)")
}

// readSource joins the positional arguments, or reads stdin when no source
// was given (or when it is "-").
func readSource(args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewWithError(errors.ExitCodeFileOperation, "failed to read stdin", err)
	}
	return string(data), nil
}

// resolveRequest folds config, environment and command-line flags into one
// explicit request. Flags win over config; the pipeline itself never reads
// either.
func resolveRequest(cmd *cobra.Command, cfg *config.Config, source string) (render.Request, error) {
	rc := cfg.Render

	if cmd.Flags().Changed("dpi") {
		rc.DPI = dpiFlag
	}
	if cmd.Flags().Changed("font-size") {
		rc.FontSize = fontSizeFlag
	}
	if cmd.Flags().Changed("fg") {
		rc.Foreground = fgFlag
	}
	if cmd.Flags().Changed("bg") {
		rc.Background = bgFlag
	}
	if cmd.Flags().Changed("transparent") && transparentFlag {
		rc.Transparent = true
	}
	if cmd.Flags().Changed("full") {
		rc.UseFullLatex = fullFlag
	}
	if cmd.Flags().Changed("fallback") {
		rc.FallbackToBuiltin = fallbackFlag
	}

	timeout := time.Duration(rc.TimeoutMs) * time.Millisecond
	if cmd.Flags().Changed("timeout") {
		timeout = timeoutFlag
	}
	if timeout <= 0 {
		return render.Request{}, errors.ValidationError("timeout must be positive")
	}
	if rc.DPI <= 0 {
		return render.Request{}, errors.ValidationError("dpi must be positive")
	}
	if rc.FontSize <= 0 {
		return render.Request{}, errors.ValidationError("font size must be positive")
	}

	fg, err := config.ParseColor(rc.Foreground)
	if err != nil {
		return render.Request{}, errors.ValidationError(err.Error())
	}
	if fg.A == 0 {
		return render.Request{}, errors.ValidationError("foreground color cannot be transparent")
	}
	bg, err := config.ParseColor(rc.Background)
	if err != nil {
		return render.Request{}, errors.ValidationError(err.Error())
	}
	if rc.Transparent {
		bg = color.NRGBA{}
	}

	return render.Request{
		Source:            source,
		DPI:               rc.DPI,
		FontSize:          rc.FontSize,
		Foreground:        fg,
		Background:        bg,
		UseFullLatex:      rc.UseFullLatex,
		FallbackToBuiltin: rc.FallbackToBuiltin,
		Timeout:           timeout,
	}, nil
}

// newOrchestrator wires the two strategies. The toolchain is only probed
// when the request can actually use it.
func newOrchestrator(cfg *config.Config, req render.Request) *render.Orchestrator {
	fast := render.NewFastRenderer()

	var full render.Strategy = render.NewFullRenderer("", "")
	if req.UseFullLatex {
		cap, err := probeToolchain(cfg, false)
		if err == nil && cap.Available {
			full = render.NewFullRenderer(cap.LatexPath, cap.RasterizerPath)
		}
	}

	return render.NewOrchestrator(fast, full)
}

func probeToolchain(cfg *config.Config, refresh bool) (*render.Capability, error) {
	var store render.ProbeStore
	if s, err := cache.Open(); err == nil {
		store = s
	} else {
		logger.Warn().Err(err).Msg("Probe cache unavailable, probing live")
	}

	prober := render.NewProber(store, cfg.Toolchain.LatexPath, cfg.Toolchain.RasterizerPath)
	return prober.Probe(refresh)
}

// runRender is the shared body of the render and copy commands.
func runRender(cmd *cobra.Command, args []string) (*render.Result, error) {
	cfg, err := config.Load(presetFlag)
	if err != nil {
		return nil, err
	}

	source, err := readSource(args)
	if err != nil {
		return nil, err
	}

	req, err := resolveRequest(cmd, cfg, source)
	if err != nil {
		return nil, err
	}

	orch := newOrchestrator(cfg, req)

	var result *render.Result
	err = progress.WithSpinner("Rendering...", func() error {
		var rerr error
		result, rerr = orch.Render(context.Background(), req)
		return rerr
	})
	if err != nil {
		return nil, err
	}

	if result.FellBack {
		fmt.Fprintln(os.Stderr, "Note: full LaTeX failed, image was produced by the built-in renderer.")
	}
	return result, nil
}
