package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"latexclip/pkg/errors"
	"latexclip/pkg/logger"
	"latexclip/pkg/mathtex"
)

// rasterDPI is the fixed resolution pdftoppm renders at. The post-processor
// rescales to the requested DPI, so one toolchain run serves any output
// size.
const rasterDPI = 300

// documentTemplate is the standalone wrapper around the user's math. The
// preview class crops the page close to the content; the post-processor
// does the precise trim.
const documentTemplate = `\documentclass[preview,border=2pt]{standalone}
\usepackage{amsmath}
\usepackage{amssymb}
\pagestyle{empty}
\begin{document}
%s
\end{document}
`

// FullRenderer drives pdflatex and pdftoppm as child processes. Output is
// black ink on a white page; the post-processor maps it onto the requested
// colors.
type FullRenderer struct {
	latexPath      string
	rasterizerPath string
}

func NewFullRenderer(latexPath, rasterizerPath string) *FullRenderer {
	return &FullRenderer{
		latexPath:      latexPath,
		rasterizerPath: rasterizerPath,
	}
}

func (r *FullRenderer) Name() string { return StrategyLatex }

func (r *FullRenderer) Traits(Request) SourceTraits {
	return SourceTraits{DPI: rasterDPI, BlackOnWhite: true}
}

func (r *FullRenderer) Render(ctx context.Context, req Request) (image.Image, error) {
	if r.latexPath == "" || r.rasterizerPath == "" {
		return nil, errors.ToolchainUnavailableError()
	}

	dir, err := os.MkdirTemp("", "latexclip-*")
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeFileOperation, "failed to create work directory", err)
	}
	defer os.RemoveAll(dir)

	job := uuid.NewString()
	texPath := filepath.Join(dir, job+".tex")

	doc := fmt.Sprintf(documentTemplate, mathtex.Normalize(req.Source))
	if err := os.WriteFile(texPath, []byte(doc), 0644); err != nil {
		return nil, errors.NewWithError(errors.ExitCodeFileOperation, "failed to write tex file", err)
	}

	start := time.Now()
	if err := r.runLatex(ctx, dir, job, texPath); err != nil {
		return nil, err
	}

	pngPath, err := r.runRasterizer(ctx, dir, job)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(pngPath)
	if err != nil {
		return nil, errors.NewKindWithError(errors.KindCompile, "toolchain produced no usable output", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewKindWithError(errors.KindCompile, "toolchain produced an unreadable image", err)
	}

	logger.Debug().
		Str("job", job).
		Dur("elapsed", time.Since(start)).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Full LaTeX render finished")

	return img, nil
}

func (r *FullRenderer) runLatex(ctx context.Context, dir, job, texPath string) error {
	cmd := exec.CommandContext(ctx, r.latexPath,
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-jobname", job,
		"-output-directory", dir,
		texPath,
	)
	cmd.Dir = dir
	cmd.WaitDelay = 2 * time.Second

	out, err := cmd.CombinedOutput()
	if cerr := ctxError(ctx, "pdflatex"); cerr != nil {
		return cerr
	}
	if err != nil {
		excerpt := compileLogExcerpt(filepath.Join(dir, job+".log"), out)
		logger.Debug().Str("excerpt", excerpt).Msg("pdflatex failed")
		return errors.CompileError(excerpt)
	}

	if _, err := os.Stat(filepath.Join(dir, job+".pdf")); err != nil {
		return errors.CompileError("pdflatex exited cleanly but produced no PDF")
	}
	return nil
}

func (r *FullRenderer) runRasterizer(ctx context.Context, dir, job string) (string, error) {
	outBase := filepath.Join(dir, job)
	cmd := exec.CommandContext(ctx, r.rasterizerPath,
		"-png",
		"-r", strconv.Itoa(rasterDPI),
		"-singlefile",
		filepath.Join(dir, job+".pdf"),
		outBase,
	)
	cmd.Dir = dir
	cmd.WaitDelay = 2 * time.Second

	out, err := cmd.CombinedOutput()
	if cerr := ctxError(ctx, "pdftoppm"); cerr != nil {
		return "", cerr
	}
	if err != nil {
		return "", errors.NewKindWithError(errors.KindCompile, "pdftoppm failed",
			fmt.Errorf("%w: %s", err, firstLine(out)))
	}
	return outBase + ".png", nil
}

// ctxError maps a context failure onto the error taxonomy: an expired
// deadline is a timeout, a superseding cancellation is neither a timeout
// nor a compile failure.
func ctxError(ctx context.Context, op string) error {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return errors.TimeoutError(op)
	case context.Canceled:
		return errors.NewKindWithError(errors.KindInternal, op+" canceled", ctx.Err())
	}
	return nil
}

// compileLogExcerpt pulls the error lines (starting with "!") out of the
// LaTeX log so the user sees what the toolchain rejected, not a wall of
// output.
func compileLogExcerpt(logPath string, fallback []byte) string {
	data, err := os.ReadFile(logPath)
	if err != nil {
		data = fallback
	}

	var picked []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "!") {
			picked = append(picked, strings.TrimSpace(line))
			if len(picked) == 3 {
				break
			}
		}
	}
	if len(picked) == 0 {
		return firstLine(fallback)
	}
	return strings.Join(picked, "; ")
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
