// Package render turns LaTeX math source into bitmap images. Two strategies
// exist: a built-in typesetter for a common subset, and a full LaTeX
// toolchain driven through child processes. The orchestrator owns strategy
// selection, timeouts and the explicit fallback from full to built-in.
package render

import (
	"context"
	"image"
	"image/color"
	"time"
)

// Strategy names, recorded on every result so callers can tell which
// renderer actually produced the image.
const (
	StrategyBuiltin = "builtin"
	StrategyLatex   = "latex"
)

// Request carries everything one conversion needs. The pipeline reads no
// global state; the CLI resolves config, flags and environment into this
// struct up front.
type Request struct {
	// Source is the raw LaTeX input, with or without $ delimiters.
	Source string

	// DPI of the output bitmap.
	DPI int

	// FontSize in points.
	FontSize float64

	// Foreground is the glyph color.
	Foreground color.NRGBA

	// Background fills behind the glyphs. Alpha zero means a transparent
	// canvas.
	Background color.NRGBA

	// UseFullLatex selects the external toolchain instead of the built-in
	// typesetter.
	UseFullLatex bool

	// FallbackToBuiltin permits one retry on the built-in renderer when the
	// full toolchain is unavailable or rejects the input. Off by default:
	// the two renderers do not produce identical output, so silently
	// swapping one for the other must be opted into.
	FallbackToBuiltin bool

	// Timeout bounds the whole conversion, fallback attempt included.
	Timeout time.Duration
}

// Transparent reports whether the request wants an alpha-channel canvas.
func (r Request) Transparent() bool {
	return r.Background.A == 0
}

// Strategy renders one request into a bitmap. Implementations must honor
// context cancellation: when ctx expires, any child process is killed and
// the error carries the timeout kind.
type Strategy interface {
	Name() string
	Render(ctx context.Context, req Request) (image.Image, error)

	// Traits tells the post-processor what the raw bitmap looks like.
	Traits(req Request) SourceTraits
}

// Result is a finished conversion.
type Result struct {
	// Image is the post-processed bitmap, trimmed and at the requested DPI.
	Image *image.NRGBA

	// Strategy that actually produced the image.
	Strategy string

	// DPI the image was produced at, for clipboard and file metadata.
	DPI int

	// FellBack is true when the full toolchain failed and the built-in
	// renderer produced this image instead.
	FellBack bool

	// Elapsed is the wall time of the whole conversion.
	Elapsed time.Duration
}
