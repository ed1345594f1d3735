package render

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	"latexclip/pkg/errors"
	"latexclip/pkg/logger"

	xdraw "golang.org/x/image/draw"
)

// Output clamps, mirroring the limits the clipboard consumers tolerate.
const (
	maxPixels = 10_000_000
	maxSide   = 6000
)

// marginPt is the whitespace border around the trimmed content, in points.
const marginPt = 4.0

// diffThreshold separates antialiased content from the background when the
// canvas is opaque.
const diffThreshold = 8

// SourceTraits describes the bitmap a strategy hands to the post-processor.
type SourceTraits struct {
	// DPI the strategy rendered at. When it differs from the requested DPI
	// the post-processor rescales.
	DPI int

	// BlackOnWhite marks toolchain output: black ink on a white page that
	// still needs mapping onto the requested colors.
	BlackOnWhite bool
}

// Finish runs the full post-processing chain: recolor, trim, rescale,
// clamp, margin. Any internal inconsistency is a post-process error, never
// silently defaulted.
func Finish(src image.Image, req Request, traits SourceTraits) (*image.NRGBA, error) {
	if src == nil {
		return nil, errors.PostProcessError("input", fmt.Errorf("strategy produced no image"))
	}

	img := toNRGBA(src)

	if traits.BlackOnWhite {
		img = recolor(img, req.Foreground, req.Background)
	}

	trimmed, empty := trim(img, req.Background)
	if empty {
		// Nothing visible: a degenerate but valid render.
		return solid(1, 1, req.Background), nil
	}

	scale := 1.0
	if traits.DPI > 0 && traits.DPI != req.DPI {
		scale = float64(req.DPI) / float64(traits.DPI)
	}

	w := int(math.Round(float64(trimmed.Bounds().Dx()) * scale))
	h := int(math.Round(float64(trimmed.Bounds().Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	w, h = clampDims(w, h)
	if w != trimmed.Bounds().Dx() || h != trimmed.Bounds().Dy() {
		trimmed = resize(trimmed, w, h)
	}

	margin := int(math.Round(marginPt * float64(req.DPI) / 72.0))
	if margin < 1 {
		margin = 1
	}

	return addMargin(trimmed, margin, req.Background), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if img, ok := src.(*image.NRGBA); ok {
		return img
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	stddraw.Draw(dst, dst.Bounds(), src, b.Min, stddraw.Src)
	return dst
}

// recolor maps black-on-white toolchain output onto the requested colors.
// Ink coverage is derived from luminance, so antialiased edges keep their
// smoothness on any background, including a fully transparent one.
func recolor(img *image.NRGBA, fg, bg color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			lum := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
			ink := float64(255-lum) / 255.0
			out.SetNRGBA(x, y, blend(fg, bg, ink))
		}
	}
	return out
}

// blend composites fg at the given coverage over bg, in non-premultiplied
// space.
func blend(fg, bg color.NRGBA, coverage float64) color.NRGBA {
	fa := coverage * float64(fg.A) / 255.0
	ba := float64(bg.A) / 255.0 * (1 - fa)
	a := fa + ba
	if a == 0 {
		return color.NRGBA{}
	}
	mix := func(f, b uint8) uint8 {
		v := (float64(f)*fa + float64(b)*ba) / a
		return uint8(math.Round(v))
	}
	return color.NRGBA{
		R: mix(fg.R, bg.R),
		G: mix(fg.G, bg.G),
		B: mix(fg.B, bg.B),
		A: uint8(math.Round(a * 255)),
	}
}

// trim crops to the bounding box of visible content. On a transparent
// canvas content is any pixel with alpha; on an opaque one, any pixel far
// enough from the background color.
func trim(img *image.NRGBA, bg color.NRGBA) (*image.NRGBA, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isContent(img.NRGBAAt(x, y), bg) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return nil, true
	}

	rect := image.Rect(minX, minY, maxX+1, maxY+1)
	out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	stddraw.Draw(out, out.Bounds(), img, rect.Min, stddraw.Src)
	return out, false
}

func isContent(c, bg color.NRGBA) bool {
	if bg.A == 0 {
		return c.A != 0
	}
	diff := absInt(int(c.R)-int(bg.R)) + absInt(int(c.G)-int(bg.G)) + absInt(int(c.B)-int(bg.B)) + absInt(int(c.A)-int(bg.A))
	return diff > diffThreshold
}

// clampDims shrinks target dimensions to the pixel budget, preserving
// aspect ratio.
func clampDims(w, h int) (int, int) {
	scale := 1.0
	if w > maxSide {
		scale = math.Min(scale, float64(maxSide)/float64(w))
	}
	if h > maxSide {
		scale = math.Min(scale, float64(maxSide)/float64(h))
	}
	if float64(w)*float64(h)*scale*scale > maxPixels {
		scale = math.Min(scale, math.Sqrt(float64(maxPixels)/(float64(w)*float64(h))))
	}
	if scale >= 1.0 {
		return w, h
	}
	logger.Debug().Int("width", w).Int("height", h).Float64("scale", scale).Msg("Clamping oversized render")
	w = int(math.Floor(float64(w) * scale))
	h = int(math.Floor(float64(h) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// resize uses Catmull-Rom interpolation. Nearest-neighbor is never
// acceptable for glyph bitmaps.
func resize(img *image.NRGBA, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return out
}

func addMargin(img *image.NRGBA, margin int, bg color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	out := solid(b.Dx()+2*margin, b.Dy()+2*margin, bg)
	stddraw.Draw(out, image.Rect(margin, margin, margin+b.Dx(), margin+b.Dy()), img, b.Min, stddraw.Over)
	return out
}

func solid(w, h int, bg color.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if bg.A != 0 {
		stddraw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, stddraw.Src)
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
