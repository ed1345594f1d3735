package render

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"unicode"

	"github.com/go-fonts/latin-modern/lmmath"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"latexclip/pkg/errors"
	"latexclip/pkg/filter"
	"latexclip/pkg/logger"
	"latexclip/pkg/mathtex"
)

const ptToMm = 25.4 / 72.0

// Script arguments shrink per nesting level, but never below a readable
// floor.
const (
	scriptScale = 0.7
	minScriptPt = 5.0
)

// FastRenderer is the built-in typesetter: no child processes, no
// installation requirements, deterministic output for a common math subset.
type FastRenderer struct {
	once       sync.Once
	textFamily *canvas.FontFamily
	mathFamily *canvas.FontFamily
	loadErr    error
}

func NewFastRenderer() *FastRenderer {
	return &FastRenderer{}
}

func (r *FastRenderer) Name() string { return StrategyBuiltin }

// Traits: the built-in renderer rasterizes directly at the requested DPI in
// the requested colors, so post-processing only trims and clamps.
func (r *FastRenderer) Traits(req Request) SourceTraits {
	return SourceTraits{DPI: req.DPI}
}

// Render typesets the request onto a canvas and rasterizes it at the
// requested DPI. Layout bugs must never crash a caller holding the
// clipboard, so panics surface as internal errors.
func (r *FastRenderer) Render(ctx context.Context, req Request) (img image.Image, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("Built-in renderer panicked")
			err = errors.InternalError(fmt.Errorf("panic: %v", rec))
		}
	}()

	if cerr := ctx.Err(); cerr != nil {
		return nil, errors.TimeoutError("built-in render")
	}

	expr, perr := mathtex.Parse(req.Source)
	if perr != nil {
		var parseErr *mathtex.ParseError
		if stderrors.As(perr, &parseErr) {
			return nil, errors.SyntaxError(parseErr.Fragment, parseErr.Message)
		}
		return nil, errors.SyntaxError(req.Source, perr.Error())
	}

	r.once.Do(r.loadFonts)
	if r.loadErr != nil {
		return nil, errors.InternalError(r.loadErr)
	}

	st := typeStyle{sizePt: req.FontSize, color: req.Foreground}
	root, lerr := r.layoutExpr(expr, st)
	if lerr != nil {
		return nil, lerr
	}

	if root.width <= 0 || root.ascent+root.descent <= 0 {
		// Empty or whitespace-only input is a valid degenerate render.
		return solid(1, 1, req.Background), nil
	}

	const padMm = 1.0
	w := root.width + 2*padMm
	h := root.ascent + root.descent + 2*padMm

	c := canvas.New(w, h)
	gc := canvas.NewContext(c)
	gc.SetCoordSystem(canvas.CartesianIV)

	if req.Background.A != 0 {
		gc.SetFillColor(req.Background)
		gc.SetStrokeColor(color.RGBA{})
		gc.DrawPath(0, 0, canvas.Rectangle(w, h))
	}

	root.render(gc, padMm, padMm+root.ascent)

	if cerr := ctx.Err(); cerr != nil {
		return nil, errors.TimeoutError("built-in render")
	}

	return rasterizer.Draw(c, canvas.DPMM(float64(req.DPI)/25.4), canvas.DefaultColorSpace), nil
}

func (r *FastRenderer) loadFonts() {
	text := canvas.NewFontFamily("latin-modern-roman")
	if err := text.LoadFont(lmroman10regular.TTF, 0, canvas.FontRegular); err != nil {
		r.loadErr = fmt.Errorf("load roman font: %w", err)
		return
	}
	if err := text.LoadFont(lmroman10italic.TTF, 0, canvas.FontItalic); err != nil {
		r.loadErr = fmt.Errorf("load italic font: %w", err)
		return
	}

	math := canvas.NewFontFamily("latin-modern-math")
	if err := math.LoadFont(lmmath.TTF, 0, canvas.FontRegular); err != nil {
		r.loadErr = fmt.Errorf("load math font: %w", err)
		return
	}

	r.textFamily = text
	r.mathFamily = math
}

// typeStyle carries the inherited typesetting state down the tree.
type typeStyle struct {
	sizePt  float64
	color   color.NRGBA
	level   int
	upright bool
}

func (st typeStyle) scriptStyle() typeStyle {
	st.level++
	st.sizePt *= scriptScale
	if st.sizePt < minScriptPt {
		st.sizePt = minScriptPt
	}
	return st
}

func (st typeStyle) emMm() float64 { return st.sizePt * ptToMm }

// box is a laid-out unit: extents around a baseline plus a draw closure.
// All lengths are millimeters; y grows downward.
type box struct {
	width   float64
	ascent  float64
	descent float64
	render  func(gc *canvas.Context, x, baseline float64)
}

func (r *FastRenderer) textFace(st typeStyle, italic bool) *canvas.FontFace {
	style := canvas.FontRegular
	if italic {
		style = canvas.FontItalic
	}
	return r.textFamily.Face(st.sizePt, st.color, style, canvas.FontNormal)
}

func (r *FastRenderer) mathFace(st typeStyle) *canvas.FontFace {
	return r.mathFamily.Face(st.sizePt, st.color, canvas.FontRegular, canvas.FontNormal)
}

func (r *FastRenderer) layoutExpr(expr *mathtex.Expression, st typeStyle) (*box, error) {
	boxes := make([]*box, 0, len(expr.Items))
	for _, item := range expr.Items {
		b, err := r.layoutItem(item, st)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, b)
	}
	return hcat(boxes), nil
}

func (r *FastRenderer) layoutItem(item *mathtex.Item, st typeStyle) (*box, error) {
	base, err := r.layoutAtom(item.Atom, st)
	if err != nil {
		return nil, err
	}
	if len(item.Scripts) == 0 {
		return base, nil
	}

	em := st.emMm()
	supShift := 0.40 * em
	subShift := 0.18 * em

	scriptBoxes := make([]*box, 0, len(item.Scripts))
	shifts := make([]float64, 0, len(item.Scripts))
	for _, sc := range item.Scripts {
		child, err := r.layoutAtom(sc.Arg, st.scriptStyle())
		if err != nil {
			return nil, err
		}
		scriptBoxes = append(scriptBoxes, child)
		if sc.Sup() {
			shifts = append(shifts, -supShift)
		} else {
			shifts = append(shifts, subShift)
		}
	}

	out := &box{width: base.width, ascent: base.ascent, descent: base.descent}
	for i, sb := range scriptBoxes {
		shift := shifts[i]
		if a := sb.ascent - shift; a > out.ascent {
			out.ascent = a
		}
		if d := sb.descent + shift; d > out.descent {
			out.descent = d
		}
		out.width += sb.width
	}
	out.render = func(gc *canvas.Context, x, baseline float64) {
		base.render(gc, x, baseline)
		cursor := x + base.width
		for i, sb := range scriptBoxes {
			sb.render(gc, cursor, baseline+shifts[i])
			cursor += sb.width
		}
	}
	return out, nil
}

func (r *FastRenderer) layoutAtom(a *mathtex.Atom, st typeStyle) (*box, error) {
	switch {
	case a == nil:
		return emptyBox(), nil
	case a.Frac != nil:
		return r.layoutFrac(a.Frac, st)
	case a.Sqrt != nil:
		return r.layoutSqrt(a.Sqrt, st)
	case a.Text != nil:
		up := st
		up.upright = true
		return r.layoutExpr(a.Text.Content, up)
	case a.Group != nil:
		return r.layoutExpr(a.Group, st)
	case a.Command != nil:
		return r.layoutCommand(strings.TrimPrefix(*a.Command, `\`), st)
	case a.Escaped != nil:
		return r.layoutEscaped(strings.TrimPrefix(*a.Escaped, `\`), st), nil
	case a.Run != nil:
		return r.layoutRun(*a.Run, st), nil
	default:
		return nil, errors.InternalError(fmt.Errorf("atom with no content"))
	}
}

// layoutRun splits a run into italic letter segments and upright
// digit/operator segments, the way TeX sets math text.
func (r *FastRenderer) layoutRun(text string, st typeStyle) *box {
	if st.upright {
		return r.textBox(text, r.textFace(st, false))
	}

	var boxes []*box
	var seg strings.Builder
	segItalic := false
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		boxes = append(boxes, r.textBox(seg.String(), r.textFace(st, segItalic)))
		seg.Reset()
	}
	for _, ch := range text {
		italic := unicode.IsLetter(ch)
		if seg.Len() > 0 && italic != segItalic {
			flush()
		}
		segItalic = italic
		seg.WriteRune(ch)
	}
	flush()
	return hcat(boxes)
}

func (r *FastRenderer) layoutCommand(name string, st typeStyle) (*box, error) {
	glyph, ok := mathtex.Symbol(name)
	if !ok {
		cmd := `\` + name
		if hint := filter.Suggest(name, mathtex.SymbolNames()); hint != "" {
			return nil, errors.SyntaxErrorWithSuggestion(cmd, "unknown command",
				fmt.Sprintf("Did you mean \\%s?", hint))
		}
		return nil, errors.SyntaxError(cmd, "unknown command")
	}

	if glyph == "" {
		return emptyBox(), nil
	}
	if isASCIIWord(glyph) {
		// Named function like sin or log: upright text.
		return r.textBox(glyph, r.textFace(st, false)), nil
	}
	if strings.TrimSpace(glyph) == "" {
		return spacerBox(float64(len(glyph)) * 0.35 * st.emMm()), nil
	}
	return r.textBox(glyph, r.mathFace(st)), nil
}

func (r *FastRenderer) layoutEscaped(ch string, st typeStyle) *box {
	switch ch {
	case ",":
		return spacerBox(0.17 * st.emMm())
	case ";":
		return spacerBox(0.28 * st.emMm())
	case "!", "":
		return emptyBox()
	case " ":
		return spacerBox(0.35 * st.emMm())
	case `\`:
		return spacerBox(0.35 * st.emMm())
	default:
		return r.textBox(ch, r.textFace(st, false))
	}
}

func (r *FastRenderer) layoutFrac(f *mathtex.Frac, st typeStyle) (*box, error) {
	num, err := r.layoutAtom(f.Num, st)
	if err != nil {
		return nil, err
	}
	den, err := r.layoutAtom(f.Den, st)
	if err != nil {
		return nil, err
	}

	em := st.emMm()
	barT := 0.045 * em
	axis := 0.26 * em
	gap := 0.12 * em
	pad := 0.15 * em

	width := num.width
	if den.width > width {
		width = den.width
	}
	width += 2 * pad

	ascent := axis + barT/2 + gap + num.ascent + num.descent
	descent := barT/2 + gap + den.ascent + den.descent - axis
	if descent < 0 {
		descent = 0
	}

	fg := st.color
	return &box{
		width:   width,
		ascent:  ascent,
		descent: descent,
		render: func(gc *canvas.Context, x, baseline float64) {
			barY := baseline - axis
			gc.SetFillColor(fg)
			gc.SetStrokeColor(color.RGBA{})
			gc.DrawPath(x, barY-barT/2, canvas.Rectangle(width, barT))

			numBaseline := barY - barT/2 - gap - num.descent
			num.render(gc, x+(width-num.width)/2, numBaseline)

			denBaseline := barY + barT/2 + gap + den.ascent
			den.render(gc, x+(width-den.width)/2, denBaseline)
		},
	}, nil
}

func (r *FastRenderer) layoutSqrt(s *mathtex.Sqrt, st typeStyle) (*box, error) {
	arg, err := r.layoutAtom(s.Arg, st)
	if err != nil {
		return nil, err
	}

	em := st.emMm()
	barT := 0.045 * em
	gap := 0.08 * em

	radical := r.textBox("√", r.mathFace(st))

	contentTop := arg.ascent + gap + barT
	ascent := radical.ascent
	if contentTop > ascent {
		ascent = contentTop
	}
	descent := radical.descent
	if arg.descent > descent {
		descent = arg.descent
	}

	fg := st.color
	width := radical.width + arg.width + 0.1*em
	return &box{
		width:   width,
		ascent:  ascent,
		descent: descent,
		render: func(gc *canvas.Context, x, baseline float64) {
			radical.render(gc, x, baseline)
			argX := x + radical.width
			arg.render(gc, argX, baseline)

			gc.SetFillColor(fg)
			gc.SetStrokeColor(color.RGBA{})
			gc.DrawPath(argX, baseline-contentTop, canvas.Rectangle(arg.width+0.1*em, barT))
		},
	}, nil
}

// textBox measures a string with a face and wraps it into a box.
func (r *FastRenderer) textBox(text string, face *canvas.FontFace) *box {
	metrics := face.Metrics()
	return &box{
		width:   face.TextWidth(text),
		ascent:  metrics.Ascent,
		descent: metrics.Descent,
		render: func(gc *canvas.Context, x, baseline float64) {
			gc.DrawText(x, baseline, canvas.NewTextLine(face, text, canvas.Left))
		},
	}
}

func hcat(boxes []*box) *box {
	out := emptyBox()
	for _, b := range boxes {
		if b.ascent > out.ascent {
			out.ascent = b.ascent
		}
		if b.descent > out.descent {
			out.descent = b.descent
		}
		out.width += b.width
	}
	parts := boxes
	out.render = func(gc *canvas.Context, x, baseline float64) {
		cursor := x
		for _, b := range parts {
			b.render(gc, cursor, baseline)
			cursor += b.width
		}
	}
	return out
}

func emptyBox() *box {
	return &box{render: func(*canvas.Context, float64, float64) {}}
}

func spacerBox(w float64) *box {
	return &box{width: w, render: func(*canvas.Context, float64, float64) {}}
}

func isASCIIWord(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
