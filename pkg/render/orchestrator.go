package render

import (
	"context"
	"sync"
	"time"

	"latexclip/pkg/errors"
	"latexclip/pkg/logger"
	"latexclip/pkg/mathtex"
)

// Orchestrator owns strategy selection, the conversion deadline and the
// explicit full-to-builtin fallback. It also serializes async submissions:
// a new submission supersedes the previous one, whose result is discarded
// even if its render still completes.
type Orchestrator struct {
	fast Strategy
	full Strategy

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

func NewOrchestrator(fast, full Strategy) *Orchestrator {
	return &Orchestrator{fast: fast, full: full}
}

// Render runs one conversion to completion. The request timeout covers the
// whole conversion: a fallback attempt spends whatever budget the full
// toolchain left over.
func (o *Orchestrator) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	strategy := o.fast
	if req.UseFullLatex {
		strategy = o.full
	}

	fellBack := false
	img, err := strategy.Render(ctx, req)
	if err != nil && strategy == o.full && req.FallbackToBuiltin && recoverable(err) {
		logger.Warn().
			Err(err).
			Msg("Full LaTeX render failed, falling back to built-in renderer")
		fellBack = true
		strategy = o.fast
		img, err = strategy.Render(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	final, err := Finish(img, req, strategy.Traits(req))
	if err != nil {
		return nil, err
	}

	result := &Result{
		Image:    final,
		Strategy: strategy.Name(),
		DPI:      req.DPI,
		FellBack: fellBack,
		Elapsed:  time.Since(start),
	}

	logger.Info().
		Str("strategy", result.Strategy).
		Bool("fell_back", result.FellBack).
		Dur("elapsed", result.Elapsed).
		Int("width", final.Bounds().Dx()).
		Int("height", final.Bounds().Dy()).
		Msg("Render finished")

	return result, nil
}

// Submit starts an async conversion. The previous in-flight conversion is
// cancelled, and if it still manages to finish, its result is dropped
// instead of being delivered out of order. Returns the submission
// generation, which the delivered result belongs to.
func (o *Orchestrator) Submit(ctx context.Context, req Request, deliver func(*Result, error)) uint64 {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.generation++
	gen := o.generation
	cctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	go func() {
		res, err := o.Render(cctx, req)

		o.mu.Lock()
		stale := gen != o.generation
		if !stale {
			o.cancel = nil
		}
		o.mu.Unlock()

		cancel()

		if stale {
			logger.Debug().Uint64("generation", gen).Msg("Discarding superseded render result")
			return
		}
		deliver(res, err)
	}()

	return gen
}

// CancelPending cancels the in-flight submission, if any.
func (o *Orchestrator) CancelPending() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.generation++
}

// PlainText converts LaTeX source to its plain-text form. Total and
// instant, so it needs no context or strategy.
func (o *Orchestrator) PlainText(source string) string {
	return mathtex.ToPlainText(source)
}

func recoverable(err error) bool {
	if e, ok := err.(*errors.Error); ok {
		return e.Recoverable()
	}
	return false
}
