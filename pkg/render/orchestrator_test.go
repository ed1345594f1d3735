package render

import (
	"context"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"latexclip/pkg/errors"
)

// fakeStrategy scripts renderer behavior for orchestrator tests.
type fakeStrategy struct {
	name  string
	err   error
	calls int32

	// blockFirst makes the first call wait for cancellation before failing.
	blockFirst bool
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Traits(req Request) SourceTraits {
	return SourceTraits{DPI: req.DPI}
}

func (f *fakeStrategy) Render(ctx context.Context, req Request) (image.Image, error) {
	call := atomic.AddInt32(&f.calls, 1)
	if f.blockFirst && call == 1 {
		<-ctx.Done()
		return nil, errors.TimeoutError(f.name)
	}
	if f.err != nil {
		return nil, f.err
	}
	img := solid(10, 10, clear)
	img.SetNRGBA(5, 5, black)
	return img, nil
}

func (f *fakeStrategy) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

func testRequest() Request {
	return Request{
		Source:   "x",
		DPI:      72,
		FontSize: 28,
		Timeout:  5 * time.Second,
	}
}

func TestRenderUsesBuiltinByDefault(t *testing.T) {
	fast := &fakeStrategy{name: StrategyBuiltin}
	full := &fakeStrategy{name: StrategyLatex}
	o := NewOrchestrator(fast, full)

	res, err := o.Render(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if res.Strategy != StrategyBuiltin {
		t.Errorf("expected builtin strategy, got %q", res.Strategy)
	}
	if res.FellBack {
		t.Error("default render must not be marked as fallback")
	}
	if full.callCount() != 0 {
		t.Error("full toolchain must not run unless requested")
	}
}

func TestRenderUsesFullWhenRequested(t *testing.T) {
	fast := &fakeStrategy{name: StrategyBuiltin}
	full := &fakeStrategy{name: StrategyLatex}
	o := NewOrchestrator(fast, full)

	req := testRequest()
	req.UseFullLatex = true

	res, err := o.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if res.Strategy != StrategyLatex {
		t.Errorf("expected latex strategy, got %q", res.Strategy)
	}
	if fast.callCount() != 0 {
		t.Error("builtin renderer must not run when full succeeds")
	}
}

func TestRenderFallsBackWhenEnabled(t *testing.T) {
	fast := &fakeStrategy{name: StrategyBuiltin}
	full := &fakeStrategy{name: StrategyLatex, err: errors.CompileError("undefined control sequence")}
	o := NewOrchestrator(fast, full)

	req := testRequest()
	req.UseFullLatex = true
	req.FallbackToBuiltin = true

	res, err := o.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !res.FellBack {
		t.Error("result must record that it fell back")
	}
	if res.Strategy != StrategyBuiltin {
		t.Errorf("fallback result must name the producing strategy, got %q", res.Strategy)
	}
}

func TestRenderNoFallbackWithoutOptIn(t *testing.T) {
	fast := &fakeStrategy{name: StrategyBuiltin}
	full := &fakeStrategy{name: StrategyLatex, err: errors.CompileError("boom")}
	o := NewOrchestrator(fast, full)

	req := testRequest()
	req.UseFullLatex = true

	_, err := o.Render(context.Background(), req)
	if !errors.IsKind(err, errors.KindCompile) {
		t.Fatalf("expected compile error to propagate, got %v", err)
	}
	if fast.callCount() != 0 {
		t.Error("builtin renderer must not run without fallback opt-in")
	}
}

func TestRenderNoFallbackOnTimeout(t *testing.T) {
	fast := &fakeStrategy{name: StrategyBuiltin}
	full := &fakeStrategy{name: StrategyLatex, err: errors.TimeoutError("pdflatex")}
	o := NewOrchestrator(fast, full)

	req := testRequest()
	req.UseFullLatex = true
	req.FallbackToBuiltin = true

	_, err := o.Render(context.Background(), req)
	if !errors.IsKind(err, errors.KindTimeout) {
		t.Fatalf("expected timeout to propagate, got %v", err)
	}
	if fast.callCount() != 0 {
		t.Error("timeout is not recoverable and must not trigger fallback")
	}
}

func TestRenderFallsBackAtMostOnce(t *testing.T) {
	fast := &fakeStrategy{name: StrategyBuiltin, err: errors.SyntaxError("x", "bad")}
	full := &fakeStrategy{name: StrategyLatex, err: errors.CompileError("boom")}
	o := NewOrchestrator(fast, full)

	req := testRequest()
	req.UseFullLatex = true
	req.FallbackToBuiltin = true

	_, err := o.Render(context.Background(), req)
	if !errors.IsKind(err, errors.KindSyntax) {
		t.Fatalf("expected the fallback attempt's error, got %v", err)
	}
	if fast.callCount() != 1 || full.callCount() != 1 {
		t.Errorf("each strategy must run exactly once, got fast=%d full=%d",
			fast.callCount(), full.callCount())
	}
}

func TestSubmitSupersedesInFlightRender(t *testing.T) {
	fast := &fakeStrategy{name: StrategyBuiltin, blockFirst: true}
	full := &fakeStrategy{name: StrategyLatex}
	o := NewOrchestrator(fast, full)

	delivered := make(chan int, 2)

	o.Submit(context.Background(), testRequest(), func(res *Result, err error) {
		delivered <- 1
	})

	// Give the first render a moment to start blocking.
	time.Sleep(20 * time.Millisecond)

	o.Submit(context.Background(), testRequest(), func(res *Result, err error) {
		if err != nil {
			t.Errorf("second render failed: %v", err)
		}
		delivered <- 2
	})

	select {
	case n := <-delivered:
		if n != 2 {
			t.Fatalf("expected second submission delivered, got %d", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second result was never delivered")
	}

	select {
	case n := <-delivered:
		t.Fatalf("superseded submission %d must be discarded", n)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelPendingStopsRender(t *testing.T) {
	fast := &fakeStrategy{name: StrategyBuiltin, blockFirst: true}
	o := NewOrchestrator(fast, &fakeStrategy{name: StrategyLatex})

	delivered := make(chan struct{}, 1)
	o.Submit(context.Background(), testRequest(), func(*Result, error) {
		delivered <- struct{}{}
	})

	time.Sleep(20 * time.Millisecond)
	o.CancelPending()

	select {
	case <-delivered:
		t.Fatal("cancelled render must not deliver")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPlainText(t *testing.T) {
	o := NewOrchestrator(&fakeStrategy{name: StrategyBuiltin}, &fakeStrategy{name: StrategyLatex})
	if got := o.PlainText(`$\frac{1}{2}$`); got != "(1)/(2)" {
		t.Errorf("PlainText = %q", got)
	}
}
