package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewKindMapsExitCodes(t *testing.T) {
	cases := []struct {
		kind Kind
		code ExitCode
	}{
		{KindSyntax, ExitCodeSyntax},
		{KindToolchainUnavailable, ExitCodeToolchain},
		{KindCompile, ExitCodeCompile},
		{KindTimeout, ExitCodeTimeout},
		{KindPostProcess, ExitCodePostProcess},
		{KindInternal, ExitCodeInternal},
	}
	for _, tc := range cases {
		err := NewKind(tc.kind, "boom")
		if err.Code != tc.code {
			t.Errorf("kind %q: expected exit code %d, got %d", tc.kind, tc.code, err.Code)
		}
	}
}

func TestRecoverableKinds(t *testing.T) {
	recoverable := []Kind{KindSyntax, KindToolchainUnavailable, KindCompile}
	for _, k := range recoverable {
		if !k.Recoverable() {
			t.Errorf("kind %q should be recoverable", k)
		}
	}
	fatal := []Kind{KindTimeout, KindPostProcess, KindInternal}
	for _, k := range fatal {
		if k.Recoverable() {
			t.Errorf("kind %q should not be recoverable", k)
		}
	}
}

func TestErrorMessageIncludesUnderlying(t *testing.T) {
	underlying := stderrors.New("exit status 1")
	err := NewKindWithError(KindCompile, "LaTeX compilation failed", underlying)

	if !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("expected underlying error in message, got %q", err.Error())
	}
	if !stderrors.Is(err, underlying) {
		t.Error("expected errors.Is to reach the underlying error")
	}
}

func TestWrapPreservesKindAndCode(t *testing.T) {
	inner := SyntaxError("\\foo", "unknown command")
	wrapped := Wrap(inner, "render failed")

	if wrapped.Kind != KindSyntax {
		t.Errorf("expected kind to survive wrapping, got %q", wrapped.Kind)
	}
	if wrapped.Code != ExitCodeSyntax {
		t.Errorf("expected exit code to survive wrapping, got %d", wrapped.Code)
	}
	if !strings.Contains(wrapped.Message, "render failed") {
		t.Errorf("expected outer message, got %q", wrapped.Message)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "anything") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestIsKind(t *testing.T) {
	err := TimeoutError("pdflatex")
	if !IsKind(err, KindTimeout) {
		t.Error("expected IsKind to match KindTimeout")
	}
	if IsKind(err, KindCompile) {
		t.Error("IsKind matched the wrong kind")
	}
	if IsKind(nil, KindTimeout) {
		t.Error("IsKind should be false for nil")
	}
	if IsKind(stderrors.New("plain"), KindTimeout) {
		t.Error("IsKind should be false for foreign errors")
	}
}

func TestSyntaxErrorNamesFragment(t *testing.T) {
	err := SyntaxError("\\alfa", "unknown command")
	if !strings.Contains(err.Message, "\\alfa") {
		t.Errorf("expected offending fragment in message, got %q", err.Message)
	}
}
