package errors

import (
	"fmt"
	"os"
	"strings"

	"latexclip/pkg/logger"

	"github.com/fatih/color"
)

type ExitCode int

const (
	ExitCodeSuccess       ExitCode = 0
	ExitCodeGeneral       ExitCode = 1
	ExitCodeConfig        ExitCode = 2
	ExitCodeSyntax        ExitCode = 3
	ExitCodeToolchain     ExitCode = 4
	ExitCodeCompile       ExitCode = 5
	ExitCodeTimeout       ExitCode = 6
	ExitCodePostProcess   ExitCode = 7
	ExitCodeFileOperation ExitCode = 8
	ExitCodeClipboard     ExitCode = 9
	ExitCodeInternal      ExitCode = 10
)

// Kind classifies a conversion failure. Every error surfaced by the render
// pipeline carries exactly one kind; nothing is logged-and-swallowed.
type Kind string

const (
	// KindNone marks errors outside the render pipeline (config, I/O).
	KindNone Kind = ""
	// KindSyntax: the input is not valid (or not supported) LaTeX.
	KindSyntax Kind = "syntax"
	// KindToolchainUnavailable: a full-LaTeX render was requested but the
	// toolchain binaries were not found.
	KindToolchainUnavailable Kind = "toolchain-unavailable"
	// KindCompile: the toolchain ran and rejected the input, or exited
	// cleanly without producing usable output.
	KindCompile Kind = "compile"
	// KindTimeout: the render exceeded its deadline; any child process has
	// been killed.
	KindTimeout Kind = "timeout"
	// KindPostProcess: trimming/rescaling/recoloring violated an internal
	// invariant. Always a bug, never defaulted away.
	KindPostProcess Kind = "post-process"
	// KindInternal: unexpected failure inside the built-in renderer.
	KindInternal Kind = "internal"
)

// Recoverable reports whether the user can reasonably fix the failure by
// changing input or configuration. Timeout, post-process and internal
// failures are not input problems.
func (k Kind) Recoverable() bool {
	switch k {
	case KindSyntax, KindToolchainUnavailable, KindCompile:
		return true
	default:
		return false
	}
}

func (k Kind) exitCode() ExitCode {
	switch k {
	case KindSyntax:
		return ExitCodeSyntax
	case KindToolchainUnavailable:
		return ExitCodeToolchain
	case KindCompile:
		return ExitCodeCompile
	case KindTimeout:
		return ExitCodeTimeout
	case KindPostProcess:
		return ExitCodePostProcess
	case KindInternal:
		return ExitCodeInternal
	default:
		return ExitCodeGeneral
	}
}

type Error struct {
	Code       ExitCode
	Kind       Kind
	Message    string
	Underlying error
	Suggestion string
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Recoverable mirrors Kind.Recoverable for callers holding the error.
func (e *Error) Recoverable() bool {
	return e.Kind.Recoverable()
}

func New(code ExitCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func NewWithError(code ExitCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

// NewKind builds a render-pipeline error of the given kind.
func NewKind(kind Kind, message string) *Error {
	return &Error{
		Code:    kind.exitCode(),
		Kind:    kind,
		Message: message,
	}
}

func NewKindWithError(kind Kind, message string, err error) *Error {
	return &Error{
		Code:       kind.exitCode(),
		Kind:       kind,
		Message:    message,
		Underlying: err,
	}
}

func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	if wrapped, ok := err.(*Error); ok {
		return &Error{
			Code:       wrapped.Code,
			Kind:       wrapped.Kind,
			Message:    message + ": " + wrapped.Message,
			Underlying: wrapped.Underlying,
			Suggestion: wrapped.Suggestion,
		}
	}

	return &Error{
		Code:       ExitCodeGeneral,
		Message:    message,
		Underlying: err,
	}
}

// IsKind reports whether err is a pipeline error of the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}

func IsExitCode(err error, code ExitCode) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}

func SyntaxError(fragment, reason string) *Error {
	return &Error{
		Code:    ExitCodeSyntax,
		Kind:    KindSyntax,
		Message: fmt.Sprintf("cannot render %q: %s", fragment, reason),
	}
}

func SyntaxErrorWithSuggestion(fragment, reason, suggestion string) *Error {
	return &Error{
		Code:       ExitCodeSyntax,
		Kind:       KindSyntax,
		Message:    fmt.Sprintf("cannot render %q: %s", fragment, reason),
		Suggestion: suggestion,
	}
}

func ToolchainUnavailableError() *Error {
	return &Error{
		Code:       ExitCodeToolchain,
		Kind:       KindToolchainUnavailable,
		Message:    "full LaTeX requested but no toolchain was found",
		Suggestion: "Install TeX Live or MiKTeX (pdflatex + pdftoppm), or drop --full to use the built-in renderer.",
	}
}

func CompileError(logExcerpt string) *Error {
	msg := "LaTeX compilation failed"
	if logExcerpt != "" {
		msg += ": " + logExcerpt
	}
	return &Error{
		Code:    ExitCodeCompile,
		Kind:    KindCompile,
		Message: msg,
	}
}

func TimeoutError(operation string) *Error {
	return &Error{
		Code:       ExitCodeTimeout,
		Kind:       KindTimeout,
		Message:    fmt.Sprintf("render timed out: %s", operation),
		Suggestion: "Try again with a longer timeout using --timeout.",
	}
}

func PostProcessError(step string, err error) *Error {
	return &Error{
		Code:       ExitCodePostProcess,
		Kind:       KindPostProcess,
		Message:    fmt.Sprintf("image post-processing failed during %s", step),
		Underlying: err,
	}
}

func InternalError(err error) *Error {
	return &Error{
		Code:       ExitCodeInternal,
		Kind:       KindInternal,
		Message:    "built-in renderer failed unexpectedly",
		Underlying: err,
	}
}

func ConfigError(message string) *Error {
	return &Error{
		Code:       ExitCodeConfig,
		Message:    message,
		Suggestion: "Check your configuration file or set the required environment variables.",
	}
}

func ValidationError(message string) *Error {
	return &Error{
		Code:    ExitCodeGeneral,
		Message: message,
	}
}

// HandleReturn logs and prints an error and returns the exit code the
// process should use. The caller owns os.Exit.
func HandleReturn(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	var exitCode ExitCode = ExitCodeGeneral
	var message string
	var suggestion string

	if e, ok := err.(*Error); ok {
		exitCode = e.Code
		message = e.Message
		suggestion = e.Suggestion

		if e.Underlying != nil {
			logger.Error().Err(e.Underlying).Str("kind", string(e.Kind)).Msg(e.Message)
		} else {
			logger.Error().Str("kind", string(e.Kind)).Msg(e.Message)
		}
	} else {
		message = err.Error()
		logger.Error().Msg(message)
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(os.Stderr)
	red.Fprint(os.Stderr, "Error: ")
	fmt.Fprintln(os.Stderr, message)

	if suggestion != "" {
		yellow.Fprint(os.Stderr, "Suggestion: ")
		lines := strings.Split(suggestion, "\n")
		for i, line := range lines {
			if i == 0 {
				fmt.Fprintln(os.Stderr, line)
			} else {
				fmt.Fprintln(os.Stderr, "            "+line)
			}
		}
	}

	fmt.Fprintln(os.Stderr)

	return exitCode
}
