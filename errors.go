package termcore

import "fmt"

// ErrorKind is the rendering core's closed error taxonomy. Every
// failure the core can raise is one of these four kinds; there is no
// open-ended error space, matching the "deliberately narrow" contract
// this core is held to.
type ErrorKind int

const (
	// ErrTerminalCapability means the terminal cannot support the
	// required mode (no alt-screen, no raw input, no TTY). Surfaced
	// at startup only, never mid-session.
	ErrTerminalCapability ErrorKind = iota
	// ErrBackendUnavailable means the backend channel is closed or
	// refused to connect within its timeout. Captured as a status
	// notice; the loop keeps running.
	ErrBackendUnavailable
	// ErrRenderStateInconsistent means a compositor invariant was
	// violated (e.g. a layer's buffer size no longer matches its
	// bounds).
	ErrRenderStateInconsistent
	// ErrSpriteMissing means the animation engine could not find a
	// requested animation at any size.
	ErrSpriteMissing
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTerminalCapability:
		return "TerminalCapabilityError"
	case ErrBackendUnavailable:
		return "BackendUnavailable"
	case ErrRenderStateInconsistent:
		return "RenderStateInconsistent"
	case ErrSpriteMissing:
		return "SpriteMissing"
	default:
		return "UnknownError"
	}
}

// CoreError is the concrete error type carrying one ErrorKind. Callers
// match kinds with errors.Is against the Is* sentinel values below,
// never by comparing messages.
type CoreError struct {
	Kind ErrorKind
	Msg  string
}

func (e *CoreError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is reports whether target is a sentinel for the same ErrorKind,
// making CoreError compatible with errors.Is(err, ErrSpriteMissingSentinel).
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons. Construct a real CoreError with
// NewError for an actual error value; compare against these with
// errors.Is.
var (
	ErrTerminalCapabilitySentinel      = &CoreError{Kind: ErrTerminalCapability}
	ErrBackendUnavailableSentinel      = &CoreError{Kind: ErrBackendUnavailable}
	ErrRenderStateInconsistentSentinel = &CoreError{Kind: ErrRenderStateInconsistent}
	ErrSpriteMissingSentinel           = &CoreError{Kind: ErrSpriteMissing}
)

// NewError constructs a CoreError of the given kind with a message.
func NewError(kind ErrorKind, format string, args ...any) *CoreError {
	return &CoreError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
