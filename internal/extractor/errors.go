package extractor

import "errors"

// Kind is a structured failure category reported by an Extractor.
type Kind int

const (
	KindUnknown Kind = iota
	KindPrivate
	KindUnavailable
	KindNotFound
	KindUnsupported
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindPrivate:
		return "private"
	case KindUnavailable:
		return "unavailable"
	case KindNotFound:
		return "not_found"
	case KindUnsupported:
		return "unsupported"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

var (
	// ErrPrivate indicates the video is private
	ErrPrivate = errors.New("video is private")

	// ErrUnavailable indicates the video was removed or is otherwise unavailable
	ErrUnavailable = errors.New("video unavailable")

	// ErrNotFound indicates the video does not exist
	ErrNotFound = errors.New("video not found")

	// ErrUnsupported indicates the extractor has no handler for the URL
	ErrUnsupported = errors.New("url not supported")

	// ErrNetwork indicates a network-related error
	ErrNetwork = errors.New("network error")
)

var sentinels = map[Kind]error{
	KindPrivate:     ErrPrivate,
	KindUnavailable: ErrUnavailable,
	KindNotFound:    ErrNotFound,
	KindUnsupported: ErrUnsupported,
	KindNetwork:     ErrNetwork,
}

// Error is returned by an Extractor when a URL cannot be resolved.
// Reason is the free-text detail as the extractor reported it.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if s, ok := sentinels[e.Kind]; ok {
		return s.Error()
	}
	return "extraction failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// Retryable reports whether another attempt could succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}
