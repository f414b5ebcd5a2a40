package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a failed call so callers can pick a UI reaction without
// inspecting status codes.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuthExpired is a 401 that the refresh protocol may still recover.
	KindAuthExpired
	// KindAuthInvalid means the refresh protocol failed or a retried call was
	// rejected again, and the session has been cleared. Rejected sign-in
	// credentials report it too.
	KindAuthInvalid
	KindBadRequest
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindServerError
	KindNetworkUnreachable
	KindTimeout
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindAuthExpired:        "auth_expired",
	KindAuthInvalid:        "auth_invalid",
	KindBadRequest:         "bad_request",
	KindForbidden:          "forbidden",
	KindNotFound:           "not_found",
	KindConflict:           "conflict",
	KindRateLimited:        "rate_limited",
	KindServerError:        "server_error",
	KindNetworkUnreachable: "network_unreachable",
	KindTimeout:            "timeout",
	KindCanceled:           "canceled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors for use with errors.Is().
var (
	ErrAuthExpired        = errors.New("authorization expired")
	ErrAuthInvalid        = errors.New("authorization invalid")
	ErrBadRequest         = errors.New("bad request")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrRateLimited        = errors.New("rate limited")
	ErrServerError        = errors.New("server error")
	ErrNetworkUnreachable = errors.New("network unreachable")
	ErrTimeout            = errors.New("timeout")
	ErrCanceled           = errors.New("canceled")

	// ErrNoSession is returned by operations that need a signed-in user.
	ErrNoSession = errors.New("no active session")

	// ErrSessionChanged is returned by Session.Refresh when a login or
	// logout replaced the session while the exchange was in flight. The
	// current session is left untouched.
	ErrSessionChanged = errors.New("session changed during refresh")
)

var kindSentinels = map[Kind]error{
	KindAuthExpired:        ErrAuthExpired,
	KindAuthInvalid:        ErrAuthInvalid,
	KindBadRequest:         ErrBadRequest,
	KindForbidden:          ErrForbidden,
	KindNotFound:           ErrNotFound,
	KindConflict:           ErrConflict,
	KindRateLimited:        ErrRateLimited,
	KindServerError:        ErrServerError,
	KindNetworkUnreachable: ErrNetworkUnreachable,
	KindTimeout:            ErrTimeout,
	KindCanceled:           ErrCanceled,
}

// Error is returned by every failed call made through the Client.
type Error struct {
	Kind Kind
	// Status is the HTTP status code, zero when no response was received.
	Status int
	// Message is the server-provided message, suitable for a toast or banner.
	Message string
	Method  string
	Path    string
	// Err is the underlying transport error, if any.
	Err error
}

// Error returns a human-readable description of the failure.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (%d): %s", e.Method, e.Path, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Kind, msg)
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// KindOf returns the Kind of err, or KindUnknown when err did not come from
// the Client.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// kindForStatus maps an HTTP status to a Kind. 401 maps to AuthExpired; the
// retry path upgrades it to AuthInvalid when recovery is impossible.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthExpired
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindBadRequest
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServerError
	default:
		return KindUnknown
	}
}

// kindForTransport classifies an error returned by http.Client.Do.
func kindForTransport(ctx context.Context, err error) Kind {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetworkUnreachable
}
