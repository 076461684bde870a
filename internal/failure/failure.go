// Package failure defines the closed set of failures surfaced to the UI and
// the rules that classify raw transport and runtime errors into it.
//
// Classification happens once, at the boundary where a page or the genre
// catalog is fetched. Everything above that boundary only ever sees a
// [*Failure].
package failure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
)

// Kind enumerates the failure variants.
type Kind int

const (
	UnknownError Kind = iota
	NetworkError
	ServerError
)

func (k Kind) String() string {
	switch k {
	case NetworkError:
		return "network_error"
	case ServerError:
		return "server_error"
	default:
		return "unknown_error"
	}
}

// Failure is the single error type that crosses the loader boundary.
//
// StatusCode and Message are only meaningful for [ServerError]; Cause holds
// the raw error for [NetworkError] and [UnknownError].
type Failure struct {
	Kind       Kind
	StatusCode int
	Message    string
	Cause      error
}

// HTTPStatus is implemented by transport errors that carry a received
// response: a non-success status, or a success status whose body was
// absent or could not be parsed.
type HTTPStatus interface {
	HTTPStatus() (code int, message string)
}

// NewNetwork wraps a connectivity or timeout error.
func NewNetwork(cause error) *Failure {
	return &Failure{Kind: NetworkError, Cause: cause}
}

// NewServer builds a failure for a received but unusable response.
func NewServer(code int, message string) *Failure {
	return &Failure{Kind: ServerError, StatusCode: code, Message: message}
}

// NewUnknown wraps an unexpected runtime error.
func NewUnknown(cause error) *Failure {
	return &Failure{Kind: UnknownError, Cause: cause}
}

func (f *Failure) Error() string {
	switch f.Kind {
	case ServerError:
		if f.Message == "" {
			return fmt.Sprintf("server error: status %d", f.StatusCode)
		}
		return fmt.Sprintf("server error: status %d: %s", f.StatusCode, f.Message)
	case NetworkError:
		return fmt.Sprintf("network error: %v", f.Cause)
	default:
		if f.Cause == nil {
			return "unknown error"
		}
		return fmt.Sprintf("unknown error: %v", f.Cause)
	}
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Is reports kind equality so callers can match with errors.Is against a
// bare &Failure{Kind: ...} template.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Cause == nil && t.StatusCode == 0 && t.Message == "" && t.Kind == f.Kind
}

// Retryable reports whether re-dispatching the same request may succeed.
// Nothing in this module retries automatically; the UI decides.
func (f *Failure) Retryable() bool {
	switch f.Kind {
	case NetworkError:
		return true
	case ServerError:
		return f.StatusCode >= 500 || f.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// UserMessage renders a short message suitable for an error view.
func (f *Failure) UserMessage() string {
	switch f.Kind {
	case NetworkError:
		return "Unable to reach the server. Check your connection and try again."
	case ServerError:
		if f.Message != "" {
			return fmt.Sprintf("The server returned an error (%d): %s", f.StatusCode, f.Message)
		}
		return fmt.Sprintf("The server returned an error (%d).", f.StatusCode)
	default:
		return "Something went wrong."
	}
}

// Classify maps any error to exactly one failure variant. It is pure and
// total: nil yields nil, an existing *Failure is returned unchanged.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	var status HTTPStatus
	if errors.As(err, &status) {
		code, msg := status.HTTPStatus()
		return NewServer(code, msg)
	}

	if isNetwork(err) {
		return NewNetwork(err)
	}

	return NewUnknown(err)
}

func isNetwork(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
