package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// StatusError is returned when a site answers with a server-side failure
// (HTTP 5xx). Such responses are not analysed.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.StatusCode, e.URL)
}

// NewStatusError wraps a 5xx response as an error.
func NewStatusError(url string, statusCode int) *StatusError {
	return &StatusError{URL: url, StatusCode: statusCode}
}

// IsServerStatus reports whether the status code means the page cannot be analysed.
func IsServerStatus(statusCode int) bool {
	return statusCode >= 500
}

// IsUnreachable returns true when the error (or any error in its chain) means
// the host could not be resolved or refused the connection. Timeouts, TLS
// failures and HTTP errors are not unreachable.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// String-based heuristics for errors flattened by wrapping.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"no such host",
		"connection refused",
		"server misbehaving",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTimeout returns true if the error is a network or deadline timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "deadline exceeded")
}

// statusCoder is implemented by API client errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// IsTransient reports whether a directory API call is worth repeating:
// timeouts, rate limiting (429) and server errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatus()
		return code == http.StatusTooManyRequests || IsServerStatus(code)
	}
	var se *StatusError
	if errors.As(err, &se) {
		return true
	}
	return IsTimeout(err)
}
