package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
	"time"
)

// DefaultRetryStatuses are the HTTP statuses retried when none are configured.
var DefaultRetryStatuses = []int{429, 500, 502, 503, 504}

// TransientError wraps an error that is safe to retry.
type TransientError struct {
	Err        error
	StatusCode int
	// Wait is a server supplied hint, e.g. from Retry-After.
	Wait time.Duration
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// RetryAfter returns the server hint carried by a TransientError in err's chain.
func RetryAfter(err error) time.Duration {
	var te *TransientError
	if errors.As(err, &te) {
		return te.Wait
	}
	return 0
}

// IsTransient reports whether err is a TransientError or looks like a network
// failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"unexpected eof",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// StatusSet is a set of HTTP status codes.
type StatusSet map[int]struct{}

// NewStatusSet builds a set from codes, falling back to DefaultRetryStatuses.
func NewStatusSet(codes ...int) StatusSet {
	if len(codes) == 0 {
		codes = DefaultRetryStatuses
	}
	s := make(StatusSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether code is in the set.
func (s StatusSet) Has(code int) bool {
	_, ok := s[code]
	return ok
}
