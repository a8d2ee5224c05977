package httpclient

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedResponse is returned when a response envelope can't be split
// into status line, headers and body.
var ErrMalformedResponse = errors.New("malformed http response")

// Reason says which step of a fetch failed.
type Reason uint8

const (
	ResolveFailed Reason = iota + 1
	ConnectFailed
	SendFailed
	ReceiveFailed
	DecodeFailed
)

func (r Reason) String() string {
	switch r {
	case ResolveFailed:
		return "resolve"
	case ConnectFailed:
		return "connect"
	case SendFailed:
		return "send"
	case ReceiveFailed:
		return "receive"
	case DecodeFailed:
		return "decode"
	}
	return "unknown"
}

// NetworkError is a failed fetch. None of them are retried.
type NetworkError struct {
	Reason Reason
	Host   string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s failed", e.Reason, e.Host)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Reason, e.Host, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func networkError(reason Reason, host string, err error) error {
	return errors.WithStack(&NetworkError{Reason: reason, Host: host, Err: err})
}

// IsReason reports whether err is a NetworkError for the given step.
func IsReason(err error, reason Reason) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Reason == reason
}
