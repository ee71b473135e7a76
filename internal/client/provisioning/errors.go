package provisioning

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a failed provisioning call.
type Kind string

const (
	// KindTransport covers unreachable hosts, unreadable or malformed responses
	// and rejected credentials.
	KindTransport Kind = "transport"
	KindTimeout   Kind = "timeout"
	// KindRejected means the backend answered and refused the request.
	KindRejected Kind = "rejected"
)

const (
	MessageTransport    = "unable to connect to the provisioning service"
	MessageTimeout      = "the provisioning service did not respond in time"
	MessageUnauthorized = "the provisioning service rejected your credentials, run botdash login and try again"
)

// Error is returned by every Client operation.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, or "" when err is not a provisioning error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func newTransportError(op string, err error) *Error {
	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Op: op, Message: MessageTimeout, Err: err}
	}
	return &Error{Kind: KindTransport, Op: op, Message: MessageTransport, Err: err}
}

func newStatusError(op string, status int, backendMessage string) *Error {
	switch {
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindTransport, Op: op, Status: status, Message: MessageUnauthorized}
	case backendMessage != "":
		return &Error{Kind: KindRejected, Op: op, Status: status, Message: backendMessage}
	case status >= http.StatusInternalServerError:
		return &Error{
			Kind:    KindTransport,
			Op:      op,
			Status:  status,
			Message: MessageTransport,
			Err:     fmt.Errorf("unexpected status %d", status),
		}
	default:
		return &Error{
			Kind:    KindRejected,
			Op:      op,
			Status:  status,
			Message: fmt.Sprintf("%s was rejected by the provisioning service (status %d)", op, status),
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
