package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrorKind classifies a transport failure.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindConnectionRefused
	KindTimeout
	KindStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnectionRefused:
		return "connection_refused"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	default:
		return "network"
	}
}

// User-visible messages for failures the backend cannot explain itself.
const (
	MsgConnectionRefused = "Unable to connect to the server. Please check if the backend is running."
	MsgTimeout           = "The server took too long to respond. Please try again."
)

// TransportError is a failed exchange with a backend service. Error returns
// a message suitable for display.
type TransportError struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FormatError is a 2xx response whose body could not be interpreted.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a TransportError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == kind
}

// classify wraps a failure from http.Client.Do.
func classify(op string, err error) *TransportError {
	var ne net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return &TransportError{Kind: KindConnectionRefused, Op: op, Message: MsgConnectionRefused, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return &TransportError{Kind: KindTimeout, Op: op, Message: MsgTimeout, Err: err}
	default:
		return &TransportError{Kind: KindNetwork, Op: op, Message: fmt.Sprintf("Network error: %v", err), Err: err}
	}
}

// statusError builds a TransportError for a non-2xx response, preferring
// the service's own {"error": "..."} message.
func statusError(op string, status int, body []byte) *TransportError {
	var payload struct {
		Error string `json:"error"`
	}
	msg := fmt.Sprintf("Server returned status %d", status)
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &TransportError{
		Kind:       KindStatus,
		Op:         op,
		StatusCode: status,
		Message:    msg,
		Err:        fmt.Errorf("%s returned %d", op, status),
	}
}
