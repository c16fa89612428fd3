package email

import (
	"context"
	"errors"
	"fmt"
)

// Message is an outbound HTML email handed to a Transport.
type Message struct {
	FromAddress string
	FromName    string
	To          string
	ReplyTo     string
	Subject     string
	HTML        string
}

// Receipt confirms that the SMTP server accepted a message.
type Receipt struct {
	MessageID string
	Response  string
	Accepted  []string
}

// Transport delivers rendered messages. Implementations return a *SendError on failure.
type Transport interface {
	Send(ctx context.Context, msg *Message) (*Receipt, error)
}

// FailureKind is the closed set of reasons a send can fail.
type FailureKind int

const (
	FailureOther FailureKind = iota
	FailureAuth
	FailureConnection
	FailureTimeout
)

func (k FailureKind) String() string {
	switch k {
	case FailureAuth:
		return "auth"
	case FailureConnection:
		return "connection"
	case FailureTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// SendError carries the classified failure of a single send attempt.
type SendError struct {
	Kind FailureKind
	Op   string // dial, send, verify
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("email %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err. Errors that are not a *SendError are FailureOther.
func KindOf(err error) FailureKind {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Kind
	}
	return FailureOther
}
