package email

import (
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"syscall"
)

// SMTP reply codes that indicate the server rejected our credentials.
var authReplyCodes = map[int]bool{
	432: true, // password transition needed
	454: true, // temporary authentication failure
	530: true, // authentication required
	534: true, // mechanism too weak
	535: true, // credentials invalid
	538: true, // encryption required for mechanism
}

// Classify maps a low level SMTP/network error onto a FailureKind.
// Timeouts are checked first since a timed out dial is also a *net.OpError.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		if authReplyCodes[tpErr.Code] {
			return FailureAuth
		}
		return FailureOther
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return FailureConnection
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureConnection
	}

	return FailureOther
}
