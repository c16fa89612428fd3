package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"contact-relay/config"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	Dial() (gomail.SendCloser, error)
}

// SMTPTransport relays messages through a single configured SMTP server.
type SMTPTransport struct {
	dialer dialer
	host   string
	port   int
	now    func() time.Time
}

// NewSMTPTransport builds a transport from validated SMTP settings.
// Port 465 uses implicit TLS, every other port upgrades with STARTTLS when offered.
func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed relays
		MinVersion:         tls.VersionTLS12,
	}

	return &SMTPTransport{
		dialer: d,
		host:   cfg.Host,
		port:   cfg.Port,
		now:    time.Now,
	}
}

// Address returns host:port of the SMTP server.
func (t *SMTPTransport) Address() string {
	return fmt.Sprintf("%s:%d", t.host, t.port)
}

// Send performs one dial and one delivery. Nothing is retried.
// The SMTP conversation has no deadline of its own, so ctx bounds it: when ctx ends first
// Send returns at once and the connection is closed as soon as the conversation unblocks.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if msg == nil {
		return nil, &SendError{Kind: FailureOther, Op: "send", Err: fmt.Errorf("message is required")}
	}

	messageID := newMessageID(msg.FromAddress)
	m := t.buildMessage(msg, messageID)

	err := t.run(ctx, "send", func(sc gomail.SendCloser) error {
		// Sending through the SendCloser directly keeps the net/smtp error types intact.
		return sc.Send(msg.FromAddress, []string{msg.To}, m)
	})
	if err != nil {
		return nil, err
	}

	return &Receipt{
		MessageID: messageID,
		Response:  fmt.Sprintf("250 Message accepted by %s", t.Address()),
		Accepted:  []string{msg.To},
	}, nil
}

// Verify dials the server and authenticates without sending anything.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	return t.run(ctx, "verify", nil)
}

type result struct {
	op  string
	err error
}

// run dials and hands the open connection to deliver, giving up when ctx is done.
func (t *SMTPTransport) run(ctx context.Context, op string, deliver func(gomail.SendCloser) error) error {
	if err := ctx.Err(); err != nil {
		return &SendError{Kind: Classify(err), Op: op, Err: err}
	}

	// Buffered so an abandoned conversation can still finish and exit.
	done := make(chan result, 1)
	go func() {
		done <- t.converse(op, deliver)
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return &SendError{Kind: Classify(r.err), Op: r.op, Err: r.err}
		}
		return nil
	case <-ctx.Done():
		return &SendError{Kind: Classify(ctx.Err()), Op: op, Err: ctx.Err()}
	}
}

func (t *SMTPTransport) converse(op string, deliver func(gomail.SendCloser) error) result {
	sc, err := t.dialer.Dial()
	if err != nil {
		if op == "send" {
			op = "dial"
		}
		return result{op: op, err: err}
	}
	defer sc.Close()

	if deliver != nil {
		if err := deliver(sc); err != nil {
			return result{op: op, err: err}
		}
	}
	return result{op: op}
}

func (t *SMTPTransport) buildMessage(msg *Message, messageID string) *gomail.Message {
	m := gomail.NewMessage()
	if msg.FromName != "" {
		m.SetAddressHeader("From", msg.FromAddress, msg.FromName)
	} else {
		m.SetHeader("From", msg.FromAddress)
	}
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetDateHeader("Date", t.now())
	m.SetBody("text/html", msg.HTML)
	return m
}

func newMessageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
