package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"contact-relay/internal/domain"
	"contact-relay/pkg/apperror"
	"contact-relay/pkg/email"
	"contact-relay/pkg/logger"
	"contact-relay/pkg/metrics"
	"contact-relay/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	msgSendFailed         = "Failed to send email"
	msgServiceUnavailable = "Email service temporarily unavailable"
	msgGatewayTimeout     = "Email service timed out"
)

var errNotConfigured = errors.New("email service is not configured")

// RelayConfig is the immutable addressing used for every relayed submission.
type RelayConfig struct {
	FromAddress string
	FromName    string
	ToAddress   string
	Subject     string
	// Host labels the mail metrics
	Host string
	// SendTimeout bounds each relay attempt, zero leaves it to the caller's context
	SendTimeout time.Duration
}

type submissionUsecase struct {
	transport email.Transport
	renderer  *email.Renderer
	validate  *validator.Validate
	cfg       RelayConfig
}

// NewSubmissionUsecase creates the submission relay. A nil transport leaves the relay
// unconfigured: every valid submission is answered with an internal error.
func NewSubmissionUsecase(transport email.Transport, renderer *email.Renderer, validate *validator.Validate, cfg RelayConfig) domain.SubmissionUsecase {
	if renderer == nil {
		renderer = email.NewRenderer(nil)
	}
	if validate == nil {
		validate = validation.New()
	}
	return &submissionUsecase{
		transport: transport,
		renderer:  renderer,
		validate:  validate,
		cfg:       cfg,
	}
}

func (uc *submissionUsecase) Configured() bool {
	return uc.transport != nil
}

// Relay validates the submission, renders it and hands it to the transport once.
func (uc *submissionUsecase) Relay(ctx context.Context, s *domain.Submission) (*domain.Delivery, error) {
	if s == nil {
		s = &domain.Submission{}
	}
	normalize(s)

	if err := uc.validate.StructCtx(ctx, s); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		if missing := validation.MissingFields(err); len(missing) > 0 {
			return nil, apperror.BadRequest(validation.MissingFieldsMessage(missing))
		}
		return nil, apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
	}

	if uc.transport == nil {
		metrics.SubmissionsTotal.WithLabelValues("unconfigured").Inc()
		logger.Log.ErrorContext(ctx, "Submission rejected, email service not configured",
			"request_id", requestID(ctx))
		return nil, apperror.Internal(msgSendFailed, errNotConfigured)
	}

	body, err := uc.renderer.Render(email.SubmissionEmailData{
		Name:    s.Name,
		Email:   s.Email,
		Company: s.Company,
		Goal:    s.Goal,
		Date:    s.Date,
		Budget:  s.Budget,
		Details: s.Details,
	})
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("other").Inc()
		return nil, apperror.Internal(msgSendFailed, err)
	}

	msg := &email.Message{
		FromAddress: uc.cfg.FromAddress,
		FromName:    uc.cfg.FromName,
		To:          uc.cfg.ToAddress,
		ReplyTo:     s.Email,
		Subject:     uc.cfg.Subject,
		HTML:        body,
	}

	sendCtx := ctx
	if uc.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, uc.cfg.SendTimeout)
		defer cancel()
	}

	start := time.Now()
	receipt, err := uc.transport.Send(sendCtx, msg)
	metrics.MailSendDuration.WithLabelValues(uc.cfg.Host).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := email.KindOf(err)
		metrics.MailSendFailure.WithLabelValues(uc.cfg.Host, kind.String()).Inc()
		metrics.SubmissionsTotal.WithLabelValues(kind.String()).Inc()
		logger.Log.ErrorContext(ctx, "Email failed",
			"request_id", requestID(ctx),
			"kind", kind.String(),
			"error", err)
		return nil, mapSendError(kind, err)
	}
	if receipt == nil || receipt.MessageID == "" {
		metrics.SubmissionsTotal.WithLabelValues("other").Inc()
		return nil, apperror.Internal(msgSendFailed, errors.New("transport returned no message id"))
	}

	metrics.MailSendSuccess.WithLabelValues(uc.cfg.Host).Inc()
	metrics.SubmissionsTotal.WithLabelValues("sent").Inc()
	logger.Log.InfoContext(ctx, "Message sent",
		"request_id", requestID(ctx),
		"message_id", receipt.MessageID)

	return &domain.Delivery{
		MessageID: receipt.MessageID,
		Response:  receipt.Response,
	}, nil
}

// mapSendError covers every email.FailureKind.
func mapSendError(kind email.FailureKind, err error) *apperror.AppError {
	switch kind {
	case email.FailureAuth, email.FailureConnection:
		return apperror.ServiceUnavailable(msgServiceUnavailable, err)
	case email.FailureTimeout:
		return apperror.GatewayTimeout(msgGatewayTimeout, err)
	case email.FailureOther:
		return apperror.Internal(msgSendFailed, err)
	}
	return apperror.Internal(msgSendFailed, err)
}

func normalize(s *domain.Submission) {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Company = strings.TrimSpace(s.Company)
	s.Goal = strings.TrimSpace(s.Goal)
	s.Date = strings.TrimSpace(s.Date)
	s.Budget = strings.TrimSpace(s.Budget)
	s.Details = strings.TrimSpace(s.Details)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(domain.KeyRequestID).(string)
	return id
}
