package domain

import "context"

// Submission represents a contact form submission for one project inquiry.
type Submission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Company string `json:"company,omitempty"`
	Goal    string `json:"goal" validate:"required"`
	Date    string `json:"date" validate:"required"`
	Budget  string `json:"budget" validate:"required"`
	Details string `json:"details,omitempty"`
}

// Delivery is returned once the mail server accepted the rendered submission.
type Delivery struct {
	MessageID string `json:"messageId"`
	Response  string `json:"response,omitempty"`
}

// SubmissionUsecase defines the interface for relaying contact form submissions
type SubmissionUsecase interface {
	// Relay validates, renders and sends a submission. Errors are *apperror.AppError.
	Relay(ctx context.Context, s *Submission) (*Delivery, error)
	// Configured reports whether a mail transport is available.
	Configured() bool
}
