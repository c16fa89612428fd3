package v1

import (
	"errors"
	"io"
	"net/http"

	"contact-relay/internal/delivery/http/response"
	"contact-relay/internal/domain"
	"contact-relay/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionUC domain.SubmissionUsecase
}

// NewSubmissionHandler registers the contact form routes (public, no auth required).
// Both paths are served since deployments differ in which one the frontend posts to.
func NewSubmissionHandler(public gin.IRoutes, submissionUC domain.SubmissionUsecase, limiter gin.HandlerFunc) {
	handler := &SubmissionHandler{
		submissionUC: submissionUC,
	}

	public.POST("/", limiter, handler.SubmitContact)
	public.POST("/send-email", limiter, handler.SubmitContact)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validates a project inquiry and relays it by email to the configured recipient.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        submission  body      domain.Submission  true  "Contact Form Data"
// @Success      200         {object}  response.Response
// @Failure      400         {object}  response.Response
// @Failure      429         {object}  response.Response
// @Failure      500         {object}  response.Response
// @Failure      503         {object}  response.Response
// @Failure      504         {object}  response.Response
// @Router       / [post]
// @Router       /send-email [post]
func (h *SubmissionHandler) SubmitContact(c *gin.Context) {
	var req domain.Submission
	// An empty body is an empty submission, reported as missing fields
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.New(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	delivery, err := h.submissionUC.Relay(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Sent(c, http.StatusOK, delivery.MessageID, delivery.Response)
}
