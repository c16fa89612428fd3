package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contact-relay/config"
	v1 "contact-relay/internal/delivery/http/v1"
	"contact-relay/internal/usecase"
	"contact-relay/pkg/email"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTransport struct {
	receipt *email.Receipt
	err     error
	calls   int
	last    *email.Message
}

func (s *stubTransport) Send(_ context.Context, msg *email.Message) (*email.Receipt, error) {
	s.calls++
	s.last = msg
	return s.receipt, s.err
}

type envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	MessageID string            `json:"messageId"`
	Response  string            `json:"response"`
	Data      map[string]string `json:"data"`
	Error     string            `json:"error"`
	RequestID string            `json:"request_id"`
}

const validBody = `{"name":"A","email":"a@x.com","goal":"Build site","date":"2024-05-01","budget":"$5k-$10k"}`

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             config.EnvProduction,
		CORSAllowedOrigins: []string{"*"},
		Subject:            "New Contact Form Submission - Liquidata",
		FromName:           "Liquidata Contact Form",
	}
}

func newTestRouter(transport email.Transport, cfg *config.Config) *gin.Engine {
	relay := usecase.NewSubmissionUsecase(transport, nil, nil, usecase.RelayConfig{
		FromAddress: "forms@liquidata.test",
		FromName:    cfg.FromName,
		ToAddress:   "inbox@liquidata.test",
		Subject:     cfg.Subject,
		Host:        "smtp.liquidata.test",
	})
	return v1.NewRouter(v1.RouterDeps{
		SubmissionUC: relay,
		HealthUC:     usecase.NewHealthUsecase(relay),
		Config:       cfg,
	})
}

func post(t *testing.T, r http.Handler, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestSubmitSuccess(t *testing.T) {
	transport := &stubTransport{receipt: &email.Receipt{MessageID: "<id-1@liquidata.test>", Response: "250 OK"}}
	r := newTestRouter(transport, testConfig())

	for _, path := range []string{"/", "/send-email"} {
		t.Run(path, func(t *testing.T) {
			rec, env := post(t, r, path, validBody)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, env.Success)
			assert.Equal(t, "<id-1@liquidata.test>", env.MessageID)
			assert.Equal(t, "250 OK", env.Response)
			assert.NotEmpty(t, env.RequestID)
			assert.Equal(t, env.RequestID, rec.Header().Get("X-Request-ID"))
		})
	}

	require.NotNil(t, transport.last)
	assert.Equal(t, "a@x.com", transport.last.ReplyTo)
	assert.Equal(t, "inbox@liquidata.test", transport.last.To)
	assert.Equal(t, 2, transport.calls)
}

func TestSubmitMissingFields(t *testing.T) {
	transport := &stubTransport{}
	r := newTestRouter(transport, testConfig())

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing budget and date", `{"name":"A","email":"a@x.com","goal":"Build site"}`, "Missing required fields: date, budget"},
		{"empty strings", `{"name":"","email":"","goal":"g","date":"2024-05-01","budget":"b"}`, "Missing required fields: name, email"},
		{"empty object", `{}`, "Missing required fields: name, email, goal, date, budget"},
		{"empty body", ``, "Missing required fields: name, email, goal, date, budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := post(t, r, "/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
		})
	}
	assert.Zero(t, transport.calls)
}

func TestSubmitMalformedBody(t *testing.T) {
	r := newTestRouter(&stubTransport{}, testConfig())

	rec, env := post(t, r, "/", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", env.Message)

	// Fields are strings; other JSON types are rejected before validation
	for _, body := range []string{`{"name":42}`, `{"budget":true}`, `{"details":["a"]}`} {
		rec, env = post(t, r, "/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Invalid request body", env.Message, body)
	}
}

func TestSubmitTransportFailures(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"auth", &email.SendError{Kind: email.FailureAuth, Op: "dial", Err: cause}, http.StatusServiceUnavailable},
		{"connection", &email.SendError{Kind: email.FailureConnection, Op: "dial", Err: cause}, http.StatusServiceUnavailable},
		{"timeout", &email.SendError{Kind: email.FailureTimeout, Op: "send", Err: cause}, http.StatusGatewayTimeout},
		{"unrecognized", &email.SendError{Kind: email.FailureOther, Op: "send", Err: cause}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubTransport{err: tt.err}, testConfig())
			rec, env := post(t, r, "/", validBody)

			assert.Equal(t, tt.code, rec.Code)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message)
			assert.Empty(t, env.Error, "production must not leak transport details")
		})
	}
}

func TestSubmitExposesDetailsInDevelopment(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = config.EnvDevelopment
	err := &email.SendError{Kind: email.FailureAuth, Op: "dial", Err: errors.New("535 bad credentials")}
	r := newTestRouter(&stubTransport{err: err}, cfg)

	rec, env := post(t, r, "/", validBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, env.Error, "535 bad credentials")
}

func TestSubmitUnconfigured(t *testing.T) {
	r := newTestRouter(nil, testConfig())

	rec, env := post(t, r, "/", validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to send email", env.Message)
}

func TestSubmitRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindowSeconds = 60
	transport := &stubTransport{receipt: &email.Receipt{MessageID: "<id@liquidata.test>"}}
	r := newTestRouter(transport, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(validBody))
		req.RemoteAddr = "203.0.113.77:40000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 2, transport.calls)
}

func postFrom(r http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(validBody))
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestSubmitRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitWindowSeconds = 60
	transport := &stubTransport{receipt: &email.Receipt{MessageID: "<id@liquidata.test>"}}
	r := newTestRouter(transport, cfg)

	assert.Equal(t, http.StatusOK, postFrom(r, "203.0.113.88:40000", "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(r, "203.0.113.88:40001", "198.51.100.2"))
	assert.Equal(t, 1, transport.calls)
}

func TestSubmitRateLimitHonoursTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitWindowSeconds = 60
	cfg.TrustedProxies = []string{"203.0.113.90"}
	transport := &stubTransport{receipt: &email.Receipt{MessageID: "<id@liquidata.test>"}}
	r := newTestRouter(transport, cfg)

	assert.Equal(t, http.StatusOK, postFrom(r, "203.0.113.90:40000", "198.51.100.11"))
	assert.Equal(t, http.StatusOK, postFrom(r, "203.0.113.90:40001", "198.51.100.12"))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(r, "203.0.113.90:40002", "198.51.100.11"))
	assert.Equal(t, 2, transport.calls)
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newTestRouter(&stubTransport{receipt: &email.Receipt{MessageID: "<id@liquidata.test>"}}, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(validBody))
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"request_id":"req-123"`)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(nil, testConfig())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "unconfigured", env.Data["smtp"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(&stubTransport{receipt: &email.Receipt{MessageID: "<id@liquidata.test>"}}, testConfig())
	post(t, r, "/", validBody)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contact_relay_submissions_total")
	assert.Contains(t, rec.Body.String(), "contact_relay_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(nil, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://liquidata.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(nil, testConfig())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
