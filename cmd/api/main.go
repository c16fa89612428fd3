package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-relay/config"
	_ "contact-relay/docs" // Important for Swagger
	v1 "contact-relay/internal/delivery/http/v1"
	"contact-relay/internal/usecase"
	"contact-relay/pkg/email"
	"contact-relay/pkg/logger"
	"contact-relay/pkg/redis"
	"contact-relay/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           Contact Relay API
// @version         1.0
// @description     Relays contact form submissions to a mailbox over SMTP.
// @host            localhost:3001
// @BasePath        /
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting contact relay", "port", cfg.Port, "env", cfg.AppEnv)

	// 3. Setup Redis (optional, rate limiting falls back to memory)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(context.Background(), redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting will use in-memory fallback", "error", err)
		} else {
			defer redis.Close()
		}
	}

	// 4. Setup Mail Transport. Missing settings leave the relay unconfigured.
	var transport email.Transport
	if err := cfg.SMTP.Validate(); err != nil {
		logger.Log.Error("Email service not configured - contact form will be unavailable", "error", err)
	} else {
		smtpTransport := email.NewSMTPTransport(cfg.SMTP)
		transport = smtpTransport
		go verifyTransport(smtpTransport, time.Duration(cfg.SMTPTimeoutSeconds)*time.Second)
	}

	// 5. Setup UseCases
	submissionUC := usecase.NewSubmissionUsecase(transport, email.NewRenderer(nil), validation.New(), usecase.RelayConfig{
		FromAddress: cfg.SMTP.FromEmail,
		FromName:    cfg.FromName,
		ToAddress:   cfg.SMTP.ToEmail,
		Subject:     cfg.Subject,
		Host:        cfg.SMTP.Host,
		SendTimeout: time.Duration(cfg.SMTPTimeoutSeconds) * time.Second,
	})
	healthUC := usecase.NewHealthUsecase(submissionUC)

	// 6. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		SubmissionUC: submissionUC,
		HealthUC:     healthUC,
		Config:       cfg,
	})

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
	}
	if cfg.SMTPTimeoutSeconds > 0 {
		// Leave room for the 504 to be written after the relay gives up
		srv.WriteTimeout = time.Duration(cfg.SMTPTimeoutSeconds)*time.Second + 10*time.Second
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// verifyTransport reports whether the SMTP server accepts our connection and credentials.
// A failure is logged only; each submission still makes its own attempt.
func verifyTransport(t *email.SMTPTransport, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := t.Verify(ctx); err != nil {
		logger.Log.Error("SMTP connection failed", "addr", t.Address(), "kind", email.KindOf(err).String(), "error", err)
		return
	}
	logger.Log.Info("SMTP connection verified", "addr", t.Address())
}
