package usecase

import (
	"context"

	"contact-relay/internal/domain"
	"contact-relay/pkg/redis"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	submissionUC domain.SubmissionUsecase
}

func NewHealthUsecase(submissionUC domain.SubmissionUsecase) HealthUsecase {
	return &healthUsecase{submissionUC: submissionUC}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status":     "ok",
		"smtp":       "unconfigured",
		"rate_limit": "memory",
	}
	if u.submissionUC != nil && u.submissionUC.Configured() {
		status["smtp"] = "configured"
	}
	if redis.Client() != nil {
		status["rate_limit"] = "redis"
		if err := redis.HealthCheck(ctx); err != nil {
			status["rate_limit"] = "redis_unreachable"
		}
	}
	return status
}
