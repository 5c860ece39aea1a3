package service

import (
	"context"
	"fmt"
	"time"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/config"
	"github.com/PYTHTRADER/findtrader/internal/repository"
)

// RateLimiter bounds how often a user may submit.
type RateLimiter interface {
	// CheckQuota returns a RateLimited error when the user has used up the window.
	CheckQuota(ctx context.Context, userID string) error
}

// submissionQuota counts recent submissions in the database on every call.
// Two concurrent requests can both pass before either record lands; that
// overshoot by one is accepted.
type submissionQuota struct {
	subs   repository.SubmissionRepository
	max    int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter constructs a RateLimiter over the rolling window in cfg.
func NewRateLimiter(subs repository.SubmissionRepository, cfg config.RateLimitConfig) RateLimiter {
	return &submissionQuota{
		subs:   subs,
		max:    cfg.MaxSubmissions,
		window: cfg.Window,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (q *submissionQuota) CheckQuota(ctx context.Context, userID string) error {
	since := q.now().Add(-q.window)
	n, err := q.subs.CountByUserSince(ctx, userID, since)
	if err != nil {
		return apperr.Wrap(err, apperr.Upstream, "failed to check submission quota")
	}
	if n >= q.max {
		return apperr.New(apperr.RateLimited,
			fmt.Sprintf("Rate limit exceeded. Max %d submissions per day.", q.max))
	}
	return nil
}
