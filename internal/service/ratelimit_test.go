package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/config"
	"github.com/PYTHTRADER/findtrader/internal/model"
	"github.com/PYTHTRADER/findtrader/internal/repository"
	repoMocks "github.com/PYTHTRADER/findtrader/internal/repository/mocks"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestRateLimiter_CheckQuota(t *testing.T) {
	ctx := context.Background()
	since := fixedNow.Add(-24 * time.Hour)

	tests := []struct {
		name     string
		count    int
		repoErr  error
		wantKind apperr.Kind
		wantErr  bool
	}{
		{name: "under quota", count: 2},
		{name: "no submissions", count: 0},
		{name: "at quota", count: 3, wantErr: true, wantKind: apperr.RateLimited},
		{name: "over quota", count: 4, wantErr: true, wantKind: apperr.RateLimited},
		{name: "db error", repoErr: errors.New("conn reset"), wantErr: true, wantKind: apperr.Upstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockSubmissionRepository)
			repo.On("CountByUserSince", ctx, "user-1", since).Return(tt.count, tt.repoErr)

			rl := NewRateLimiter(repo, config.RateLimitConfig{MaxSubmissions: 3, Window: 24 * time.Hour}).(*submissionQuota)
			rl.now = func() time.Time { return fixedNow }

			err := rl.CheckQuota(ctx, "user-1")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestRateLimiter_MessageNamesLimit(t *testing.T) {
	repo := new(repoMocks.MockSubmissionRepository)
	repo.On("CountByUserSince", mock.Anything, "u", mock.Anything).Return(3, nil)

	err := NewRateLimiter(repo, config.RateLimitConfig{MaxSubmissions: 3, Window: 24 * time.Hour}).CheckQuota(context.Background(), "u")
	assert.Contains(t, apperr.MessageOf(err), "Max 3 submissions per day")
}

// memSubmissions counts with the same strict created_at > since filter as the SQL repository.
type memSubmissions struct {
	repository.SubmissionRepository
	mu   sync.Mutex
	rows []model.Submission
}

func (m *memSubmissions) CountByUserSince(_ context.Context, userID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.UserID == userID && r.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func TestRateLimiter_RollingWindowBoundary(t *testing.T) {
	oldest := fixedNow
	repo := &memSubmissions{rows: []model.Submission{
		{UserID: "u", CreatedAt: oldest},
		{UserID: "u", CreatedAt: oldest.Add(time.Hour)},
		{UserID: "u", CreatedAt: oldest.Add(2 * time.Hour)},
		{UserID: "other", CreatedAt: oldest.Add(3 * time.Hour)},
	}}
	rl := NewRateLimiter(repo, config.RateLimitConfig{MaxSubmissions: 3, Window: 24 * time.Hour}).(*submissionQuota)

	rl.now = func() time.Time { return oldest.Add(3 * time.Hour) }
	assert.Equal(t, apperr.RateLimited, apperr.KindOf(rl.CheckQuota(context.Background(), "u")))

	rl.now = func() time.Time { return oldest.Add(24*time.Hour - time.Second) }
	assert.Equal(t, apperr.RateLimited, apperr.KindOf(rl.CheckQuota(context.Background(), "u")))

	rl.now = func() time.Time { return oldest.Add(24*time.Hour + time.Second) }
	assert.NoError(t, rl.CheckQuota(context.Background(), "u"))

	assert.NoError(t, rl.CheckQuota(context.Background(), "other"))
}
