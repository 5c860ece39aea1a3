package handler

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PYTHTRADER/findtrader/internal/config"
	"github.com/PYTHTRADER/findtrader/internal/logging"
	"github.com/PYTHTRADER/findtrader/internal/model"
	repoMocks "github.com/PYTHTRADER/findtrader/internal/repository/mocks"
	"github.com/PYTHTRADER/findtrader/internal/service"
	serviceMocks "github.com/PYTHTRADER/findtrader/internal/service/mocks"
	"github.com/PYTHTRADER/findtrader/internal/storage"
	storageMocks "github.com/PYTHTRADER/findtrader/internal/storage/mocks"
)

// The pipeline below runs the real limiter and submission service against
// mocked repositories and object storage.
func TestSubmitTrader_Pipeline(t *testing.T) {
	subs := new(repoMocks.MockSubmissionRepository)
	notes := new(repoMocks.MockNotificationRepository)
	store := new(storageMocks.MockStorage)
	enc := new(serviceMocks.MockSecretEncrypter)

	var stored *model.Submission
	var storedBytes int64
	subs.On("CountByUserSince", mock.Anything, "user-1", mock.AnythingOfType("time.Time")).Return(0, nil).Once()
	enc.On("Encrypt", mock.Anything, "ABC123").Return("", false).Once()
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool { return o.Private })).
		Return(func(_ context.Context, key string, r io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
			storedBytes, _ = io.Copy(io.Discard, r)
			return storage.ObjectInfo{Key: key, Size: storedBytes}
		}, nil).Once()
	subs.On("Create", mock.Anything, mock.Anything).
		Return(func(_ context.Context, s *model.Submission) *model.Submission {
			stored = s
			return s
		}, nil).Once()
	notes.On("Create", mock.Anything, mock.Anything).Return(&model.Notification{ID: "n-1"}, nil).Once()

	limiter := service.NewRateLimiter(subs, config.RateLimitConfig{MaxSubmissions: 3, Window: 24 * time.Hour})
	svc := service.NewSubmissionService(store, subs, notes, enc, nil, logging.Discard())
	d := newTestDeps()
	app := newTestApp(d, svc, limiter)

	parts := append(validParts(2<<20), formPart{name: "apiKey", data: []byte("ABC123")})
	resp, err := app.Test(submitRequestWith(t, "Bearer valid", parts...), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, stored)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Equal(t, model.CategoryOptions, stored.Category)
	assert.Nil(t, stored.EncryptedAPIKey)
	assert.Equal(t, int64(2<<20), storedBytes)
	assert.Contains(t, stored.ProofStoragePath, "private/proofs/"+stored.ID+"/")

	// A fourth submission inside the window is refused before anything is written.
	subs.On("CountByUserSince", mock.Anything, "user-1", mock.AnythingOfType("time.Time")).Return(3, nil).Once()

	resp, err = app.Test(submitRequestWith(t, "Bearer valid", validParts(1024)...), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp.Body).Error, "Max 3 submissions per day")

	subs.AssertNumberOfCalls(t, "Create", 1)
	store.AssertNumberOfCalls(t, "Put", 1)
	enc.AssertExpectations(t)
}
