package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/PYTHTRADER/findtrader/internal/intake"
	"github.com/PYTHTRADER/findtrader/internal/model"
	"github.com/PYTHTRADER/findtrader/internal/service"
	"github.com/PYTHTRADER/findtrader/internal/storage"
)

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, userID string, form *intake.Form) (*model.Submission, error) {
	args := m.Called(ctx, userID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) CheckQuota(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockSecretEncrypter struct {
	mock.Mock
}

func (m *MockSecretEncrypter) Encrypt(ctx context.Context, plaintext string) (string, bool) {
	args := m.Called(ctx, plaintext)
	return args.String(0), args.Bool(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Approve(ctx context.Context, callerID, submissionID string) (*model.Submission, error) {
	args := m.Called(ctx, callerID, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *MockAdminService) Reject(ctx context.Context, callerID, submissionID string) (*model.Submission, error) {
	args := m.Called(ctx, callerID, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *MockAdminService) List(ctx context.Context, callerID, status string, limit, offset int) (*service.SubmissionListResult, error) {
	args := m.Called(ctx, callerID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionListResult), args.Error(1)
}

func (m *MockAdminService) Get(ctx context.Context, callerID, submissionID string) (*model.Submission, error) {
	args := m.Called(ctx, callerID, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *MockAdminService) ProofURL(ctx context.Context, callerID, submissionID string) (string, error) {
	args := m.Called(ctx, callerID, submissionID)
	return args.String(0), args.Error(1)
}

func (m *MockAdminService) ProofFile(ctx context.Context, callerID, submissionID string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, callerID, submissionID)
	rc, _ := args.Get(0).(io.ReadCloser)
	info, _ := args.Get(1).(storage.ObjectInfo)
	return rc, info, args.Error(2)
}

func (m *MockAdminService) Analyze(ctx context.Context, callerID, submissionID string) (string, error) {
	args := m.Called(ctx, callerID, submissionID)
	return args.String(0), args.Error(1)
}

func (m *MockAdminService) ListNotifications(ctx context.Context, callerID string, limit, offset int) (*service.NotificationListResult, error) {
	args := m.Called(ctx, callerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.NotificationListResult), args.Error(1)
}

func (m *MockAdminService) MarkNotificationRead(ctx context.Context, callerID, notificationID string) error {
	args := m.Called(ctx, callerID, notificationID)
	return args.Error(0)
}

func (m *MockAdminService) GrantAdmin(ctx context.Context, userID, email string) (*model.User, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
