package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PYTHTRADER/findtrader/internal/analysis"
	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/model"
	"github.com/PYTHTRADER/findtrader/internal/repository"
	"github.com/PYTHTRADER/findtrader/internal/storage"
)

// SubmissionListResult is the service-level DTO for paginated submissions.
type SubmissionListResult struct {
	Items []model.Submission `json:"data"`
	Total int                `json:"total"`
}

// NotificationListResult is the service-level DTO for paginated notifications.
type NotificationListResult struct {
	Items []model.Notification `json:"data"`
	Total int                  `json:"total"`
}

// AdminService defines the review use cases. Every method except GrantAdmin
// requires callerID to hold the admin role.
type AdminService interface {
	// Approve marks the submission approved and records the reviewer.
	Approve(ctx context.Context, callerID, submissionID string) (*model.Submission, error)
	// Reject marks the submission rejected and records the reviewer.
	Reject(ctx context.Context, callerID, submissionID string) (*model.Submission, error)
	// List returns submissions filtered by status, newest first. An empty status lists all.
	List(ctx context.Context, callerID, status string, limit, offset int) (*SubmissionListResult, error)
	// Get returns a single submission.
	Get(ctx context.Context, callerID, submissionID string) (*model.Submission, error)
	// ProofURL returns a time-limited download URL for the private proof file.
	ProofURL(ctx context.Context, callerID, submissionID string) (string, error)
	// ProofFile opens the private proof object for streaming. The caller closes the reader.
	ProofFile(ctx context.Context, callerID, submissionID string) (io.ReadCloser, storage.ObjectInfo, error)
	// Analyze returns an advisory summary of the submission.
	Analyze(ctx context.Context, callerID, submissionID string) (string, error)
	// ListNotifications returns unread admin notifications.
	ListNotifications(ctx context.Context, callerID string, limit, offset int) (*NotificationListResult, error)
	// MarkNotificationRead flips a notification's read flag.
	MarkNotificationRead(ctx context.Context, callerID, notificationID string) error
	// GrantAdmin gives userID the admin role. Operator tooling only; not exposed over HTTP.
	GrantAdmin(ctx context.Context, userID, email string) (*model.User, error)
}

type adminService struct {
	subs     repository.SubmissionRepository
	notes    repository.NotificationRepository
	users    repository.UserRepository
	store    storage.Storage
	analyzer analysis.Analyzer
	expiry   time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewAdminService constructs an AdminService. presignExpiry bounds proof download URLs.
func NewAdminService(
	subs repository.SubmissionRepository,
	notes repository.NotificationRepository,
	users repository.UserRepository,
	store storage.Storage,
	analyzer analysis.Analyzer,
	presignExpiry time.Duration,
	log *slog.Logger,
) AdminService {
	if analyzer == nil {
		analyzer = analysis.Static(analysis.Disabled)
	}
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &adminService{
		subs:     subs,
		notes:    notes,
		users:    users,
		store:    store,
		analyzer: analyzer,
		expiry:   presignExpiry,
		log:      log.With("component", "admin"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *adminService) requireAdmin(ctx context.Context, callerID string) error {
	if callerID == "" {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	u, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.PermissionDenied, "admin role required")
		}
		return apperr.Wrap(err, apperr.Upstream, "failed to load caller role")
	}
	if !u.IsAdmin() {
		return apperr.New(apperr.PermissionDenied, "admin role required")
	}
	return nil
}

func validID(id, what string) error {
	if id == "" {
		return apperr.New(apperr.InvalidArgument, what+" id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperr.New(apperr.InvalidArgument, what+" id is invalid")
	}
	return nil
}

func (s *adminService) Approve(ctx context.Context, callerID, submissionID string) (*model.Submission, error) {
	return s.review(ctx, callerID, submissionID, model.StatusApproved)
}

func (s *adminService) Reject(ctx context.Context, callerID, submissionID string) (*model.Submission, error) {
	return s.review(ctx, callerID, submissionID, model.StatusRejected)
}

func (s *adminService) review(ctx context.Context, callerID, submissionID string, status model.SubmissionStatus) (*model.Submission, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	if err := validID(submissionID, "submission"); err != nil {
		return nil, err
	}
	sub, err := s.subs.UpdateStatus(ctx, submissionID, status, callerID, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "submission not found")
		}
		return nil, apperr.Wrap(err, apperr.Upstream, "failed to update submission")
	}
	s.log.Info("submission_reviewed", "submission_id", submissionID, "status", string(status), "reviewed_by", callerID)
	return sub, nil
}

func (s *adminService) List(ctx context.Context, callerID, status string, limit, offset int) (*SubmissionListResult, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	st := model.SubmissionStatus(status)
	if st != "" && !st.Valid() {
		return nil, apperr.New(apperr.InvalidArgument, "status must be pending, approved or rejected")
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.subs.ListByStatus(ctx, st, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Upstream, "failed to list submissions")
	}
	return &SubmissionListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *adminService) Get(ctx context.Context, callerID, submissionID string) (*model.Submission, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.find(ctx, submissionID)
}

func (s *adminService) find(ctx context.Context, submissionID string) (*model.Submission, error) {
	if err := validID(submissionID, "submission"); err != nil {
		return nil, err
	}
	sub, err := s.subs.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "submission not found")
		}
		return nil, apperr.Wrap(err, apperr.Upstream, "failed to load submission")
	}
	return sub, nil
}

// proofPath resolves the object key of a submission's proof file.
func (s *adminService) proofPath(ctx context.Context, callerID, submissionID string) (string, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return "", err
	}
	sub, err := s.find(ctx, submissionID)
	if err != nil {
		return "", err
	}
	if sub.ProofStoragePath == "" {
		return "", apperr.New(apperr.NotFound, "submission has no proof file")
	}
	return sub.ProofStoragePath, nil
}

func (s *adminService) ProofURL(ctx context.Context, callerID, submissionID string) (string, error) {
	key, err := s.proofPath(ctx, callerID, submissionID)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, key, s.expiry)
	if err != nil {
		return "", apperr.Wrap(err, apperr.Upstream, "failed to sign proof url")
	}
	return u, nil
}

func (s *adminService) ProofFile(ctx context.Context, callerID, submissionID string) (io.ReadCloser, storage.ObjectInfo, error) {
	key, err := s.proofPath(ctx, callerID, submissionID)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, storage.ObjectInfo{}, apperr.Wrap(err, apperr.Upstream, "failed to read proof file")
	}
	s.log.Info("proof_downloaded", "submission_id", submissionID, "user_id", callerID, "size", info.Size)
	return rc, info, nil
}

func (s *adminService) Analyze(ctx context.Context, callerID, submissionID string) (string, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return "", err
	}
	sub, err := s.find(ctx, submissionID)
	if err != nil {
		return "", err
	}
	return s.analyzer.Analyze(ctx, *sub), nil
}

func (s *adminService) ListNotifications(ctx context.Context, callerID string, limit, offset int) (*NotificationListResult, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.notes.ListUnread(ctx, model.RoleAdmin, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Upstream, "failed to list notifications")
	}
	return &NotificationListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *adminService) MarkNotificationRead(ctx context.Context, callerID, notificationID string) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if err := validID(notificationID, "notification"); err != nil {
		return err
	}
	if err := s.notes.MarkRead(ctx, notificationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.NotFound, "notification not found")
		}
		return apperr.Wrap(err, apperr.Upstream, "failed to update notification")
	}
	return nil
}

func (s *adminService) GrantAdmin(ctx context.Context, userID, email string) (*model.User, error) {
	if userID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "user id is required")
	}
	u, err := s.users.UpsertRole(ctx, &model.User{
		ID:        userID,
		Email:     email,
		Role:      model.RoleAdmin,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Upstream, "failed to grant admin role")
	}
	s.log.Info("admin_granted", "user_id", userID)
	return u, nil
}
