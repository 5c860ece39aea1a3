package repository

import (
	"context"
	"time"

	"github.com/PYTHTRADER/findtrader/internal/model"
)

// SubmissionRepository defines data access for trader submissions using SQL queries only.
// No business logic here — strictly persistence operations.
type SubmissionRepository interface {
	// Create inserts a new submission record. The caller assigns ID and CreatedAt.
	Create(ctx context.Context, sub *model.Submission) (*model.Submission, error)

	// FindByID returns a submission by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Submission, error)

	// CountByUserSince counts the user's submissions created strictly after since.
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error)

	// ListByStatus returns a page of submissions in the given status, newest first.
	// An empty status lists every submission.
	ListByStatus(ctx context.Context, status model.SubmissionStatus, pq PageQuery) (*PageResult[model.Submission], error)

	// UpdateStatus sets status and reviewer fields and returns the updated row, or sql.ErrNoRows.
	UpdateStatus(ctx context.Context, id string, status model.SubmissionStatus, reviewedBy string, reviewedAt time.Time) (*model.Submission, error)
}

// NotificationRepository defines data access for admin notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// ListUnread returns unread notifications addressed to role, newest first.
	ListUnread(ctx context.Context, role string, pq PageQuery) (*PageResult[model.Notification], error)

	// MarkRead flips the read flag. Returns sql.ErrNoRows if the notification does not exist.
	MarkRead(ctx context.Context, id string) error
}

// UserRepository defines data access for local role records.
type UserRepository interface {
	// FindByID returns the user, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// UpsertRole creates the user or updates its role.
	UpsertRole(ctx context.Context, u *model.User) (*model.User, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
