package postgres

import (
	"context"
	"database/sql"

	"github.com/PYTHTRADER/findtrader/internal/model"
	"github.com/PYTHTRADER/findtrader/internal/repository"
)

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	db *sql.DB
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

// Create inserts a notification row and returns the stored record.
func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	const q = `
		INSERT INTO notifications (id, type, submission_id, trader_name, role, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, type, submission_id, trader_name, role, read, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		n.ID,
		n.Type,
		n.SubmissionID,
		n.TraderName,
		n.Role,
		n.Read,
		n.CreatedAt,
	)
	var out model.Notification
	if err := row.Scan(
		&out.ID,
		&out.Type,
		&out.SubmissionID,
		&out.TraderName,
		&out.Role,
		&out.Read,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUnread returns unread notifications for a role using LIMIT/OFFSET pagination.
func (r *NotificationPostgres) ListUnread(ctx context.Context, role string, pq repository.PageQuery) (*repository.PageResult[model.Notification], error) {
	const qCount = `SELECT COUNT(*) FROM notifications WHERE role = $1 AND read = false`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, role).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, type, submission_id, trader_name, role, read, created_at
		FROM notifications
		WHERE role = $1 AND read = false
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, role, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Type,
			&n.SubmissionID,
			&n.TraderName,
			&n.Role,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Notification]{
		Items: items,
		Total: total,
	}, nil
}

// MarkRead flips the read flag on a notification.
func (r *NotificationPostgres) MarkRead(ctx context.Context, id string) error {
	const q = `UPDATE notifications SET read = true WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
