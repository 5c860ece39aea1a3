package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/PYTHTRADER/findtrader/internal/model"
	"github.com/PYTHTRADER/findtrader/internal/repository"
)

const submissionColumns = `id, user_id, full_name, email, city, mobile, category, broker, strategy,
		proof_storage_path, proof_content_type, proof_size, encrypted_api_key, api_key_encrypted_at,
		status, created_at, reviewed_by, reviewed_at`

// SubmissionPostgres is a PostgreSQL implementation of repository.SubmissionRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type SubmissionPostgres struct {
	db *sql.DB
}

// NewSubmissionPostgres creates a new SubmissionPostgres repository.
func NewSubmissionPostgres(db *sql.DB) *SubmissionPostgres {
	return &SubmissionPostgres{db: db}
}

var _ repository.SubmissionRepository = (*SubmissionPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*model.Submission, error) {
	var (
		s          model.Submission
		encKey     sql.NullString
		encAt      sql.NullTime
		reviewedBy sql.NullString
		reviewedAt sql.NullTime
		category   string
		status     string
	)
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.FullName,
		&s.Email,
		&s.City,
		&s.Mobile,
		&category,
		&s.Broker,
		&s.Strategy,
		&s.ProofStoragePath,
		&s.ProofContentType,
		&s.ProofSize,
		&encKey,
		&encAt,
		&status,
		&s.CreatedAt,
		&reviewedBy,
		&reviewedAt,
	); err != nil {
		return nil, err
	}
	s.Category = model.Category(category)
	s.Status = model.SubmissionStatus(status)
	if encKey.Valid {
		s.EncryptedAPIKey = &encKey.String
	}
	if encAt.Valid {
		s.APIKeyEncryptedAt = &encAt.Time
	}
	if reviewedBy.Valid {
		s.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		s.ReviewedAt = &reviewedAt.Time
	}
	return &s, nil
}

// Create inserts a new submission row and returns the stored record.
func (r *SubmissionPostgres) Create(ctx context.Context, sub *model.Submission) (*model.Submission, error) {
	const q = `
		INSERT INTO submissions (id, user_id, full_name, email, city, mobile, category, broker, strategy,
			proof_storage_path, proof_content_type, proof_size, encrypted_api_key, api_key_encrypted_at,
			status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + submissionColumns
	row := r.db.QueryRowContext(ctx, q,
		sub.ID,
		sub.UserID,
		sub.FullName,
		sub.Email,
		sub.City,
		sub.Mobile,
		string(sub.Category),
		sub.Broker,
		sub.Strategy,
		sub.ProofStoragePath,
		sub.ProofContentType,
		sub.ProofSize,
		nullString(sub.EncryptedAPIKey),
		nullTime(sub.APIKeyEncryptedAt),
		string(sub.Status),
		sub.CreatedAt,
	)
	return scanSubmission(row)
}

// FindByID fetches a single submission by its ID.
func (r *SubmissionPostgres) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	q := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return scanSubmission(r.db.QueryRowContext(ctx, q, id))
}

// CountByUserSince backs the rolling submission quota.
func (r *SubmissionPostgres) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM submissions WHERE user_id = $1 AND created_at > $2`
	var n int
	if err := r.db.QueryRowContext(ctx, q, userID, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListByStatus returns submissions using LIMIT/OFFSET pagination and a total count.
func (r *SubmissionPostgres) ListByStatus(ctx context.Context, status model.SubmissionStatus, pq repository.PageQuery) (*repository.PageResult[model.Submission], error) {
	const qCount = `SELECT COUNT(*) FROM submissions WHERE ($1 = '' OR status = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, string(status)).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + submissionColumns + ` FROM submissions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, string(status), pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Submission]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateStatus records a review decision. Only status and reviewer fields change.
func (r *SubmissionPostgres) UpdateStatus(ctx context.Context, id string, status model.SubmissionStatus, reviewedBy string, reviewedAt time.Time) (*model.Submission, error) {
	q := `UPDATE submissions SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1
		RETURNING ` + submissionColumns
	return scanSubmission(r.db.QueryRowContext(ctx, q, id, string(status), reviewedBy, reviewedAt))
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
