package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/intake"
	"github.com/PYTHTRADER/findtrader/internal/model"
	"github.com/PYTHTRADER/findtrader/internal/notify"
	"github.com/PYTHTRADER/findtrader/internal/repository"
	"github.com/PYTHTRADER/findtrader/internal/storage"
)

const maxFilenameLen = 100

// SecretEncrypter encrypts the optional broker API key. ok is false when no
// ciphertext could be produced; the caller then stores nothing.
type SecretEncrypter interface {
	Encrypt(ctx context.Context, plaintext string) (ciphertext string, ok bool)
}

// SubmissionService defines the trader submission use case.
type SubmissionService interface {
	// Submit validates the form and persists it: proof object first, then the
	// submission record, then the admin notification and its event.
	// A failed record write removes the stored proof object again.
	Submit(ctx context.Context, userID string, form *intake.Form) (*model.Submission, error)
}

type submissionService struct {
	store storage.Storage
	subs  repository.SubmissionRepository
	notes repository.NotificationRepository
	enc   SecretEncrypter
	pub   notify.Publisher
	log   *slog.Logger
	now   func() time.Time
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(
	store storage.Storage,
	subs repository.SubmissionRepository,
	notes repository.NotificationRepository,
	enc SecretEncrypter,
	pub notify.Publisher,
	log *slog.Logger,
) SubmissionService {
	if pub == nil {
		pub = notify.Noop{}
	}
	return &submissionService{
		store: store,
		subs:  subs,
		notes: notes,
		enc:   enc,
		pub:   pub,
		log:   log.With("component", "submission"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *submissionService) Submit(ctx context.Context, userID string, form *intake.Form) (*model.Submission, error) {
	if userID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "user is required")
	}
	if form == nil {
		return nil, apperr.New(apperr.InvalidSubmission, "submission form is empty")
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	cat, _ := model.ParseCategory(form.Get(intake.FieldCategory))

	now := s.now()
	sub := &model.Submission{
		ID:               uuid.NewString(),
		UserID:           userID,
		FullName:         form.Get(intake.FieldFullName),
		Email:            form.Get(intake.FieldEmail),
		City:             form.Get(intake.FieldCity),
		Mobile:           form.Get(intake.FieldMobile),
		Category:         cat,
		Broker:           form.Get(intake.FieldBroker),
		Strategy:         form.Get(intake.FieldStrategy),
		ProofContentType: form.Attachment.ContentType,
		ProofSize:        int64(len(form.Attachment.Data)),
		Status:           model.StatusPending,
		CreatedAt:        now,
	}

	if apiKey := form.Get(intake.FieldAPIKey); apiKey != "" && s.enc != nil {
		if ct, ok := s.enc.Encrypt(ctx, apiKey); ok {
			at := s.now()
			sub.EncryptedAPIKey = &ct
			sub.APIKeyEncryptedAt = &at
		} else {
			s.log.Warn("api_key_dropped", "submission_id", sub.ID, "reason", "encryption unavailable")
		}
	}

	key := ProofKey(sub.ID, now, form.Attachment.Filename)
	info, err := s.store.Put(ctx, key, bytes.NewReader(form.Attachment.Data), storage.PutObjectOptions{
		Size:        sub.ProofSize,
		ContentType: sub.ProofContentType,
		Private:     true,
		Metadata: map[string]string{
			"submission-id":     sub.ID,
			"original-filename": form.Attachment.Filename,
		},
	})
	if err != nil {
		s.log.Error("proof_store_failed", "submission_id", sub.ID, "error", err.Error())
		return nil, apperr.Wrap(err, apperr.Upstream, "failed to store proof file")
	}
	sub.ProofStoragePath = info.Key
	if sub.ProofStoragePath == "" {
		sub.ProofStoragePath = key
	}

	stored, err := s.subs.Create(ctx, sub)
	if err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), sub.ProofStoragePath); delErr != nil {
			s.log.Error("proof_rollback_failed", "submission_id", sub.ID, "key", sub.ProofStoragePath, "error", delErr.Error())
			return nil, apperr.Wrap(fmt.Errorf("db save failed: %v; rollback delete failed: %w", err, delErr),
				apperr.Upstream, "failed to save submission")
		}
		s.log.Error("submission_write_failed", "submission_id", sub.ID, "error", err.Error())
		return nil, apperr.Wrap(err, apperr.Upstream, "failed to save submission")
	}

	s.notifyAdmins(ctx, stored)

	s.log.Info("submission_created",
		"submission_id", stored.ID,
		"user_id", userID,
		"category", string(stored.Category),
		"proof_size", stored.ProofSize,
		"api_key_encrypted", stored.EncryptedAPIKey != nil,
	)
	return stored, nil
}

// notifyAdmins writes the notification and publishes its event. Neither is
// rolled back or retried; the submission stands either way.
func (s *submissionService) notifyAdmins(ctx context.Context, sub *model.Submission) {
	n := &model.Notification{
		ID:           uuid.NewString(),
		Type:         model.NotificationNewSubmission,
		SubmissionID: sub.ID,
		TraderName:   sub.FullName,
		Role:         model.RoleAdmin,
		CreatedAt:    s.now(),
	}
	stored, err := s.notes.Create(ctx, n)
	if err != nil {
		s.log.Error("notification_write_failed", "submission_id", sub.ID, "error", err.Error())
		return
	}
	if err := s.pub.Publish(ctx, *stored); err != nil {
		s.log.Warn("notification_publish_failed", "submission_id", sub.ID, "error", err.Error())
	}
}

// ProofKey is the private object key for a submission's proof file.
func ProofKey(submissionID string, at time.Time, filename string) string {
	return fmt.Sprintf("private/proofs/%s/%d_%s", submissionID, at.UnixMilli(), SanitizeFilename(filename))
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore from the
// base name and replaces everything else with an underscore.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if len(out) > maxFilenameLen {
		out = out[len(out)-maxFilenameLen:]
	}
	if out == "" {
		return "proof"
	}
	return out
}
