package handler

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/http/middleware"
	"github.com/PYTHTRADER/findtrader/internal/identity"
	"github.com/PYTHTRADER/findtrader/internal/intake"
	"github.com/PYTHTRADER/findtrader/internal/service"
)

// SubmitPath is the trader submission endpoint.
const SubmitPath = "/submitTrader"

// stage tracks a submission request through the pipeline.
type stage int

const (
	stageReceived stage = iota
	stageAuthenticating
	stageRateChecking
	stageParsing
	stageEncrypting
	stagePersisting
	stageResponded
)

func (s stage) String() string {
	switch s {
	case stageReceived:
		return "received"
	case stageAuthenticating:
		return "authenticating"
	case stageRateChecking:
		return "rate_checking"
	case stageParsing:
		return "parsing"
	case stageEncrypting:
		return "encrypting"
	case stagePersisting:
		return "persisting"
	case stageResponded:
		return "responded"
	}
	return "unknown"
}

type submitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
}

// submitRequest is the per-request state. Any stage may move to failed;
// nothing is retried inside a request.
type submitRequest struct {
	c     *fiber.Ctx
	log   *slog.Logger
	stage stage
}

func (r *submitRequest) advance(next stage) {
	r.log.Debug("submission_stage", "from", r.stage.String(), "to", next.String())
	r.stage = next
}

func (r *submitRequest) fail(err error) error {
	kind := apperr.KindOf(err)
	level := slog.LevelWarn
	if middleware.StatusFor(kind) >= fiber.StatusInternalServerError {
		level = slog.LevelError
	}
	r.log.Log(r.c.UserContext(), level, "submission_failed",
		"stage", r.stage.String(),
		"kind", kind.String(),
		"error", err.Error(),
	)
	return writeAppError(r.c, err)
}

// requestBody prefers the streamed body so parsing starts before the upload finishes.
func requestBody(c *fiber.Ctx) io.Reader {
	if s := c.Context().RequestBodyStream(); s != nil {
		return s
	}
	return bytes.NewReader(c.Body())
}

// SubmitTrader authenticates, rate checks, parses and persists one submission.
//
// @Summary Submit a trader verification request
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param proof formData file true "PDF, PNG or JPEG, at most 10 MiB"
// @Success 200 {object} submitResponse
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 429 {object} errorPayload
// @Router /submitTrader [post]
func SubmitTrader(v identity.Verifier, rl service.RateLimiter, svc service.SubmissionService, limits intake.Limits, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		req := &submitRequest{
			c:     c,
			log:   log.With("request_id", requestIDFromCtx(c)),
			stage: stageReceived,
		}

		req.advance(stageAuthenticating)
		uid, err := v.Verify(ctx, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return req.fail(err)
		}
		c.Locals(middleware.UserIDLocalKey, uid)
		req.log = req.log.With("user_id", uid)

		req.advance(stageRateChecking)
		if err := rl.CheckQuota(ctx, uid); err != nil {
			return req.fail(err)
		}

		req.advance(stageParsing)
		p, err := intake.NewParser(ctx, requestBody(c), string(c.Request().Header.ContentType()), limits)
		if err != nil {
			return req.fail(err)
		}
		form, err := intake.Collect(p)
		if err != nil {
			return req.fail(err)
		}
		if err := form.Validate(); err != nil {
			return req.fail(err)
		}

		if form.Get(intake.FieldAPIKey) != "" {
			// The key is encrypted inside Submit, ahead of any storage write.
			req.advance(stageEncrypting)
		}
		req.advance(stagePersisting)
		sub, err := svc.Submit(ctx, uid, form)
		if err != nil {
			return req.fail(err)
		}

		req.advance(stageResponded)
		return c.Status(fiber.StatusOK).JSON(submitResponse{
			Success:      true,
			Message:      "Submission received.",
			SubmissionID: sub.ID,
		})
	}
}

// Preflight answers CORS preflight with an empty 204.
func Preflight() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Status(fiber.StatusNoContent)
		return nil
	}
}

// MethodNotAllowed rejects every method other than POST and OPTIONS on the submission route.
func MethodNotAllowed() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAllow, "POST, OPTIONS")
		return writeAppError(c, apperr.New(apperr.MethodNotAllowed, "Method Not Allowed. Use POST."))
	}
}
