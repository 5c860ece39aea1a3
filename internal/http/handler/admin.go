package handler

import (
	"path"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/http/middleware"
	"github.com/PYTHTRADER/findtrader/internal/service"
)

func pageParams(c *fiber.Ctx, defLimit int) (int, int, error) {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defLimit)))
	if err != nil {
		return 0, 0, apperr.New(apperr.InvalidArgument, "invalid limit")
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, apperr.New(apperr.InvalidArgument, "invalid offset")
	}
	return limit, offset, nil
}

// ListSubmissions returns the review queue, optionally filtered by ?status=.
//
// @Summary List submissions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param limit query int false "page size" default(10)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.SubmissionListResult
// @Failure 403 {object} errorPayload
// @Router /admin/submissions [get]
func ListSubmissions(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c, 10)
		if err != nil {
			return writeAppError(c, err)
		}
		res, err := svc.List(c.UserContext(), middleware.UserID(c), c.Query("status"), limit, offset)
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(res)
	}
}

// GetSubmission returns one submission.
func GetSubmission(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, err := svc.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(sub)
	}
}

// ApproveSubmission marks a submission approved.
func ApproveSubmission(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, err := svc.Approve(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(sub)
	}
}

// RejectSubmission marks a submission rejected.
func RejectSubmission(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, err := svc.Reject(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(sub)
	}
}

// SubmissionProof returns a short-lived download URL for the proof file.
func SubmissionProof(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.ProofURL(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

// SubmissionProofFile streams the proof file through the API for clients that
// cannot reach the object store directly.
func SubmissionProofFile(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := svc.ProofFile(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeAppError(c, err)
		}
		// Attachment guesses a type from the extension; the stored type wins.
		c.Attachment(path.Base(info.Key))
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		return c.SendStream(rc, size)
	}
}

// SubmissionAnalysis returns the advisory AI summary.
func SubmissionAnalysis(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		text, err := svc.Analyze(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(fiber.Map{"analysis": text})
	}
}

// ListNotifications returns unread admin notifications.
func ListNotifications(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c, 20)
		if err != nil {
			return writeAppError(c, err)
		}
		res, err := svc.ListNotifications(c.UserContext(), middleware.UserID(c), limit, offset)
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(res)
	}
}

// MarkNotificationRead flips a notification's read flag.
func MarkNotificationRead(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.MarkNotificationRead(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return writeAppError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
