package handler

import (
	"database/sql"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/PYTHTRADER/findtrader/internal/http/middleware"
	"github.com/PYTHTRADER/findtrader/internal/identity"
	"github.com/PYTHTRADER/findtrader/internal/intake"
	"github.com/PYTHTRADER/findtrader/internal/service"
)

// Dependencies are the collaborators the routes are built from. Each is
// constructed once at startup.
type Dependencies struct {
	DB          *sql.DB
	Verifier    identity.Verifier
	RateLimiter service.RateLimiter
	Submissions service.SubmissionService
	Admin       service.AdminService
	Limits      intake.Limits
	Log         *slog.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	app.Get("/health", Health())
	app.Get("/readyz", ReadinessCheck(d.DB))

	cors := middleware.CORS()
	app.Options(SubmitPath, cors, Preflight())
	app.Post(SubmitPath, cors, SubmitTrader(d.Verifier, d.RateLimiter, d.Submissions, d.Limits, d.Log))
	app.All(SubmitPath, cors, MethodNotAllowed())

	admin := app.Group("/admin", middleware.RequireAuth(d.Verifier))
	admin.Get("/submissions", ListSubmissions(d.Admin))
	admin.Get("/submissions/:id", GetSubmission(d.Admin))
	admin.Post("/submissions/:id/approve", ApproveSubmission(d.Admin))
	admin.Post("/submissions/:id/reject", RejectSubmission(d.Admin))
	admin.Get("/submissions/:id/proof", SubmissionProof(d.Admin))
	admin.Get("/submissions/:id/proof/file", SubmissionProofFile(d.Admin))
	admin.Get("/submissions/:id/analysis", SubmissionAnalysis(d.Admin))
	admin.Get("/notifications", ListNotifications(d.Admin))
	admin.Post("/notifications/:id/read", MarkNotificationRead(d.Admin))
}
