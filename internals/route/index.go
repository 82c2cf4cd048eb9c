// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"formationhub_backend/internals/configs"
	alertRoute "formationhub_backend/internals/features/sessions/alerts/route"
	financeRoute "formationhub_backend/internals/features/sessions/finance/route"
	groupRoute "formationhub_backend/internals/features/sessions/groups/route"
	groupService "formationhub_backend/internals/features/sessions/groups/service"
	"formationhub_backend/internals/features/sessions/mailer"
	sessionRoute "formationhub_backend/internals/features/sessions/sessions/route"
	sessService "formationhub_backend/internals/features/sessions/sessions/service"
	traineeRoute "formationhub_backend/internals/features/sessions/trainees/route"
	traineeService "formationhub_backend/internals/features/sessions/trainees/service"
	"formationhub_backend/internals/middlewares"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	cfg := configs.EngineConfig()

	// ===================== SERVICES =====================
	notifier := mailer.New(
		configs.SMTPHost, configs.SMTPPort,
		configs.SMTPUser, configs.SMTPPassword,
		configs.MailFrom, configs.MailRelay,
	)
	capacity := sessService.NewCapacityService(db)
	lifecycle := traineeService.NewLifecycleService(db, cfg, notifier)
	codes := traineeService.NewAccessCodeService(db, cfg)
	sessions := sessService.NewSessionService(db, cfg)
	groups := groupService.NewGroupService(db, cfg, capacity, lifecycle)

	// ===================== PRIVATE (back office) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	api := app.Group("/api")

	sessionRoute.SessionRoutes(api, db, cfg)
	groupRoute.GroupRoutes(api, db, groups)
	traineeRoute.TraineeRoutes(api, db, lifecycle, codes, sessions)
	alertRoute.AlertRoutes(api, db, capacity)
	financeRoute.FinanceRoutes(api, db)

	// ===================== PUBLIC (trainee portal) =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public", middlewares.VerifyCodeRateLimiter())

	traineeRoute.PublicTraineeRoutes(public, db, codes)
}
