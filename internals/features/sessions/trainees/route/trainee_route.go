// file: internals/features/sessions/trainees/route/trainee_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	sessService "formationhub_backend/internals/features/sessions/sessions/service"
	traineectrl "formationhub_backend/internals/features/sessions/trainees/controller"
	"formationhub_backend/internals/features/sessions/trainees/service"
)

func TraineeRoutes(api fiber.Router, db *gorm.DB, lifecycle *service.LifecycleService, codes *service.AccessCodeService, sessions *sessService.SessionService) {
	lifecycleH := traineectrl.NewLifecycleController(db, lifecycle, sessions)
	codesH := traineectrl.NewAccessCodeController(db, codes)

	// bulk first: ":trainee_id" would otherwise swallow the literal "status"
	api.Post("/sessions/:id/trainees/status", lifecycleH.SetStatusBulk)
	api.Post("/sessions/:id/trainees/:trainee_id/status", lifecycleH.SetStatus)
	api.Post("/sessions/:id/convocations", lifecycleH.SendConvocations)
	api.Post("/sessions/:id/presence", lifecycleH.MarkPresent)

	api.Post("/sessions/:id/access-codes/:trainee_id", codesH.Issue)
	api.Post("/sessions/:id/access-codes", codesH.IssueAllMissing)
}

// PublicTraineeRoutes carries the portal-facing endpoints (rate-limited by
// the caller).
func PublicTraineeRoutes(public fiber.Router, db *gorm.DB, codes *service.AccessCodeService) {
	codesH := traineectrl.NewAccessCodeController(db, codes)
	public.Post("/sessions/:id/trainees/:trainee_id/portal/verify", codesH.Verify)
}
