// file: internals/features/sessions/alerts/route/alert_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/alerts/controller"
	sessService "formationhub_backend/internals/features/sessions/sessions/service"
)

func AlertRoutes(api fiber.Router, db *gorm.DB, capacity *sessService.CapacityService) {
	ctl := controller.NewAlertController(db, capacity)

	api.Post("/sessions/:id/alerts/check", ctl.Check)
	api.Get("/sessions/:id/alerts/summary", ctl.Summary)
	api.Get("/sessions/:id/alerts", ctl.List)
	api.Post("/sessions/:id/alerts/cleanup", ctl.Cleanup)

	api.Patch("/alerts/:alert_id/resolve", ctl.Resolve)
	api.Delete("/alerts/:alert_id", ctl.Dismiss)
}
