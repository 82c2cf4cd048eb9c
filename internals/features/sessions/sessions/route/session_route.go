// file: internals/features/sessions/sessions/route/session_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/engine"
	sessionctrl "formationhub_backend/internals/features/sessions/sessions/controller"
)

func SessionRoutes(api fiber.Router, db *gorm.DB, cfg engine.Config) {
	h := sessionctrl.NewSessionController(db, cfg)

	api.Post("/sessions", h.Create)
	api.Get("/sessions/:id", h.Get)
	api.Get("/sessions/:id/capacity", h.GetCapacity)
	api.Patch("/sessions/:id/thresholds", h.SetThresholds)
}
