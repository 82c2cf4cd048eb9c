// file: internals/features/sessions/groups/route/group_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	groupctrl "formationhub_backend/internals/features/sessions/groups/controller"
	"formationhub_backend/internals/features/sessions/groups/service"
)

func GroupRoutes(api fiber.Router, db *gorm.DB, groups *service.GroupService) {
	h := groupctrl.NewGroupController(db, groups)

	api.Post("/sessions/:id/groups", h.Create)
	api.Get("/sessions/:id/groups", h.List)
	api.Delete("/sessions/:id/trainees/:trainee_id", h.RemoveTrainee)

	api.Patch("/groups/:id/resize", h.Resize)
	api.Patch("/groups/:id/reprice", h.Reprice)
	api.Post("/groups/:id/confirm", h.Confirm)
	api.Post("/groups/:id/cancel", h.Cancel)
	api.Post("/groups/:id/trainees", h.AddTrainee)
	api.Get("/groups/:id/trainees", h.ListTrainees)
}
