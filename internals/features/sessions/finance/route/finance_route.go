// file: internals/features/sessions/finance/route/finance_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/finance/controller"
)

func FinanceRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewFinanceController(db)

	api.Get("/sessions/:id/revenue", ctl.SessionRevenue)
	api.Get("/sessions/:id/revenue/:client_id", ctl.ClientRevenue)
	api.Get("/sessions/:id/stats", ctl.Stats)
	api.Get("/sessions/:id/report", ctl.Report)
}
