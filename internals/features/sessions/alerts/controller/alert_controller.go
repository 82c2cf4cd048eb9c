// file: internals/features/sessions/alerts/controller/alert_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/alerts/service"
	sessService "formationhub_backend/internals/features/sessions/sessions/service"
	helper "formationhub_backend/internals/helpers"
)

type AlertController struct {
	DB     *gorm.DB
	Alerts *service.AlertService
}

func NewAlertController(db *gorm.DB, capacity *sessService.CapacityService) *AlertController {
	return &AlertController{DB: db, Alerts: service.NewAlertService(db, capacity)}
}

// POST /api/sessions/:id/alerts/check
func (ctl *AlertController) Check(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	res, eerr := ctl.Alerts.CheckAndCreate(sessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "Alert check complete", res)
}

// GET /api/sessions/:id/alerts
func (ctl *AlertController) List(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	alerts, total, eerr := ctl.Alerts.List(sessionID, p.Limit, p.Offset)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	pg := helper.BuildPagination(p.Page, p.PerPage, total)
	return helper.JsonList(c, "", alerts, &pg)
}

// GET /api/sessions/:id/alerts/summary
func (ctl *AlertController) Summary(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	summary, eerr := ctl.Alerts.Summary(sessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "", summary)
}

// POST /api/sessions/:id/alerts/cleanup
func (ctl *AlertController) Cleanup(c *fiber.Ctx) error {
	sessionID, err := parseUUID(c, "id", "invalid session id")
	if err != nil {
		return err
	}
	removed, eerr := ctl.Alerts.Cleanup(sessionID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonOK(c, "Stale alerts cleaned up", fiber.Map{"removed": removed})
}

// PATCH /api/alerts/:alert_id/resolve
func (ctl *AlertController) Resolve(c *fiber.Ctx) error {
	alertID, err := parseUUID(c, "alert_id", "invalid alert id")
	if err != nil {
		return err
	}
	alert, eerr := ctl.Alerts.Resolve(alertID)
	if eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonUpdated(c, "Alert resolved", alert)
}

// DELETE /api/alerts/:alert_id
func (ctl *AlertController) Dismiss(c *fiber.Ctx) error {
	alertID, err := parseUUID(c, "alert_id", "invalid alert id")
	if err != nil {
		return err
	}
	if eerr := ctl.Alerts.Dismiss(alertID); eerr != nil {
		return helper.JsonEngineError(c, eerr)
	}
	return helper.JsonDeleted(c, "Alert dismissed", fiber.Map{"alert_id": alertID})
}

func parseUUID(c *fiber.Ctx, param, msg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(param)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, helper.JsonError(c, fiber.StatusBadRequest, msg)
	}
	return id, nil
}
