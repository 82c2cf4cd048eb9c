// file: internals/features/sessions/alerts/service/alert_service.go
package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	alertModel "formationhub_backend/internals/features/sessions/alerts/model"
	"formationhub_backend/internals/features/sessions/engine"
	groupModel "formationhub_backend/internals/features/sessions/groups/model"
	sessModel "formationhub_backend/internals/features/sessions/sessions/model"
	sessService "formationhub_backend/internals/features/sessions/sessions/service"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
	helper "formationhub_backend/internals/helpers"
)

const sessionSoonDays = 7

// AlertService synthesizes and retires operational alerts. Invoked by an
// external timer or on demand; every run re-reads current state, so repeated
// runs with no state change create nothing.
type AlertService struct {
	DB       *gorm.DB
	Capacity *sessService.CapacityService
}

func NewAlertService(db *gorm.DB, capacity *sessService.CapacityService) *AlertService {
	return &AlertService{DB: db, Capacity: capacity}
}

/* ===============================
   Check & create
=================================*/

type CheckResult struct {
	Created []alertModel.AlertType `json:"created"`
}

// CheckAndCreate evaluates every alert condition in order and creates one
// pending alert per triggered type that does not already have one. The
// pending partial-unique index backs the idempotence; a 23505 from a
// concurrent run is treated as "already exists".
func (s *AlertService) CheckAndCreate(sessionID uuid.UUID) (CheckResult, *engine.Error) {
	var sess sessModel.SessionModel
	if err := s.DB.Where("id = ?", sessionID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CheckResult{}, engine.NotFound("session not found")
		}
		return CheckResult{}, engine.Persistence("failed to load session", err)
	}

	res := CheckResult{Created: []alertModel.AlertType{}}

	// 1) minimum not reached
	minCheck, eerr := s.Capacity.CheckMin(sessionID, nil)
	if eerr != nil {
		return res, eerr
	}
	if !minCheck.Valid {
		msg := fmt.Sprintf("Minimum not reached: %d/%d participants, %d missing",
			minCheck.Current, minCheck.Required, minCheck.Missing)
		s.createIfAbsent(&res, sessionID, alertModel.AlertMinNotReached, msg)
	}

	// 2) confirmed groups with outstanding payment
	var payRow struct {
		Count int64
		Sum   float64
	}
	if err := s.DB.Model(&groupModel.GroupModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(price_total), 0) AS sum").
		Where("session_id = ?", sessionID).
		Where("status = ?", groupModel.GroupConfirmed).
		Where("payment_status <> ?", groupModel.PaymentConfirmed).
		Scan(&payRow).Error; err != nil {
		return res, engine.Persistence("failed to scan pending payments", err)
	}
	if payRow.Count > 0 {
		msg := fmt.Sprintf("%d confirmed group(s) awaiting payment, %.2f EUR outstanding",
			payRow.Count, payRow.Sum)
		s.createIfAbsent(&res, sessionID, alertModel.AlertPendingPayments, msg)
	}

	// 3) confirmed/convoked trainees without completed info
	var missing int64
	if err := s.DB.Model(&traineeModel.EnrollmentModel{}).
		Where("session_id = ?", sessionID).
		Where("trainee_status IN ?", []traineeModel.TraineeStatus{
			traineeModel.TraineeConfirmed, traineeModel.TraineeConvoked,
		}).
		Where("info_completed_at IS NULL").
		Count(&missing).Error; err != nil {
		return res, engine.Persistence("failed to count missing infos", err)
	}
	if missing > 0 {
		msg := fmt.Sprintf("%d trainee(s) have not completed their information", missing)
		s.createIfAbsent(&res, sessionID, alertModel.AlertMissingInfos, msg)
	}

	// 4) session starting soon. Duration comparison: a truncated day count
	// would let anything under 8 days pass the <= 7 bound.
	until := time.Until(sess.StartDate)
	if until > 0 && until <= sessionSoonDays*24*time.Hour {
		msg := fmt.Sprintf("Session %q starts in %d day(s)", sess.Title, int(until.Hours()/24))
		s.createIfAbsent(&res, sessionID, alertModel.AlertSessionSoon, msg)
	}

	return res, nil
}

func (s *AlertService) createIfAbsent(res *CheckResult, sessionID uuid.UUID, typ alertModel.AlertType, msg string) {
	var existing int64
	if err := s.DB.Model(&alertModel.AlertModel{}).
		Where("session_id = ? AND alert_type = ? AND status = ?",
			sessionID, typ, alertModel.AlertPending).
		Count(&existing).Error; err != nil {
		log.Printf("[ALERTS] check existing %s: %v", typ, err)
		return
	}
	if existing > 0 {
		return
	}

	alert := alertModel.AlertModel{
		ID:        uuid.New(),
		SessionID: sessionID,
		AlertType: typ,
		Message:   msg,
		Status:    alertModel.AlertPending,
	}
	if err := s.DB.Create(&alert).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return // concurrent run created it first
		}
		log.Printf("[ALERTS] create %s: %v", typ, err)
		return
	}
	res.Created = append(res.Created, typ)
}

/* ===============================
   Resolve / dismiss / cleanup
=================================*/

// Resolve stamps resolved_at and keeps the row for history.
func (s *AlertService) Resolve(alertID uuid.UUID) (*alertModel.AlertModel, *engine.Error) {
	var alert alertModel.AlertModel
	if err := s.DB.Where("id = ?", alertID).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NotFound("alert not found")
		}
		return nil, engine.Persistence("failed to load alert", err)
	}

	now := time.Now()
	if err := s.DB.Model(&alertModel.AlertModel{}).
		Where("id = ?", alertID).
		Updates(map[string]any{
			"status":      alertModel.AlertResolved,
			"resolved_at": now,
		}).Error; err != nil {
		return nil, engine.Persistence("failed to resolve alert", err)
	}
	alert.Status = alertModel.AlertResolved
	alert.ResolvedAt = &now
	return &alert, nil
}

// Dismiss deletes the row outright.
func (s *AlertService) Dismiss(alertID uuid.UUID) *engine.Error {
	res := s.DB.Where("id = ?", alertID).Delete(&alertModel.AlertModel{})
	if res.Error != nil {
		return engine.Persistence("failed to dismiss alert", res.Error)
	}
	if res.RowsAffected == 0 {
		return engine.NotFound("alert not found")
	}
	return nil
}

// Cleanup garbage-collects stale pending alerts: each one whose triggering
// condition no longer holds is deleted.
func (s *AlertService) Cleanup(sessionID uuid.UUID) (int, *engine.Error) {
	var pending []alertModel.AlertModel
	if err := s.DB.
		Where("session_id = ? AND status = ?", sessionID, alertModel.AlertPending).
		Find(&pending).Error; err != nil {
		return 0, engine.Persistence("failed to list pending alerts", err)
	}

	removed := 0
	for _, alert := range pending {
		stale, eerr := s.conditionCleared(sessionID, alert.AlertType)
		if eerr != nil {
			return removed, eerr
		}
		if !stale {
			continue
		}
		if err := s.DB.Where("id = ?", alert.ID).Delete(&alertModel.AlertModel{}).Error; err != nil {
			return removed, engine.Persistence("failed to delete stale alert", err)
		}
		removed++
	}
	return removed, nil
}

func (s *AlertService) conditionCleared(sessionID uuid.UUID, typ alertModel.AlertType) (bool, *engine.Error) {
	switch typ {
	case alertModel.AlertMinNotReached:
		check, eerr := s.Capacity.CheckMin(sessionID, nil)
		if eerr != nil {
			return false, eerr
		}
		return check.Valid, nil

	case alertModel.AlertMaxReached:
		check, eerr := s.Capacity.CheckMax(sessionID, nil)
		if eerr != nil {
			return false, eerr
		}
		return check.CanAdd, nil

	case alertModel.AlertPendingPayments:
		var count int64
		if err := s.DB.Model(&groupModel.GroupModel{}).
			Where("session_id = ?", sessionID).
			Where("status = ?", groupModel.GroupConfirmed).
			Where("payment_status <> ?", groupModel.PaymentConfirmed).
			Count(&count).Error; err != nil {
			return false, engine.Persistence("failed to count pending payments", err)
		}
		return count == 0, nil

	case alertModel.AlertMissingInfos:
		var count int64
		if err := s.DB.Model(&traineeModel.EnrollmentModel{}).
			Where("session_id = ?", sessionID).
			Where("trainee_status IN ?", []traineeModel.TraineeStatus{
				traineeModel.TraineeConfirmed, traineeModel.TraineeConvoked,
			}).
			Where("info_completed_at IS NULL").
			Count(&count).Error; err != nil {
			return false, engine.Persistence("failed to count missing infos", err)
		}
		return count == 0, nil

	case alertModel.AlertSessionSoon:
		var sess sessModel.SessionModel
		if err := s.DB.Where("id = ?", sessionID).First(&sess).Error; err != nil {
			return false, engine.Persistence("failed to load session", err)
		}
		until := time.Until(sess.StartDate)
		inWindow := until > 0 && until <= sessionSoonDays*24*time.Hour
		return !inWindow, nil

	default:
		// convocation_due has no automatic condition; it is staff-managed.
		return false, nil
	}
}

/* ===============================
   Reads
=================================*/

func (s *AlertService) List(sessionID uuid.UUID, limit, offset int) ([]alertModel.AlertModel, int64, *engine.Error) {
	var total int64
	if err := s.DB.Model(&alertModel.AlertModel{}).
		Where("session_id = ?", sessionID).
		Count(&total).Error; err != nil {
		return nil, 0, engine.Persistence("failed to count alerts", err)
	}

	var alerts []alertModel.AlertModel
	if err := s.DB.
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&alerts).Error; err != nil {
		return nil, 0, engine.Persistence("failed to list alerts", err)
	}
	return alerts, total, nil
}

type TypeSummary struct {
	Pending  int `json:"pending"`
	Resolved int `json:"resolved"`
}

// Summary: per-type pending/resolved counts.
func (s *AlertService) Summary(sessionID uuid.UUID) (map[alertModel.AlertType]TypeSummary, *engine.Error) {
	var rows []struct {
		AlertType alertModel.AlertType
		Status    alertModel.AlertStatus
		Count     int
	}
	if err := s.DB.Model(&alertModel.AlertModel{}).
		Select("alert_type, status, COUNT(*) AS count").
		Where("session_id = ?", sessionID).
		Group("alert_type, status").
		Scan(&rows).Error; err != nil {
		return nil, engine.Persistence("failed to summarize alerts", err)
	}

	summary := map[alertModel.AlertType]TypeSummary{}
	for _, row := range rows {
		ts := summary[row.AlertType]
		switch row.Status {
		case alertModel.AlertPending:
			ts.Pending += row.Count
		case alertModel.AlertResolved:
			ts.Resolved += row.Count
		}
		summary[row.AlertType] = ts
	}
	return summary, nil
}
