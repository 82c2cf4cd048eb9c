// file: internals/features/sessions/trainees/service/lifecycle_service.go
package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/engine"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
	helper "formationhub_backend/internals/helpers"
)

// ConvocationJob is handed to the notifier after a trainee is convoked.
// Delivery is fire-and-forget: the transition is committed before the
// notifier runs and does not depend on its outcome.
type ConvocationJob struct {
	SessionID    uuid.UUID
	SessionTitle string
	StartDate    time.Time
	TraineeID    uuid.UUID
	AccessCode   string
	PortalURL    string
}

type Notifier interface {
	ConvocationIssued(job ConvocationJob)
}

// LifecycleService drives the trainee enrollment status state machine.
type LifecycleService struct {
	DB       *gorm.DB
	Cfg      engine.Config
	Notifier Notifier
}

func NewLifecycleService(db *gorm.DB, cfg engine.Config, n Notifier) *LifecycleService {
	return &LifecycleService{DB: db, Cfg: cfg, Notifier: n}
}

func (s *LifecycleService) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.DB
}

/* ===============================
   Transition checks
=================================*/

type ChangeCheck struct {
	CanChange bool   `json:"can_change"`
	Reason    string `json:"reason,omitempty"`
}

// CanChangeStatus checks the transition table plus the side conditions
// (confirming requires a group assignment).
func (s *LifecycleService) CanChangeStatus(sessionID, traineeID uuid.UUID, target traineeModel.TraineeStatus, tx *gorm.DB) (ChangeCheck, *engine.Error) {
	db := s.db(tx)

	var enr traineeModel.EnrollmentModel
	if err := db.
		Where("session_id = ? AND trainee_id = ?", sessionID, traineeID).
		First(&enr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ChangeCheck{}, engine.NotFound("enrollment not found")
		}
		return ChangeCheck{}, engine.Persistence("failed to load enrollment", err)
	}

	return s.checkTransition(&enr, target), nil
}

func (s *LifecycleService) checkTransition(enr *traineeModel.EnrollmentModel, target traineeModel.TraineeStatus) ChangeCheck {
	if enr.TraineeStatus == target {
		return ChangeCheck{CanChange: false, Reason: "already in target status"}
	}
	if !traineeModel.CanTransition(enr.TraineeStatus, target) {
		return ChangeCheck{
			CanChange: false,
			Reason:    fmt.Sprintf("transition %s -> %s not allowed", enr.TraineeStatus, target),
		}
	}
	if target == traineeModel.TraineeConfirmed && enr.GroupID == nil {
		return ChangeCheck{CanChange: false, Reason: "trainee has no group"}
	}
	return ChangeCheck{CanChange: true}
}

/* ===============================
   Single transition
=================================*/

// SetStatus applies one transition, stamping the associated timestamp
// (convoked stamps convocation_sent_at, info_completed stamps
// info_completed_at). The whole check-then-write runs against a locked row.
func (s *LifecycleService) SetStatus(sessionID, traineeID uuid.UUID, target traineeModel.TraineeStatus) (*traineeModel.EnrollmentModel, *engine.Error) {
	var out traineeModel.EnrollmentModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var enr traineeModel.EnrollmentModel
		if err := helper.LockForUpdate(tx).
			Where("session_id = ? AND trainee_id = ?", sessionID, traineeID).
			First(&enr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return engine.NotFound("enrollment not found")
			}
			return engine.Persistence("failed to load enrollment", err)
		}

		check := s.checkTransition(&enr, target)
		if !check.CanChange {
			return engine.Validation(check.Reason).
				WithDetail("from", enr.TraineeStatus).WithDetail("to", target)
		}

		updates := transitionUpdates(&enr, target)
		if err := tx.Model(&traineeModel.EnrollmentModel{}).
			Where("id = ?", enr.ID).
			Updates(updates).Error; err != nil {
			return engine.Persistence("failed to update status", err)
		}

		if err := tx.Where("id = ?", enr.ID).First(&out).Error; err != nil {
			return engine.Persistence("failed to reload enrollment", err)
		}
		return nil
	})
	if err != nil {
		return nil, asEngineErr(err)
	}
	return &out, nil
}

func transitionUpdates(enr *traineeModel.EnrollmentModel, target traineeModel.TraineeStatus) map[string]any {
	updates := map[string]any{"trainee_status": target}
	now := time.Now()
	switch target {
	case traineeModel.TraineeConvoked:
		if enr.ConvocationSentAt == nil {
			updates["convocation_sent_at"] = now
		}
	case traineeModel.TraineeInfoCompleted:
		if enr.InfoCompletedAt == nil {
			updates["info_completed_at"] = now
		}
	}
	return updates
}

/* ===============================
   Bulk transitions
=================================*/

type BulkResult struct {
	Count   int         `json:"count"`
	Skipped []uuid.UUID `json:"skipped,omitempty"`
}

// SetStatusBulk applies a transition to a set of enrollments, committing
// per row. A crash mid-batch leaves a partially transitioned set; that is
// acceptable because re-running only touches rows not yet transitioned.
func (s *LifecycleService) SetStatusBulk(sessionID uuid.UUID, enrollmentIDs []uuid.UUID, target traineeModel.TraineeStatus) (BulkResult, *engine.Error) {
	var res BulkResult
	for _, id := range enrollmentIDs {
		var enr traineeModel.EnrollmentModel
		if err := s.DB.
			Where("id = ? AND session_id = ?", id, sessionID).
			First(&enr).Error; err != nil {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		if _, eerr := s.SetStatus(sessionID, enr.TraineeID, target); eerr != nil {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		res.Count++
	}
	return res, nil
}

// SendConvocations is the canonical bulk transition: every confirmed
// enrollment without a convocation stamp moves to convoked. Idempotent:
// a second run finds nothing left to transition. Each newly convoked trainee
// triggers a fire-and-forget notification after its row commits.
func (s *LifecycleService) SendConvocations(sessionID uuid.UUID, title string, startDate time.Time) (int, *engine.Error) {
	var pending []traineeModel.EnrollmentModel
	if err := s.DB.
		Where("session_id = ?", sessionID).
		Where("trainee_status = ?", traineeModel.TraineeConfirmed).
		Where("convocation_sent_at IS NULL").
		Find(&pending).Error; err != nil {
		return 0, engine.Persistence("failed to list confirmed enrollments", err)
	}

	count := 0
	for _, enr := range pending {
		now := time.Now()
		// Guarded update: only flips rows still in the source state, so a
		// concurrent or repeated run cannot double-transition.
		res := s.DB.Model(&traineeModel.EnrollmentModel{}).
			Where("id = ? AND trainee_status = ? AND convocation_sent_at IS NULL",
				enr.ID, traineeModel.TraineeConfirmed).
			Updates(map[string]any{
				"trainee_status":      traineeModel.TraineeConvoked,
				"convocation_sent_at": now,
			})
		if res.Error != nil {
			log.Printf("[CONVOCATIONS] session=%s enrollment=%s err=%v", sessionID, enr.ID, res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}
		count++

		if s.Notifier != nil {
			code := ""
			if enr.AccessCode != nil {
				code = *enr.AccessCode
			}
			s.Notifier.ConvocationIssued(ConvocationJob{
				SessionID:    sessionID,
				SessionTitle: title,
				StartDate:    startDate,
				TraineeID:    enr.TraineeID,
				AccessCode:   code,
				PortalURL:    fmt.Sprintf("%s/sessions/%s", s.Cfg.PortalBaseURL, sessionID),
			})
		}
	}
	return count, nil
}

// MarkPresent bulk-transitions trainees to present (attendance workflow).
func (s *LifecycleService) MarkPresent(sessionID uuid.UUID, traineeIDs []uuid.UUID) (BulkResult, *engine.Error) {
	var res BulkResult
	for _, traineeID := range traineeIDs {
		if _, eerr := s.SetStatus(sessionID, traineeID, traineeModel.TraineePresent); eerr != nil {
			log.Printf("[MARK_PRESENT] session=%s trainee=%s: %s", sessionID, traineeID, eerr.Message)
			continue
		}
		res.Count++
	}
	return res, nil
}

func asEngineErr(err error) *engine.Error {
	var ee *engine.Error
	if errors.As(err, &ee) {
		return ee
	}
	return engine.Persistence("transaction failed", err)
}
