// file: internals/features/sessions/sessions/service/capacity_service.go
package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/engine"
	sessModel "formationhub_backend/internals/features/sessions/sessions/model"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
	helper "formationhub_backend/internals/helpers"
)

// CapacityService guards the session-wide min/max participant thresholds.
type CapacityService struct {
	DB *gorm.DB
}

func NewCapacityService(db *gorm.DB) *CapacityService { return &CapacityService{DB: db} }

func (s *CapacityService) db(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.DB
}

/* ===============================
   Check results
=================================*/

type MinCheck struct {
	Valid    bool `json:"valid"`
	Current  int  `json:"current"`
	Required int  `json:"required"`
	Missing  int  `json:"missing"`
}

type MaxCheck struct {
	CanAdd    bool `json:"can_add"`
	Current   int  `json:"current"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
}

type AddCheck struct {
	CanAdd      bool `json:"can_add"`
	Remaining   int  `json:"remaining"`
	WouldExceed bool `json:"would_exceed"`
}

/* ===============================
   Operations
=================================*/

// CheckMin compares the confirmed headcount to min_participants.
func (s *CapacityService) CheckMin(sessionID uuid.UUID, tx *gorm.DB) (MinCheck, *engine.Error) {
	db := s.db(tx)

	sess, eerr := s.loadSession(db, sessionID)
	if eerr != nil {
		return MinCheck{}, eerr
	}

	current, eerr := s.countByStatus(db, sessionID, "trainee_status = ?", traineeModel.TraineeConfirmed)
	if eerr != nil {
		return MinCheck{}, eerr
	}

	missing := sess.MinParticipants - current
	if missing < 0 {
		missing = 0
	}
	return MinCheck{
		Valid:    current >= sess.MinParticipants,
		Current:  current,
		Required: sess.MinParticipants,
		Missing:  missing,
	}, nil
}

// CheckMax compares the non-cancelled headcount to max_participants.
func (s *CapacityService) CheckMax(sessionID uuid.UUID, tx *gorm.DB) (MaxCheck, *engine.Error) {
	db := s.db(tx)

	sess, eerr := s.loadSession(db, sessionID)
	if eerr != nil {
		return MaxCheck{}, eerr
	}

	current, eerr := s.countByStatus(db, sessionID, "trainee_status <> ?", traineeModel.TraineeCancelled)
	if eerr != nil {
		return MaxCheck{}, eerr
	}

	remaining := sess.MaxParticipants - current
	if remaining < 0 {
		remaining = 0
	}
	return MaxCheck{
		CanAdd:    current < sess.MaxParticipants,
		Current:   current,
		Limit:     sess.MaxParticipants,
		Remaining: remaining,
	}, nil
}

// CanAdd composes CheckMax for a prospective bulk addition of n trainees.
func (s *CapacityService) CanAdd(sessionID uuid.UUID, n int, tx *gorm.DB) (AddCheck, *engine.Error) {
	if n < 1 {
		return AddCheck{}, engine.Validation("n must be >= 1")
	}
	maxCheck, eerr := s.CheckMax(sessionID, tx)
	if eerr != nil {
		return AddCheck{}, eerr
	}
	return AddCheck{
		CanAdd:      n <= maxCheck.Remaining,
		Remaining:   maxCheck.Remaining,
		WouldExceed: n > maxCheck.Remaining,
	}, nil
}

// SetThresholds updates min/max. A max shrink below the current non-cancelled
// enrollment count is rejected; the check and the write share one transaction
// with the session row locked.
func (s *CapacityService) SetThresholds(sessionID uuid.UUID, min, max *int) (*sessModel.SessionModel, *engine.Error) {
	if min == nil && max == nil {
		return nil, engine.Validation("nothing to update")
	}

	var out sessModel.SessionModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var sess sessModel.SessionModel
		if err := helper.LockForUpdate(tx).
			Where("id = ?", sessionID).
			First(&sess).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return engine.NotFound("session not found")
			}
			return engine.Persistence("failed to load session", err)
		}

		newMin := sess.MinParticipants
		newMax := sess.MaxParticipants
		if min != nil {
			newMin = *min
		}
		if max != nil {
			newMax = *max
		}
		if newMin < 0 || newMax < 1 || newMin > newMax {
			return engine.Validation("invalid thresholds").
				WithDetail("min", newMin).WithDetail("max", newMax)
		}

		if max != nil {
			var current int64
			if err := tx.Model(&traineeModel.EnrollmentModel{}).
				Where("session_id = ?", sessionID).
				Where("trainee_status <> ?", traineeModel.TraineeCancelled).
				Count(&current).Error; err != nil {
				return engine.Persistence("failed to count enrollments", err)
			}
			if int64(newMax) < current {
				return engine.Validation(
					fmt.Sprintf("cannot lower max to %d: %d trainees already enrolled", newMax, current)).
					WithDetail("current", current).WithDetail("requested_max", newMax)
			}
		}

		if err := tx.Model(&sessModel.SessionModel{}).
			Where("id = ?", sessionID).
			Updates(map[string]any{
				"min_participants": newMin,
				"max_participants": newMax,
			}).Error; err != nil {
			return engine.Persistence("failed to update thresholds", err)
		}

		sess.MinParticipants = newMin
		sess.MaxParticipants = newMax
		out = sess
		return nil
	})
	if err != nil {
		return nil, asEngineErr(err)
	}
	return &out, nil
}

/* ===============================
   Internals
=================================*/

func (s *CapacityService) loadSession(db *gorm.DB, sessionID uuid.UUID) (*sessModel.SessionModel, *engine.Error) {
	var sess sessModel.SessionModel
	if err := db.Where("id = ?", sessionID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NotFound("session not found")
		}
		return nil, engine.Persistence("failed to load session", err)
	}
	return &sess, nil
}

func (s *CapacityService) countByStatus(db *gorm.DB, sessionID uuid.UUID, cond string, arg any) (int, *engine.Error) {
	var count int64
	if err := db.Model(&traineeModel.EnrollmentModel{}).
		Where("session_id = ?", sessionID).
		Where(cond, arg).
		Count(&count).Error; err != nil {
		return 0, engine.Persistence("failed to count enrollments", err)
	}
	return int(count), nil
}

func asEngineErr(err error) *engine.Error {
	var ee *engine.Error
	if errors.As(err, &ee) {
		return ee
	}
	return engine.Persistence("transaction failed", err)
}
