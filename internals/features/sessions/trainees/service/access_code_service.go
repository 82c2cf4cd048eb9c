// file: internals/features/sessions/trainees/service/access_code_service.go
package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"formationhub_backend/internals/features/sessions/engine"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
	helper "formationhub_backend/internals/helpers"
)

const accessCodeLength = 6

// AccessCodeService issues and verifies the 6-digit portal access codes.
//
// Credential states per enrollment: unissued -> issued -> verified (resets
// attempts); issued/verified -> failing(k) -> locked(expires) -> issued again
// on the next IssueCode. A locked credential can be re-issued (administrative
// override) but not verified until the lock expires or a fresh code lands.
type AccessCodeService struct {
	DB  *gorm.DB
	Cfg engine.Config
}

func NewAccessCodeService(db *gorm.DB, cfg engine.Config) *AccessCodeService {
	return &AccessCodeService{DB: db, Cfg: cfg}
}

/* ===============================
   Issue
=================================*/

// IssueCode draws a session-unique 6-digit code for the trainee. Uniqueness
// is guarded by the (session_id, access_code) unique index: a 23505 on write
// is the collision signal, retried up to Cfg.CodeMaxRetries. Issuing also
// clears any prior lockout.
func (s *AccessCodeService) IssueCode(sessionID, traineeID uuid.UUID) (string, *engine.Error) {
	var enr traineeModel.EnrollmentModel
	if err := s.DB.
		Where("session_id = ? AND trainee_id = ?", sessionID, traineeID).
		First(&enr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", engine.NotFound("enrollment not found")
		}
		return "", engine.Persistence("failed to load enrollment", err)
	}

	for attempt := 0; attempt < s.Cfg.CodeMaxRetries; attempt++ {
		code, err := helper.NumericCode(accessCodeLength)
		if err != nil {
			return "", engine.Persistence("failed to draw code", err)
		}

		now := time.Now()
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Model(&traineeModel.EnrollmentModel{}).
				Where("id = ?", enr.ID).
				Updates(map[string]any{
					"access_code":       code,
					"code_generated_at": now,
					"failed_attempts":   0,
					"locked_until":      nil,
				}).Error
		})
		if err == nil {
			return code, nil
		}
		if helper.IsDuplicateKey(err) {
			log.Printf("[ISSUE_CODE] collision on session=%s attempt=%d", sessionID, attempt+1)
			continue
		}
		return "", engine.Persistence("failed to store access code", err)
	}

	return "", engine.Conflict(
		fmt.Sprintf("could not generate a unique code after %d attempts", s.Cfg.CodeMaxRetries))
}

// BatchResult reports a batch issue: per-enrollment failures are collected,
// never fatal to the batch.
type BatchResult struct {
	Generated int              `json:"generated"`
	Errors    []BatchCodeError `json:"errors,omitempty"`
}

type BatchCodeError struct {
	TraineeID uuid.UUID `json:"trainee_id"`
	Message   string    `json:"message"`
}

// IssueAllMissing issues codes for every enrollment in the session that has
// none yet.
func (s *AccessCodeService) IssueAllMissing(sessionID uuid.UUID) (BatchResult, *engine.Error) {
	var pending []traineeModel.EnrollmentModel
	if err := s.DB.
		Where("session_id = ? AND access_code IS NULL", sessionID).
		Where("trainee_status <> ?", traineeModel.TraineeCancelled).
		Find(&pending).Error; err != nil {
		return BatchResult{}, engine.Persistence("failed to list enrollments", err)
	}

	var res BatchResult
	for _, enr := range pending {
		if _, eerr := s.IssueCode(sessionID, enr.TraineeID); eerr != nil {
			res.Errors = append(res.Errors, BatchCodeError{
				TraineeID: enr.TraineeID,
				Message:   eerr.Message,
			})
			continue
		}
		res.Generated++
	}
	return res, nil
}

/* ===============================
   Verify + lockout
=================================*/

type VerifyResult struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	TraineeID    uuid.UUID `json:"trainee_id"`
}

// Verify looks up the enrollment by (session_id, access_code). A live lock
// fails without touching counters; success resets failed_attempts. A
// non-matching code fails without mutating state by itself; callers route
// wrong submissions through RecordFailedAttempt.
func (s *AccessCodeService) Verify(sessionID uuid.UUID, code string) (VerifyResult, *engine.Error) {
	var enr traineeModel.EnrollmentModel
	if err := s.DB.
		Where("session_id = ? AND access_code = ?", sessionID, code).
		First(&enr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VerifyResult{}, engine.NotFound("invalid code")
		}
		return VerifyResult{}, engine.Persistence("failed to look up code", err)
	}

	if enr.LockedUntil != nil && enr.LockedUntil.After(time.Now()) {
		return VerifyResult{}, engine.Lockout("access temporarily locked", *enr.LockedUntil)
	}

	// Successful entry clears history.
	if err := s.DB.Model(&traineeModel.EnrollmentModel{}).
		Where("id = ?", enr.ID).
		Updates(map[string]any{
			"failed_attempts": 0,
			"locked_until":    nil,
		}).Error; err != nil {
		return VerifyResult{}, engine.Persistence("failed to reset attempts", err)
	}

	return VerifyResult{EnrollmentID: enr.ID, TraineeID: enr.TraineeID}, nil
}

type FailedAttemptResult struct {
	Locked      bool       `json:"locked"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// RecordFailedAttempt bumps the counter for the enrollment matching the
// submitted code. The increment is one atomic UPDATE; the lock decision is
// computed from the row that update returns, so two concurrent wrong
// submissions cannot both observe the same counter. An unknown code is a
// silent no-op so the endpoint does not leak which codes exist.
func (s *AccessCodeService) RecordFailedAttempt(sessionID uuid.UUID, code string) (FailedAttemptResult, *engine.Error) {
	var updated traineeModel.EnrollmentModel
	res := s.DB.Model(&updated).
		Clauses(clause.Returning{}).
		Where("session_id = ? AND access_code = ?", sessionID, code).
		Update("failed_attempts", gorm.Expr("failed_attempts + 1"))
	if res.Error != nil {
		return FailedAttemptResult{}, engine.Persistence("failed to record attempt", res.Error)
	}
	if res.RowsAffected == 0 {
		return FailedAttemptResult{Locked: false}, nil
	}

	// Drivers without RETURNING support leave the struct empty; re-read.
	if updated.ID == uuid.Nil {
		if err := s.DB.
			Where("session_id = ? AND access_code = ?", sessionID, code).
			First(&updated).Error; err != nil {
			return FailedAttemptResult{}, engine.Persistence("failed to reload enrollment", err)
		}
	}

	if updated.FailedAttempts < s.Cfg.LockoutThreshold {
		return FailedAttemptResult{Locked: false}, nil
	}

	until := time.Now().Add(s.Cfg.LockoutDuration)
	if err := s.DB.Model(&traineeModel.EnrollmentModel{}).
		Where("id = ?", updated.ID).
		Update("locked_until", until).Error; err != nil {
		return FailedAttemptResult{}, engine.Persistence("failed to set lock", err)
	}
	return FailedAttemptResult{Locked: true, LockedUntil: &until}, nil
}

// VerifyForTrainee is the portal entry flow: the trainee opens their
// enrollment-scoped link and submits a code. A wrong submission counts
// against that enrollment's credential; the response does not reveal whether
// any other code exists.
func (s *AccessCodeService) VerifyForTrainee(sessionID, traineeID uuid.UUID, code string) (VerifyResult, *engine.Error) {
	var enr traineeModel.EnrollmentModel
	if err := s.DB.
		Where("session_id = ? AND trainee_id = ?", sessionID, traineeID).
		First(&enr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VerifyResult{}, engine.NotFound("enrollment not found")
		}
		return VerifyResult{}, engine.Persistence("failed to load enrollment", err)
	}

	if enr.LockedUntil != nil && enr.LockedUntil.After(time.Now()) {
		return VerifyResult{}, engine.Lockout("access temporarily locked", *enr.LockedUntil)
	}

	if enr.AccessCode != nil && *enr.AccessCode == code {
		return s.Verify(sessionID, code)
	}

	if enr.AccessCode != nil {
		attempt, aerr := s.RecordFailedAttempt(sessionID, *enr.AccessCode)
		if aerr != nil {
			return VerifyResult{}, aerr
		}
		if attempt.Locked {
			return VerifyResult{}, engine.Lockout("too many failed attempts", *attempt.LockedUntil)
		}
	}
	return VerifyResult{}, engine.NotFound("invalid code")
}
