// file: internals/features/sessions/trainees/model/enrollment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type TraineeStatus string

const (
	TraineeRegistered    TraineeStatus = "registered"
	TraineeConfirmed     TraineeStatus = "confirmed"
	TraineeConvoked      TraineeStatus = "convoked"
	TraineeInfoCompleted TraineeStatus = "info_completed"
	TraineePresent       TraineeStatus = "present"
	TraineeCertified     TraineeStatus = "certified"
	TraineeCancelled     TraineeStatus = "cancelled"
)

// EnrollmentModel is one trainee's membership in a session, optionally
// attached to a client group.
//
// access_code uniqueness is session-scoped; the composite unique index is the
// authoritative guard (the issue loop treats a 23505 as a collision signal).
type EnrollmentModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`

	SessionID uuid.UUID  `gorm:"type:uuid;not null;column:session_id;index:idx_trainees_session;uniqueIndex:uq_trainees_session_code" json:"session_id"`
	TraineeID uuid.UUID  `gorm:"type:uuid;not null;column:trainee_id;index:idx_trainees_trainee" json:"trainee_id"`
	GroupID   *uuid.UUID `gorm:"type:uuid;column:group_id;index:idx_trainees_group" json:"group_id,omitempty"`

	TraineeStatus TraineeStatus `gorm:"size:20;not null;default:'registered';column:trainee_status;index:idx_trainees_status" json:"trainee_status"`

	// Portal credential
	AccessCode      *string    `gorm:"size:6;column:access_code;uniqueIndex:uq_trainees_session_code" json:"access_code,omitempty"`
	CodeGeneratedAt *time.Time `gorm:"column:code_generated_at" json:"code_generated_at,omitempty"`
	FailedAttempts  int        `gorm:"not null;default:0;column:failed_attempts" json:"failed_attempts"`
	LockedUntil     *time.Time `gorm:"column:locked_until" json:"locked_until,omitempty"`

	// Lifecycle timestamps
	ConvocationSentAt *time.Time `gorm:"column:convocation_sent_at" json:"convocation_sent_at,omitempty"`
	InfoCompletedAt   *time.Time `gorm:"column:info_completed_at" json:"info_completed_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (EnrollmentModel) TableName() string { return "session_trainees" }

// AllowedTransitions is the explicit lifecycle table. No implicit edges:
// anything not listed is rejected.
var AllowedTransitions = map[TraineeStatus][]TraineeStatus{
	TraineeRegistered:    {TraineeConfirmed, TraineeCancelled},
	TraineeConfirmed:     {TraineeConvoked, TraineeCancelled},
	TraineeConvoked:      {TraineeInfoCompleted, TraineeCancelled},
	TraineeInfoCompleted: {TraineePresent, TraineeCancelled},
	TraineePresent:       {TraineeCertified},
	TraineeCertified:     {},
}

func CanTransition(from, to TraineeStatus) bool {
	for _, next := range AllowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
