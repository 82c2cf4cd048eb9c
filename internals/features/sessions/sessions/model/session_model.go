// file: internals/features/sessions/sessions/model/session_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel is an inter-enterprise session: one scheduled course delivery
// shared by several client companies. Sessions are owned by the scheduling
// subsystem; the engine only reads them and adjusts thresholds.
type SessionModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`

	Title string `gorm:"size:200;not null;column:title" json:"title"`

	// Capacity thresholds. Invariant: max_participants >= count of all
	// non-cancelled enrollments, enforced before any shrink.
	MinParticipants int `gorm:"not null;default:4;column:min_participants" json:"min_participants"`
	MaxParticipants int `gorm:"not null;default:10;column:max_participants" json:"max_participants"`

	StartDate time.Time `gorm:"not null;column:start_date" json:"start_date"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SessionModel) TableName() string { return "sessions" }
