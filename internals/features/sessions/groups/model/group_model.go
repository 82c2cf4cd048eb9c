// file: internals/features/sessions/groups/model/group_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GroupStatus string

const (
	GroupPending   GroupStatus = "pending"
	GroupConfirmed GroupStatus = "confirmed"
	GroupCancelled GroupStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentConfirmed PaymentStatus = "confirmed"
)

// GroupModel is one client company's reserved block of seats in a session.
// price_total is always derived server-side (nb_personnes * price_per_person),
// never trusted from a caller.
type GroupModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`

	SessionID uuid.UUID  `gorm:"type:uuid;not null;column:session_id;index:idx_groups_session" json:"session_id"`
	ClientID  uuid.UUID  `gorm:"type:uuid;not null;column:client_id;index:idx_groups_client" json:"client_id"`
	ContactID *uuid.UUID `gorm:"type:uuid;column:contact_id" json:"contact_id,omitempty"`

	// Human-facing reference number (alphanumeric, ambiguity-free alphabet)
	Reference string `gorm:"size:12;not null;column:reference;uniqueIndex:uq_groups_reference" json:"reference"`

	NbPersonnes    int     `gorm:"not null;column:nb_personnes" json:"nb_personnes"`
	PricePerPerson float64 `gorm:"not null;column:price_per_person" json:"price_per_person"`
	PriceTotal     float64 `gorm:"not null;column:price_total" json:"price_total"`

	Status        GroupStatus   `gorm:"size:20;not null;default:'pending';column:status;index:idx_groups_status" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null;default:'pending';column:payment_status" json:"payment_status"`

	Notes datatypes.JSON `gorm:"column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (GroupModel) TableName() string { return "session_groups" }
