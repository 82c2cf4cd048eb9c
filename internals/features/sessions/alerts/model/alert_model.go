// file: internals/features/sessions/alerts/model/alert_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertMinNotReached   AlertType = "min_not_reached"
	AlertMaxReached      AlertType = "max_reached"
	AlertPendingPayments AlertType = "pending_payments"
	AlertMissingInfos    AlertType = "missing_infos"
	AlertConvocationDue  AlertType = "convocation_due"
	AlertSessionSoon     AlertType = "session_soon"
)

type AlertStatus string

const (
	AlertPending  AlertStatus = "pending"
	AlertResolved AlertStatus = "resolved"
)

// AlertModel rows are created and destroyed exclusively by the reconciler.
// At most one pending alert per (session_id, alert_type); on Postgres the
// partial unique index below is the authoritative guard.
//
//	CREATE UNIQUE INDEX uq_alerts_pending ON session_alerts (session_id, alert_type)
//	WHERE status = 'pending';
type AlertModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`

	SessionID uuid.UUID `gorm:"type:uuid;not null;column:session_id;index:idx_alerts_session" json:"session_id"`

	AlertType AlertType   `gorm:"size:30;not null;column:alert_type" json:"alert_type"`
	Message   string      `gorm:"type:text;not null;column:message" json:"message"`
	Status    AlertStatus `gorm:"size:10;not null;default:'pending';column:status;index:idx_alerts_status" json:"status"`

	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
}

func (AlertModel) TableName() string { return "session_alerts" }
