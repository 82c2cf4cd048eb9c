// file: internals/features/sessions/groups/dto/group_dto.go
package dto

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GroupCreateRequest struct {
	ClientID       uuid.UUID      `json:"client_id" validate:"required"`
	ContactID      *uuid.UUID     `json:"contact_id"`
	NbPersonnes    int            `json:"nb_personnes" validate:"required,min=1"`
	PricePerPerson float64        `json:"price_per_person" validate:"min=0"`
	Notes          datatypes.JSON `json:"notes"`
}

type GroupResizeRequest struct {
	NbPersonnes int `json:"nb_personnes" validate:"required,min=1"`
}

type GroupRepriceRequest struct {
	PricePerPerson float64 `json:"price_per_person" validate:"min=0"`
}

type GroupCancelRequest struct {
	Reason string `json:"reason"`
}

type AddTraineeRequest struct {
	TraineeID uuid.UUID `json:"trainee_id" validate:"required"`
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}
