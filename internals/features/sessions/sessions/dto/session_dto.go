// file: internals/features/sessions/sessions/dto/session_dto.go
package dto

import "time"

type SessionCreateRequest struct {
	Title           string    `json:"title" validate:"required,min=3,max=200"`
	MinParticipants *int      `json:"min_participants" validate:"omitempty,min=0"`
	MaxParticipants *int      `json:"max_participants" validate:"omitempty,min=1"`
	StartDate       time.Time `json:"start_date" validate:"required"`
}

type ThresholdsUpdateRequest struct {
	MinParticipants *int `json:"min_participants" validate:"omitempty,min=0"`
	MaxParticipants *int `json:"max_participants" validate:"omitempty,min=1"`
}
