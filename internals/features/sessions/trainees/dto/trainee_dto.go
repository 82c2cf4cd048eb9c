// file: internals/features/sessions/trainees/dto/trainee_dto.go
package dto

import "github.com/google/uuid"

type StatusChangeRequest struct {
	Status string `json:"status" validate:"required,oneof=registered confirmed convoked info_completed present certified cancelled"`
}

type BulkStatusRequest struct {
	EnrollmentIDs []uuid.UUID `json:"enrollment_ids" validate:"required,min=1"`
	Status        string      `json:"status" validate:"required,oneof=registered confirmed convoked info_completed present certified cancelled"`
}

type PresenceRequest struct {
	TraineeIDs []uuid.UUID `json:"trainee_ids" validate:"required,min=1"`
}

type VerifyCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}
