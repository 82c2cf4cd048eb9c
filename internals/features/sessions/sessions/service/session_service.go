// file: internals/features/sessions/sessions/service/session_service.go
package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/engine"
	sessModel "formationhub_backend/internals/features/sessions/sessions/model"
)

// SessionService is the minimal owner surface: sessions belong to the
// scheduling subsystem, the engine only needs create/read to operate.
type SessionService struct {
	DB  *gorm.DB
	Cfg engine.Config
}

func NewSessionService(db *gorm.DB, cfg engine.Config) *SessionService {
	return &SessionService{DB: db, Cfg: cfg}
}

func (s *SessionService) Create(title string, min, max *int, startDate time.Time) (*sessModel.SessionModel, *engine.Error) {
	minP := s.Cfg.DefaultMinParticipants
	maxP := s.Cfg.DefaultMaxParticipants
	if min != nil {
		minP = *min
	}
	if max != nil {
		maxP = *max
	}
	if minP < 0 || maxP < 1 || minP > maxP {
		return nil, engine.Validation("invalid thresholds").
			WithDetail("min", minP).WithDetail("max", maxP)
	}

	sess := sessModel.SessionModel{
		ID:              uuid.New(),
		Title:           title,
		MinParticipants: minP,
		MaxParticipants: maxP,
		StartDate:       startDate,
	}
	if err := s.DB.Create(&sess).Error; err != nil {
		return nil, engine.Persistence("failed to create session", err)
	}
	return &sess, nil
}

func (s *SessionService) Get(sessionID uuid.UUID) (*sessModel.SessionModel, *engine.Error) {
	var sess sessModel.SessionModel
	if err := s.DB.Where("id = ?", sessionID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NotFound("session not found")
		}
		return nil, engine.Persistence("failed to load session", err)
	}
	return &sess, nil
}
