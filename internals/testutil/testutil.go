// file: internals/testutil/testutil.go
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	alertModel "formationhub_backend/internals/features/sessions/alerts/model"
	groupModel "formationhub_backend/internals/features/sessions/groups/model"
	sessModel "formationhub_backend/internals/features/sessions/sessions/model"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
)

// SetupTestDB opens a private in-memory database and migrates the engine
// schema. Each call gets a fresh database, so tests stay independent.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&sessModel.SessionModel{},
		&groupModel.GroupModel{},
		&traineeModel.EnrollmentModel{},
		&alertModel.AlertModel{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *gorm.DB
	t  *testing.T
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

func (f *Fixtures) DB() *gorm.DB { return f.db }

// CreateSession creates a session starting 30 days out with the given
// capacity thresholds.
func (f *Fixtures) CreateSession(min, max int) sessModel.SessionModel {
	f.t.Helper()

	sess := sessModel.SessionModel{
		ID:              uuid.New(),
		Title:           "Habilitation électrique B1V",
		MinParticipants: min,
		MaxParticipants: max,
		StartDate:       time.Now().Add(30 * 24 * time.Hour),
	}
	if err := f.db.Create(&sess).Error; err != nil {
		f.t.Fatalf("create session fixture: %v", err)
	}
	return sess
}

// CreateSessionStarting is CreateSession with an explicit start date.
func (f *Fixtures) CreateSessionStarting(min, max int, start time.Time) sessModel.SessionModel {
	f.t.Helper()

	sess := f.CreateSession(min, max)
	if err := f.db.Model(&sessModel.SessionModel{}).
		Where("id = ?", sess.ID).
		Update("start_date", start).Error; err != nil {
		f.t.Fatalf("set session start date: %v", err)
	}
	sess.StartDate = start
	return sess
}

// CreateGroup reserves a block of seats for a fresh client company.
func (f *Fixtures) CreateGroup(sessionID uuid.UUID, nbPersonnes int, pricePerPerson float64) groupModel.GroupModel {
	f.t.Helper()

	grp := groupModel.GroupModel{
		ID:             uuid.New(),
		SessionID:      sessionID,
		ClientID:       uuid.New(),
		Reference:      "GRP" + uuid.New().String()[:8],
		NbPersonnes:    nbPersonnes,
		PricePerPerson: pricePerPerson,
		PriceTotal:     float64(nbPersonnes) * pricePerPerson,
		Status:         groupModel.GroupPending,
		PaymentStatus:  groupModel.PaymentPending,
	}
	if err := f.db.Create(&grp).Error; err != nil {
		f.t.Fatalf("create group fixture: %v", err)
	}
	return grp
}

// CreateEnrollment enrolls a fresh trainee with the given status, unattached
// to any group.
func (f *Fixtures) CreateEnrollment(sessionID uuid.UUID, status traineeModel.TraineeStatus) traineeModel.EnrollmentModel {
	f.t.Helper()

	enr := traineeModel.EnrollmentModel{
		ID:            uuid.New(),
		SessionID:     sessionID,
		TraineeID:     uuid.New(),
		TraineeStatus: status,
	}
	if err := f.db.Create(&enr).Error; err != nil {
		f.t.Fatalf("create enrollment fixture: %v", err)
	}
	return enr
}

// CreateGroupEnrollment enrolls a fresh trainee attached to a group.
func (f *Fixtures) CreateGroupEnrollment(sessionID, groupID uuid.UUID, status traineeModel.TraineeStatus) traineeModel.EnrollmentModel {
	f.t.Helper()

	enr := traineeModel.EnrollmentModel{
		ID:            uuid.New(),
		SessionID:     sessionID,
		TraineeID:     uuid.New(),
		GroupID:       &groupID,
		TraineeStatus: status,
	}
	if err := f.db.Create(&enr).Error; err != nil {
		f.t.Fatalf("create group enrollment fixture: %v", err)
	}
	return enr
}

// SetPayment updates a group's payment status directly.
func (f *Fixtures) SetPayment(groupID uuid.UUID, status groupModel.PaymentStatus) {
	f.t.Helper()

	if err := f.db.Model(&groupModel.GroupModel{}).
		Where("id = ?", groupID).
		Update("payment_status", status).Error; err != nil {
		f.t.Fatalf("set payment status: %v", err)
	}
}
