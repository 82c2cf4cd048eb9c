// file: internals/features/sessions/sessions/service/session_service_test.go
package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"formationhub_backend/internals/features/sessions/engine"
	"formationhub_backend/internals/features/sessions/sessions/service"
	"formationhub_backend/internals/testutil"
)

func TestCreateSession_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewSessionService(db, engine.DefaultConfig())

	sess, eerr := svc.Create("SST initiale", nil, nil, time.Now().Add(14*24*time.Hour))
	if eerr != nil {
		t.Fatalf("Create: %v", eerr)
	}
	if sess.MinParticipants != 4 || sess.MaxParticipants != 10 {
		t.Errorf("defaults: got min=%d max=%d, want 4/10", sess.MinParticipants, sess.MaxParticipants)
	}

	loaded, eerr := svc.Get(sess.ID)
	if eerr != nil {
		t.Fatalf("Get: %v", eerr)
	}
	if loaded.Title != "SST initiale" {
		t.Errorf("title = %q", loaded.Title)
	}
}

func TestCreateSession_ExplicitThresholds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewSessionService(db, engine.DefaultConfig())

	min, max := 6, 12
	sess, eerr := svc.Create("CACES R489", &min, &max, time.Now().Add(24*time.Hour))
	if eerr != nil {
		t.Fatalf("Create: %v", eerr)
	}
	if sess.MinParticipants != 6 || sess.MaxParticipants != 12 {
		t.Errorf("got min=%d max=%d, want 6/12", sess.MinParticipants, sess.MaxParticipants)
	}

	bad := 20
	if _, eerr := svc.Create("bad", &bad, &max, time.Now()); eerr == nil || eerr.Kind != engine.KindValidation {
		t.Errorf("min > max should fail, got %v", eerr)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewSessionService(db, engine.DefaultConfig())

	if _, eerr := svc.Get(uuid.New()); eerr == nil || eerr.Kind != engine.KindNotFound {
		t.Errorf("expected NOT_FOUND, got %v", eerr)
	}
}
