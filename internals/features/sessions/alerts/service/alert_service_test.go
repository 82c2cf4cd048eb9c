// file: internals/features/sessions/alerts/service/alert_service_test.go
package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	alertModel "formationhub_backend/internals/features/sessions/alerts/model"
	"formationhub_backend/internals/features/sessions/alerts/service"
	"formationhub_backend/internals/features/sessions/engine"
	groupModel "formationhub_backend/internals/features/sessions/groups/model"
	sessService "formationhub_backend/internals/features/sessions/sessions/service"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
	"formationhub_backend/internals/testutil"
)

func newAlertService(t *testing.T) (*service.AlertService, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	return service.NewAlertService(db, sessService.NewCapacityService(db)), f
}

func hasType(types []alertModel.AlertType, typ alertModel.AlertType) bool {
	for _, t := range types {
		if t == typ {
			return true
		}
	}
	return false
}

func TestCheckAndCreate_MinNotReached(t *testing.T) {
	svc, f := newAlertService(t)

	sess := f.CreateSession(5, 10)
	f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)

	res, eerr := svc.CheckAndCreate(sess.ID)
	if eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}
	if !hasType(res.Created, alertModel.AlertMinNotReached) {
		t.Errorf("expected min_not_reached, got %v", res.Created)
	}

	alerts, total, eerr := svc.List(sess.ID, 50, 0)
	if eerr != nil {
		t.Fatalf("List: %v", eerr)
	}
	if total != 1 {
		t.Fatalf("expected total 1, got %d", total)
	}
	if len(alerts) != 1 || alerts[0].Status != alertModel.AlertPending {
		t.Fatalf("expected one pending alert, got %+v", alerts)
	}
	if alerts[0].Message == "" {
		t.Error("alert message empty")
	}
}

func TestCheckAndCreate_Idempotent(t *testing.T) {
	svc, f := newAlertService(t)

	sess := f.CreateSession(5, 10)

	first, eerr := svc.CheckAndCreate(sess.ID)
	if eerr != nil {
		t.Fatalf("first run: %v", eerr)
	}
	if len(first.Created) == 0 {
		t.Fatal("first run should create something")
	}

	second, eerr := svc.CheckAndCreate(sess.ID)
	if eerr != nil {
		t.Fatalf("second run: %v", eerr)
	}
	if len(second.Created) != 0 {
		t.Errorf("second run created %v, want nothing", second.Created)
	}
}

func TestCheckAndCreate_PendingPayments(t *testing.T) {
	svc, f := newAlertService(t)

	sess := f.CreateSession(0, 10)
	grp := f.CreateGroup(sess.ID, 3, 200)
	if err := f.DB().Model(&groupModel.GroupModel{}).
		Where("id = ?", grp.ID).
		Update("status", groupModel.GroupConfirmed).Error; err != nil {
		t.Fatalf("confirm group: %v", err)
	}

	res, eerr := svc.CheckAndCreate(sess.ID)
	if eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}
	if !hasType(res.Created, alertModel.AlertPendingPayments) {
		t.Errorf("expected pending_payments, got %v", res.Created)
	}
}

func TestCheckAndCreate_MissingInfos(t *testing.T) {
	svc, f := newAlertService(t)

	sess := f.CreateSession(0, 10)
	f.CreateEnrollment(sess.ID, traineeModel.TraineeConvoked)

	res, eerr := svc.CheckAndCreate(sess.ID)
	if eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}
	if !hasType(res.Created, alertModel.AlertMissingInfos) {
		t.Errorf("expected missing_infos, got %v", res.Created)
	}
}

func TestCheckAndCreate_SessionSoon(t *testing.T) {
	svc, f := newAlertService(t)

	sess := f.CreateSessionStarting(0, 10, time.Now().Add(3*24*time.Hour))

	res, eerr := svc.CheckAndCreate(sess.ID)
	if eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}
	if !hasType(res.Created, alertModel.AlertSessionSoon) {
		t.Errorf("expected session_soon, got %v", res.Created)
	}

	// A session a month out does not trigger it.
	far := f.CreateSession(0, 10)
	res, eerr = svc.CheckAndCreate(far.ID)
	if eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}
	if hasType(res.Created, alertModel.AlertSessionSoon) {
		t.Errorf("session a month out should not be 'soon': %v", res.Created)
	}
}

func TestCheckAndCreate_SessionSoonWindowBound(t *testing.T) {
	svc, f := newAlertService(t)

	// 7 days 12 hours out: past the 7-day bound, no alert.
	outside := f.CreateSessionStarting(0, 10, time.Now().Add(7*24*time.Hour+12*time.Hour))
	res, eerr := svc.CheckAndCreate(outside.ID)
	if eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}
	if hasType(res.Created, alertModel.AlertSessionSoon) {
		t.Errorf("session starting in 7.5 days must not trigger session_soon: %v", res.Created)
	}

	// Just inside the bound: alert.
	inside := f.CreateSessionStarting(0, 10, time.Now().Add(7*24*time.Hour-time.Hour))
	res, eerr = svc.CheckAndCreate(inside.ID)
	if eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}
	if !hasType(res.Created, alertModel.AlertSessionSoon) {
		t.Errorf("session starting in under 7 days should trigger session_soon: %v", res.Created)
	}

	// A stale session_soon on the 7.5-day session is garbage-collected.
	seed := alertModel.AlertModel{
		ID:        uuid.New(),
		SessionID: outside.ID,
		AlertType: alertModel.AlertSessionSoon,
		Message:   "Session starts soon",
		Status:    alertModel.AlertPending,
	}
	if err := f.DB().Create(&seed).Error; err != nil {
		t.Fatalf("seed alert: %v", err)
	}
	removed, eerr := svc.Cleanup(outside.ID)
	if eerr != nil {
		t.Fatalf("Cleanup: %v", eerr)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestCheckAndCreate_UnknownSession(t *testing.T) {
	svc, _ := newAlertService(t)

	if _, eerr := svc.CheckAndCreate(uuid.New()); eerr == nil || eerr.Kind != engine.KindNotFound {
		t.Errorf("expected NOT_FOUND, got %v", eerr)
	}
}

func TestResolveAndDismiss(t *testing.T) {
	svc, f := newAlertService(t)

	sess := f.CreateSession(5, 10)
	if _, eerr := svc.CheckAndCreate(sess.ID); eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}
	alerts, _, eerr := svc.List(sess.ID, 50, 0)
	if eerr != nil || len(alerts) == 0 {
		t.Fatalf("List: %v (%d alerts)", eerr, len(alerts))
	}

	resolved, eerr := svc.Resolve(alerts[0].ID)
	if eerr != nil {
		t.Fatalf("Resolve: %v", eerr)
	}
	if resolved.Status != alertModel.AlertResolved || resolved.ResolvedAt == nil {
		t.Errorf("resolve did not stamp: %+v", resolved)
	}

	// Resolved alert no longer blocks a fresh one for the same condition.
	res, eerr := svc.CheckAndCreate(sess.ID)
	if eerr != nil {
		t.Fatalf("CheckAndCreate after resolve: %v", eerr)
	}
	if !hasType(res.Created, alertModel.AlertMinNotReached) {
		t.Errorf("expected a fresh min_not_reached, got %v", res.Created)
	}

	if eerr := svc.Dismiss(resolved.ID); eerr != nil {
		t.Fatalf("Dismiss: %v", eerr)
	}
	if eerr := svc.Dismiss(resolved.ID); eerr == nil || eerr.Kind != engine.KindNotFound {
		t.Errorf("double dismiss should be NOT_FOUND, got %v", eerr)
	}
}

func TestCleanup(t *testing.T) {
	svc, f := newAlertService(t)

	sess := f.CreateSession(2, 10)
	if _, eerr := svc.CheckAndCreate(sess.ID); eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}

	// Condition still holds: nothing to collect.
	removed, eerr := svc.Cleanup(sess.ID)
	if eerr != nil {
		t.Fatalf("Cleanup: %v", eerr)
	}
	if removed != 0 {
		t.Errorf("removed %d while condition still holds", removed)
	}

	// Reach the minimum; the alert is now stale.
	f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)

	removed, eerr = svc.Cleanup(sess.ID)
	if eerr != nil {
		t.Fatalf("Cleanup: %v", eerr)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	alerts, total, eerr := svc.List(sess.ID, 50, 0)
	if eerr != nil {
		t.Fatalf("List: %v", eerr)
	}
	if len(alerts) != 0 || total != 0 {
		t.Errorf("stale alert survived cleanup: %+v", alerts)
	}
}

func TestSummary(t *testing.T) {
	svc, f := newAlertService(t)

	sess := f.CreateSession(5, 10)
	if _, eerr := svc.CheckAndCreate(sess.ID); eerr != nil {
		t.Fatalf("CheckAndCreate: %v", eerr)
	}
	alerts, _, _ := svc.List(sess.ID, 50, 0)
	if len(alerts) == 0 {
		t.Fatal("no alerts to summarize")
	}
	if _, eerr := svc.Resolve(alerts[0].ID); eerr != nil {
		t.Fatalf("Resolve: %v", eerr)
	}
	if _, eerr := svc.CheckAndCreate(sess.ID); eerr != nil {
		t.Fatalf("CheckAndCreate again: %v", eerr)
	}

	summary, eerr := svc.Summary(sess.ID)
	if eerr != nil {
		t.Fatalf("Summary: %v", eerr)
	}
	ts := summary[alertModel.AlertMinNotReached]
	if ts.Pending != 1 || ts.Resolved != 1 {
		t.Errorf("min_not_reached summary = %+v, want 1 pending / 1 resolved", ts)
	}
}
