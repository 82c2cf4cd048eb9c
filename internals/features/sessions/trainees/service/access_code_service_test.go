// file: internals/features/sessions/trainees/service/access_code_service_test.go
package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"formationhub_backend/internals/features/sessions/engine"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
	"formationhub_backend/internals/features/sessions/trainees/service"
	"formationhub_backend/internals/testutil"
)

func newCodeService(t *testing.T) (*service.AccessCodeService, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	return service.NewAccessCodeService(db, engine.DefaultConfig()), f
}

func TestIssueCode(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)

	code, eerr := svc.IssueCode(sess.ID, enr.TraineeID)
	if eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}
	if len(code) != 6 {
		t.Fatalf("code %q: want 6 digits", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q contains non-digit %q", code, r)
		}
	}

	var stored traineeModel.EnrollmentModel
	if err := f.DB().Where("id = ?", enr.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.AccessCode == nil || *stored.AccessCode != code {
		t.Errorf("stored code = %v, want %q", stored.AccessCode, code)
	}
	if stored.CodeGeneratedAt == nil {
		t.Error("code_generated_at not stamped")
	}
}

func TestIssueCode_ClearsLockout(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)

	locked := time.Now().Add(time.Hour)
	if err := f.DB().Model(&traineeModel.EnrollmentModel{}).
		Where("id = ?", enr.ID).
		Updates(map[string]any{"failed_attempts": 3, "locked_until": locked}).Error; err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	if _, eerr := svc.IssueCode(sess.ID, enr.TraineeID); eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}

	var stored traineeModel.EnrollmentModel
	if err := f.DB().Where("id = ?", enr.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.FailedAttempts != 0 || stored.LockedUntil != nil {
		t.Errorf("reissue should clear lockout, got attempts=%d locked_until=%v",
			stored.FailedAttempts, stored.LockedUntil)
	}
}

func TestIssueCode_UnknownEnrollment(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	if _, eerr := svc.IssueCode(sess.ID, uuid.New()); eerr == nil || eerr.Kind != engine.KindNotFound {
		t.Errorf("expected NOT_FOUND, got %v", eerr)
	}
}

func TestIssueAllMissing(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	withCode := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	if _, eerr := svc.IssueCode(sess.ID, withCode.TraineeID); eerr != nil {
		t.Fatalf("seed code: %v", eerr)
	}
	f.CreateEnrollment(sess.ID, traineeModel.TraineeRegistered)
	f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	f.CreateEnrollment(sess.ID, traineeModel.TraineeCancelled) // excluded

	res, eerr := svc.IssueAllMissing(sess.ID)
	if eerr != nil {
		t.Fatalf("IssueAllMissing: %v", eerr)
	}
	if res.Generated != 2 {
		t.Errorf("generated = %d, want 2", res.Generated)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected batch errors: %+v", res.Errors)
	}

	// Second run finds nothing left.
	res, eerr = svc.IssueAllMissing(sess.ID)
	if eerr != nil {
		t.Fatalf("IssueAllMissing rerun: %v", eerr)
	}
	if res.Generated != 0 {
		t.Errorf("rerun generated = %d, want 0", res.Generated)
	}
}

func TestVerify(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	code, eerr := svc.IssueCode(sess.ID, enr.TraineeID)
	if eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}

	res, eerr := svc.Verify(sess.ID, code)
	if eerr != nil {
		t.Fatalf("Verify: %v", eerr)
	}
	if res.EnrollmentID != enr.ID || res.TraineeID != enr.TraineeID {
		t.Errorf("verify returned wrong enrollment: %+v", res)
	}

	if _, eerr := svc.Verify(sess.ID, "000000"); eerr == nil || eerr.Kind != engine.KindNotFound {
		t.Errorf("wrong code should be NOT_FOUND, got %v", eerr)
	}
}

func TestVerify_ResetsFailedAttempts(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	code, eerr := svc.IssueCode(sess.ID, enr.TraineeID)
	if eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}

	// Two wrong tries, then a right one.
	for i := 0; i < 2; i++ {
		res, aerr := svc.RecordFailedAttempt(sess.ID, code)
		if aerr != nil {
			t.Fatalf("RecordFailedAttempt: %v", aerr)
		}
		if res.Locked {
			t.Fatal("locked before threshold")
		}
	}

	if _, eerr := svc.Verify(sess.ID, code); eerr != nil {
		t.Fatalf("Verify: %v", eerr)
	}

	var stored traineeModel.EnrollmentModel
	if err := f.DB().Where("id = ?", enr.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.FailedAttempts != 0 {
		t.Errorf("failed_attempts = %d after success, want 0", stored.FailedAttempts)
	}
}

func TestRecordFailedAttempt_LocksAtThreshold(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	code, eerr := svc.IssueCode(sess.ID, enr.TraineeID)
	if eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}

	var last service.FailedAttemptResult
	for i := 0; i < 3; i++ {
		var aerr *engine.Error
		last, aerr = svc.RecordFailedAttempt(sess.ID, code)
		if aerr != nil {
			t.Fatalf("attempt %d: %v", i+1, aerr)
		}
	}
	if !last.Locked || last.LockedUntil == nil {
		t.Fatalf("third attempt should lock, got %+v", last)
	}
	if until := *last.LockedUntil; until.Before(time.Now().Add(25 * time.Minute)) {
		t.Errorf("locked_until %v too close, want ~30m out", until)
	}

	// Even the right code is refused while the lock holds.
	if _, eerr := svc.Verify(sess.ID, code); eerr == nil || eerr.Kind != engine.KindLockout {
		t.Errorf("verify during lock should be LOCKOUT, got %v", eerr)
	}
}

func TestRecordFailedAttempt_UnknownCodeIsNoop(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	res, eerr := svc.RecordFailedAttempt(sess.ID, "999999")
	if eerr != nil {
		t.Fatalf("RecordFailedAttempt: %v", eerr)
	}
	if res.Locked {
		t.Errorf("unknown code must not lock anything: %+v", res)
	}
}

func TestVerifyForTrainee(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	code, eerr := svc.IssueCode(sess.ID, enr.TraineeID)
	if eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}

	// Two wrong submissions count against this enrollment's credential.
	for i := 0; i < 2; i++ {
		if _, eerr := svc.VerifyForTrainee(sess.ID, enr.TraineeID, "000000"); eerr == nil || eerr.Kind != engine.KindNotFound {
			t.Fatalf("wrong code attempt %d: got %v, want NOT_FOUND", i+1, eerr)
		}
	}

	// Third wrong one trips the lock.
	if _, eerr := svc.VerifyForTrainee(sess.ID, enr.TraineeID, "000000"); eerr == nil || eerr.Kind != engine.KindLockout {
		t.Fatalf("third wrong attempt should be LOCKOUT, got %v", eerr)
	}

	// The right code is refused while locked.
	if _, eerr := svc.VerifyForTrainee(sess.ID, enr.TraineeID, code); eerr == nil || eerr.Kind != engine.KindLockout {
		t.Errorf("right code during lock should be LOCKOUT, got %v", eerr)
	}
}

func TestVerifyForTrainee_Success(t *testing.T) {
	svc, f := newCodeService(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	code, eerr := svc.IssueCode(sess.ID, enr.TraineeID)
	if eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}

	res, eerr := svc.VerifyForTrainee(sess.ID, enr.TraineeID, code)
	if eerr != nil {
		t.Fatalf("VerifyForTrainee: %v", eerr)
	}
	if res.TraineeID != enr.TraineeID {
		t.Errorf("trainee_id = %s, want %s", res.TraineeID, enr.TraineeID)
	}
}

func TestCodesAreSessionScoped(t *testing.T) {
	svc, f := newCodeService(t)

	sessA := f.CreateSession(2, 10)
	sessB := f.CreateSession(2, 10)
	enrA := f.CreateEnrollment(sessA.ID, traineeModel.TraineeConfirmed)
	f.CreateEnrollment(sessB.ID, traineeModel.TraineeConfirmed)

	codeA, eerr := svc.IssueCode(sessA.ID, enrA.TraineeID)
	if eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}

	// A's code opens nothing in B.
	if _, eerr := svc.Verify(sessB.ID, codeA); eerr == nil || eerr.Kind != engine.KindNotFound {
		t.Errorf("code must not cross sessions, got %v", eerr)
	}
}
