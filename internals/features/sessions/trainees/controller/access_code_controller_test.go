// file: internals/features/sessions/trainees/controller/access_code_controller_test.go
package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"formationhub_backend/internals/features/sessions/engine"
	sessService "formationhub_backend/internals/features/sessions/sessions/service"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
	traineeRoute "formationhub_backend/internals/features/sessions/trainees/route"
	"formationhub_backend/internals/features/sessions/trainees/service"
	"formationhub_backend/internals/testutil"
)

func newPortalApp(t *testing.T) (*fiber.App, *service.AccessCodeService, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	cfg := engine.DefaultConfig()

	codes := service.NewAccessCodeService(db, cfg)
	lifecycle := service.NewLifecycleService(db, cfg, nil)
	sessions := sessService.NewSessionService(db, cfg)

	app := fiber.New()
	api := app.Group("/api")
	traineeRoute.TraineeRoutes(api, db, lifecycle, codes, sessions)
	public := app.Group("/api/public")
	traineeRoute.PublicTraineeRoutes(public, db, codes)

	return app, codes, f
}

func verifyRequest(sessionID, traineeID uuid.UUID, code string) *http.Request {
	body, _ := json.Marshal(map[string]string{"code": code})
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/public/sessions/%s/trainees/%s/portal/verify", sessionID, traineeID),
		bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPortalVerify(t *testing.T) {
	app, codes, f := newPortalApp(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	code, eerr := codes.IssueCode(sess.ID, enr.TraineeID)
	if eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}

	resp, err := app.Test(verifyRequest(sess.ID, enr.TraineeID, code))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			TraineeID uuid.UUID `json:"trainee_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.TraineeID != enr.TraineeID {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestPortalVerify_WrongCodeThenLockout(t *testing.T) {
	app, codes, f := newPortalApp(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)
	if _, eerr := codes.IssueCode(sess.ID, enr.TraineeID); eerr != nil {
		t.Fatalf("IssueCode: %v", eerr)
	}

	for i := 0; i < 2; i++ {
		resp, err := app.Test(verifyRequest(sess.ID, enr.TraineeID, "000000"))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, resp.StatusCode)
		}
	}

	// Third wrong submission trips the lock: 423 with a deadline.
	resp, err := app.Test(verifyRequest(sess.ID, enr.TraineeID, "000000"))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusLocked {
		t.Fatalf("status = %d, want 423", resp.StatusCode)
	}

	var body struct {
		Success   bool           `json:"success"`
		ErrorCode string         `json:"error_code"`
		Details   map[string]any `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.ErrorCode != "LOCKOUT" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Details["locked_until"] == nil {
		t.Error("locked_until missing from details")
	}
}

func TestPortalVerify_BadPayload(t *testing.T) {
	app, _, f := newPortalApp(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)

	// Too short to be a code at all.
	resp, err := app.Test(verifyRequest(sess.ID, enr.TraineeID, "12"))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestIssueEndpoint(t *testing.T) {
	app, _, f := newPortalApp(t)

	sess := f.CreateSession(2, 10)
	enr := f.CreateEnrollment(sess.ID, traineeModel.TraineeConfirmed)

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/sessions/%s/access-codes/%s", sess.ID, enr.TraineeID), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		Data struct {
			AccessCode string `json:"access_code"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.AccessCode) != 6 {
		t.Errorf("access_code = %q, want 6 digits", body.Data.AccessCode)
	}
}
