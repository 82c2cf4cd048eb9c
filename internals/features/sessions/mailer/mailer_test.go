// file: internals/features/sessions/mailer/mailer_test.go
package mailer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"formationhub_backend/internals/features/sessions/mailer"
	traineeService "formationhub_backend/internals/features/sessions/trainees/service"
)

func TestBuildConvocationEmail(t *testing.T) {
	job := traineeService.ConvocationJob{
		SessionID:    uuid.New(),
		SessionTitle: "CACES R489 cat. 3",
		StartDate:    time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC),
		TraineeID:    uuid.New(),
		AccessCode:   "482913",
		PortalURL:    "https://portal.formationhub.fr/sessions/abc",
	}

	email := mailer.BuildConvocationEmail(job, "convocations@formationhub.fr")

	if email.To != "convocations@formationhub.fr" {
		t.Errorf("to = %q", email.To)
	}
	if !strings.Contains(email.Subject, "CACES R489 cat. 3") {
		t.Errorf("subject %q missing session title", email.Subject)
	}
	for _, want := range []string{"12/10/2026", "482913", job.PortalURL} {
		if !strings.Contains(email.TextBody, want) {
			t.Errorf("body missing %q:\n%s", want, email.TextBody)
		}
	}
}

func TestBuildConvocationEmail_NoCode(t *testing.T) {
	job := traineeService.ConvocationJob{
		SessionTitle: "SST initiale",
		StartDate:    time.Now(),
	}
	email := mailer.BuildConvocationEmail(job, "x@y.fr")
	if !strings.Contains(email.TextBody, "sent separately") {
		t.Errorf("body should mention the code arrives separately:\n%s", email.TextBody)
	}
}
