// file: internals/features/sessions/mailer/mailer.go
package mailer

import (
	"bytes"
	"fmt"
	"log"
	"net/smtp"
	"time"

	traineeService "formationhub_backend/internals/features/sessions/trainees/service"
)

type Email struct {
	To       string
	Subject  string
	TextBody string
}

// BuildConvocationEmail builds the notice-of-attendance mail for a newly
// convoked trainee.
func BuildConvocationEmail(job traineeService.ConvocationJob, to string) Email {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "You are convoked to the training session %q.\n\n", job.SessionTitle)
	fmt.Fprintf(&buf, "Start date: %s\n", job.StartDate.Format("02/01/2006"))
	fmt.Fprintf(&buf, "Trainee portal: %s\n", job.PortalURL)
	if job.AccessCode != "" {
		fmt.Fprintf(&buf, "Your access code: %s\n", job.AccessCode)
	} else {
		buf.WriteString("Your access code will be sent separately.\n")
	}
	buf.WriteString("\nPlease complete your information on the portal before the session starts.\n")

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Convocation - %s", job.SessionTitle),
		TextBody: buf.String(),
	}
}

// Service sends convocation mails fire-and-forget. The trainee directory is
// external; delivery goes through a relay inbox the CRM dispatches from. With
// no SMTP host configured, mails are logged only (dev mode).
type Service struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	Relay    string
}

func New(host, port, user, password, from, relay string) *Service {
	return &Service{Host: host, Port: port, User: user, Password: password, From: from, Relay: relay}
}

// ConvocationIssued implements the lifecycle notifier. It never blocks the
// transition that triggered it and never reports failure upstream.
func (s *Service) ConvocationIssued(job traineeService.ConvocationJob) {
	go func() {
		email := BuildConvocationEmail(job, s.Relay)
		if err := s.send(email); err != nil {
			log.Printf("[MAILER] convocation session=%s trainee=%s: %v",
				job.SessionID, job.TraineeID, err)
		}
	}()
}

func (s *Service) send(email Email) error {
	if s.Host == "" {
		log.Printf("[MAILER] (dry-run) to=%s subject=%q", email.To, email.Subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\n\r\n%s",
		s.From, email.To, email.Subject, time.Now().Format(time.RFC1123Z), email.TextBody)

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Password, s.Host)
	}
	return smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{email.To}, []byte(msg))
}
