package unit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lessismore22/Quickfund/internal/domain/notification"
)

func TestRenderSubstitutesVariables(t *testing.T) {
	out := notification.Render("Hello {{ first_name }}, loan {{loan.id}} is due", map[string]string{
		"first_name": "Amaka",
		"loan.id":    "LN1A2B3C4D",
	})
	if out != "Hello Amaka, loan LN1A2B3C4D is due" {
		t.Fatalf("rendered %q", out)
	}
}

func TestRenderUnknownVariableIsEmpty(t *testing.T) {
	out := notification.Render("Hi {{ first_name }}!", map[string]string{})
	if out != "Hi !" {
		t.Fatalf("rendered %q", out)
	}
}

func TestRenderTemplateFallsBackForUnknownKind(t *testing.T) {
	subject, body := notification.RenderTemplate("mystery_event", map[string]string{"first_name": "Amaka"})
	if subject != "QuickFund Notification" {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(body, "Hello Amaka") {
		t.Fatalf("body missing greeting: %q", body)
	}
}

func TestRenderTemplateLoanApproved(t *testing.T) {
	subject, body := notification.RenderTemplate(notification.KindLoanApproved, map[string]string{
		"first_name":       "Amaka",
		"loan.id":          "LN1A2B3C4D",
		"principal_amount": "250000.00",
	})
	if !strings.Contains(subject, "LN1A2B3C4D") {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(body, "250000.00") {
		t.Fatalf("body missing amount: %q", body)
	}
	if strings.Contains(body, "{{") {
		t.Fatalf("unrendered tokens in body: %q", body)
	}
}

type memNotificationRepo struct {
	created []notification.CreateInput
	read    []string
}

func (r *memNotificationRepo) Create(_ context.Context, in notification.CreateInput) (*notification.Entity, error) {
	r.created = append(r.created, in)
	return &notification.Entity{ID: "n-1", UserID: in.UserID, Kind: in.Kind, Title: in.Title, Status: in.Status}, nil
}

func (r *memNotificationRepo) ListByUser(context.Context, string, int32, int32) ([]notification.Entity, error) {
	out := make([]notification.Entity, 0, len(r.created))
	for _, in := range r.created {
		out = append(out, notification.Entity{UserID: in.UserID, Kind: in.Kind, Title: in.Title, Status: in.Status})
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, notificationID, _ string) error {
	r.read = append(r.read, notificationID)
	return nil
}

type fakeRecipients struct {
	recipient notification.Recipient
	err       error
}

func (d *fakeRecipients) GetRecipient(context.Context, string) (*notification.Recipient, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := d.recipient
	return &out, nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) SendHTML(_ context.Context, to, subject, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+": "+subject)
	return nil
}

func TestDeliverRecordsAndMails(t *testing.T) {
	repo := &memNotificationRepo{}
	mailer := &fakeMailer{}
	svc := notification.NewService(repo, &fakeRecipients{recipient: notification.Recipient{Email: "amaka@example.com", FirstName: "Amaka"}}, mailer)

	err := svc.Deliver(context.Background(), "user-1", notification.KindLoanDisbursed, map[string]string{
		"loan.id":          "LN1A2B3C4D",
		"principal_amount": "250000.00",
		"amount_due":       "23668.22",
		"due_date":         "2026-10-01",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("records = %d", len(repo.created))
	}
	if repo.created[0].Status != notification.StatusSent {
		t.Fatalf("status = %s, want sent", repo.created[0].Status)
	}
	if len(mailer.sent) != 1 || !strings.HasPrefix(mailer.sent[0], "amaka@example.com:") {
		t.Fatalf("mail = %v", mailer.sent)
	}
	if !strings.Contains(repo.created[0].Title, "LN1A2B3C4D") {
		t.Fatalf("title = %q", repo.created[0].Title)
	}
}

func TestDeliverKeepsRecordWhenMailFails(t *testing.T) {
	repo := &memNotificationRepo{}
	mailErr := errors.New("smtp timeout")
	svc := notification.NewService(repo, &fakeRecipients{recipient: notification.Recipient{Email: "amaka@example.com", FirstName: "Amaka"}}, &fakeMailer{err: mailErr})

	err := svc.Deliver(context.Background(), "user-1", notification.KindPaymentDue, map[string]string{"loan.id": "LN1A2B3C4D"})
	if !errors.Is(err, mailErr) {
		t.Fatalf("expected mail error surfaced, got %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("in-app record not written on mail failure")
	}
	if repo.created[0].Status != notification.StatusFailed {
		t.Fatalf("status = %s, want failed", repo.created[0].Status)
	}
}

func TestDeliverWithoutMailerStillRecords(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := notification.NewService(repo, &fakeRecipients{recipient: notification.Recipient{FirstName: "Amaka"}}, nil)

	if err := svc.Deliver(context.Background(), "user-1", notification.KindPaymentReceived, nil); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(repo.created) != 1 || repo.created[0].Status != notification.StatusSent {
		t.Fatalf("created = %+v", repo.created)
	}
}

func TestDeliverFailsWithoutRecipient(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := notification.NewService(repo, &fakeRecipients{err: errors.New("no rows in result set")}, &fakeMailer{})

	if err := svc.Deliver(context.Background(), "ghost", notification.KindLoanApproved, nil); err == nil {
		t.Fatalf("expected recipient lookup error")
	}
	if len(repo.created) != 0 {
		t.Fatalf("record written without recipient")
	}
}
