package notification

import (
	"context"
	"time"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type Entity struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Kind      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Variables map[string]string `json:"variables,omitempty"`
	Status    string            `json:"status"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type CreateInput struct {
	UserID    string
	Kind      string
	Title     string
	Message   string
	Variables map[string]string
	Status    string
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]Entity, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

// Recipient is what the mailer needs about a user.
type Recipient struct {
	Email     string
	FirstName string
}

type RecipientDirectory interface {
	GetRecipient(ctx context.Context, userID string) (*Recipient, error)
}

type Mailer interface {
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
}

type Publisher interface {
	Publish(channel string, payload []byte)
}

type Service struct {
	repo  Repository
	users RecipientDirectory
	mail  Mailer
}

func NewService(repo Repository, users RecipientDirectory, mail Mailer) *Service {
	return &Service{repo: repo, users: users, mail: mail}
}

// Deliver renders the template for the event, records an in-app notification
// and sends the HTML email. The in-app record is written even when mail
// delivery fails; the record status reflects the mail outcome.
func (s *Service) Deliver(ctx context.Context, userID, kind string, vars map[string]string) error {
	recipient, err := s.users.GetRecipient(ctx, userID)
	if err != nil {
		return err
	}

	merged := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		merged[k] = v
	}
	merged["first_name"] = recipient.FirstName

	subject, body := RenderTemplate(kind, merged)

	status := StatusSent
	var mailErr error
	if s.mail != nil {
		if mailErr = s.mail.SendHTML(ctx, recipient.Email, subject, body); mailErr != nil {
			status = StatusFailed
		}
	}

	if _, err := s.repo.Create(ctx, CreateInput{
		UserID:    userID,
		Kind:      kind,
		Title:     subject,
		Message:   body,
		Variables: vars,
		Status:    status,
	}); err != nil {
		return err
	}
	return mailErr
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int32) ([]Entity, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}
