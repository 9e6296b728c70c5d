package messages

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubRepo struct {
	messages map[uuid.UUID]*models.UserMessage
}

func newStubRepo(messages ...*models.UserMessage) *stubRepo {
	byID := map[uuid.UUID]*models.UserMessage{}
	for _, message := range messages {
		byID[message.ID] = message
	}
	return &stubRepo{messages: byID}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, message *models.UserMessage) error {
	s.messages[message.ID] = message
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.UserMessage, error) {
	message, ok := s.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *message
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context) ([]models.UserMessage, error) {
	var out []models.UserMessage
	for _, message := range s.messages {
		out = append(out, *message)
	}
	return out, nil
}

func (s *stubRepo) ListForRecipient(ctx context.Context, memberID uuid.UUID) ([]models.UserMessage, error) {
	var out []models.UserMessage
	for _, message := range s.messages {
		if message.RecipientID == nil || *message.RecipientID == memberID {
			out = append(out, *message)
		}
	}
	return out, nil
}

func (s *stubRepo) Update(ctx context.Context, message *models.UserMessage) error {
	s.messages[message.ID] = message
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.messages, id)
	return nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSendBroadcast(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	sent, err := svc.Send(context.Background(), SendMessageInput{
		SenderID: uuid.New(),
		Subject:  " Cleaning day ",
		Body:     " Saturday at 10, bring gloves. ",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.RecipientID != nil {
		t.Fatal("expected broadcast message")
	}
	if sent.Subject != "Cleaning day" {
		t.Fatalf("expected trimmed subject, got %q", sent.Subject)
	}
	if sent.SentAt.IsZero() {
		t.Fatal("expected sent_at stamped")
	}
	if len(repo.messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(repo.messages))
	}
}

func TestSendRejectsEmptyBody(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, gotErr := svc.Send(context.Background(), SendMessageInput{
		SenderID: uuid.New(),
		Body:     "   ",
	})
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", gotErr)
	}
}

func TestListForMemberIncludesBroadcasts(t *testing.T) {
	memberID := uuid.New()
	otherID := uuid.New()
	broadcast := &models.UserMessage{ID: uuid.New(), SenderID: uuid.New(), Body: "all hands", SentAt: time.Now()}
	direct := &models.UserMessage{ID: uuid.New(), SenderID: uuid.New(), RecipientID: &memberID, Body: "for you", SentAt: time.Now()}
	foreign := &models.UserMessage{ID: uuid.New(), SenderID: uuid.New(), RecipientID: &otherID, Body: "not yours", SentAt: time.Now()}

	svc := newTestService(t, newStubRepo(broadcast, direct, foreign))

	messages, err := svc.ListForMember(context.Background(), memberID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
}

func TestMarkReadByRecipient(t *testing.T) {
	memberID := uuid.New()
	direct := &models.UserMessage{ID: uuid.New(), SenderID: uuid.New(), RecipientID: &memberID, Body: "for you", SentAt: time.Now()}
	repo := newStubRepo(direct)
	svc := newTestService(t, repo)

	updated, err := svc.MarkRead(context.Background(), direct.ID, memberID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !updated.IsRead {
		t.Fatal("expected message marked read")
	}
	if !repo.messages[direct.ID].IsRead {
		t.Fatal("expected stored message marked read")
	}
}

func TestMarkReadByStrangerForbidden(t *testing.T) {
	memberID := uuid.New()
	direct := &models.UserMessage{ID: uuid.New(), SenderID: uuid.New(), RecipientID: &memberID, Body: "for you", SentAt: time.Now()}
	svc := newTestService(t, newStubRepo(direct))

	_, gotErr := svc.MarkRead(context.Background(), direct.ID, uuid.New())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", gotErr)
	}
}

func TestMarkReadMissingMessage(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	_, gotErr := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", gotErr)
	}
}
