package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service manages the member message board.
type Service interface {
	Send(ctx context.Context, input SendMessageInput) (*models.UserMessage, error)
	ListForMember(ctx context.Context, memberID uuid.UUID) ([]models.UserMessage, error)
	ListAll(ctx context.Context) ([]models.UserMessage, error)
	MarkRead(ctx context.Context, id uuid.UUID, readerID uuid.UUID) (*models.UserMessage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// SendMessageInput captures a new message. A nil recipient broadcasts to
// the whole board.
type SendMessageInput struct {
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID *uuid.UUID `json:"recipient_id"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
}

func (i SendMessageInput) validate() error {
	if i.SenderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sender id is required")
	}
	if i.RecipientID != nil && *i.RecipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient id cannot be empty")
	}
	if strings.TrimSpace(i.Body) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	return nil
}

// NewService wires a messages service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Send(ctx context.Context, input SendMessageInput) (*models.UserMessage, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	message := &models.UserMessage{
		ID:          uuid.New(),
		SenderID:    input.SenderID,
		RecipientID: input.RecipientID,
		Subject:     strings.TrimSpace(input.Subject),
		Body:        strings.TrimSpace(input.Body),
		SentAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send message")
	}
	return message, nil
}

func (s *service) ListForMember(ctx context.Context, memberID uuid.UUID) ([]models.UserMessage, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	messages, err := s.repo.ListForRecipient(ctx, memberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return messages, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.UserMessage, error) {
	messages, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return messages, nil
}

// MarkRead flips the read flag. Only the addressed recipient can mark a
// direct message; broadcasts can be marked by anyone.
func (s *service) MarkRead(ctx context.Context, id uuid.UUID, readerID uuid.UUID) (*models.UserMessage, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message id is required")
	}

	message, err := s.loadMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.RecipientID != nil && *message.RecipientID != readerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "message addressed to another member")
	}
	if message.IsRead {
		return message, nil
	}

	message.IsRead = true
	if err := s.repo.Update(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark message read")
	}
	return message, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "message id is required")
	}
	if _, err := s.loadMessage(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete message")
	}
	return nil
}

func (s *service) loadMessage(ctx context.Context, id uuid.UUID) (*models.UserMessage, error) {
	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message")
	}
	return message, nil
}
