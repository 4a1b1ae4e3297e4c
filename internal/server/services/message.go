package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/notify"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
	"github.com/jmoiron/sqlx"
)

// Notifier accepts SMS jobs without blocking.
type Notifier interface {
	Submit(ctx context.Context, job notify.Job) bool
}

// MessageService sends, shows and marks messages read.
type MessageService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	notifier    Notifier
}

func NewMessageService(db *sqlx.DB, m repomanager.RepositoryManager, n Notifier) *MessageService {
	return &MessageService{db: db, repomanager: m, notifier: n}
}

// Send stores the message and queues the SMS to the recipient. A dropped
// notification does not fail the call.
func (s *MessageService) Send(ctx context.Context, from, to, body string) (*models.Message, error) {
	msg, err := s.repomanager.Messages(s.db).Create(ctx, from, to, body)
	if err != nil {
		if errors.Is(err, common.ErrReference) {
			return nil, common.NewError(common.ErrReference, "Recipient does not exist")
		}
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Submit(ctx, notify.NewJob(from, msg.ID))
	}
	return msg, nil
}

// Get returns the message if viewer sent or received it.
func (s *MessageService) Get(ctx context.Context, viewer string, id int64) (*models.MessageDetail, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := EnsureParticipant(viewer, m); err != nil {
		return nil, err
	}
	return m, nil
}

// MarkRead sets read_at if viewer is the recipient. Repeated calls keep
// the first read time.
func (s *MessageService) MarkRead(ctx context.Context, viewer string, id int64) (*models.Message, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := EnsureRecipient(viewer, m); err != nil {
		return nil, err
	}

	msg, err := s.repomanager.Messages(s.db).MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf(common.ErrNotFound, "No such message: %d", id)
		}
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) get(ctx context.Context, id int64) (*models.MessageDetail, error) {
	m, err := s.repomanager.Messages(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf(common.ErrNotFound, "No such message: %d", id)
		}
		return nil, err
	}
	return m, nil
}
