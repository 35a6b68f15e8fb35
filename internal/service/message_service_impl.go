package service

import (
	"context"
	"time"

	"github.com/leadrelay/backend/internal/model"
	"github.com/leadrelay/backend/internal/repository"
)

// messageServiceImpl is the production implementation of MessageService.
type messageServiceImpl struct {
	repo     repository.MessageRepository
	observer CreatedObserver
	now      func() time.Time
}

// NewMessageService creates a MessageService backed by the given repository.
// observer may be nil.
func NewMessageService(repo repository.MessageRepository, observer CreatedObserver) MessageService {
	return &messageServiceImpl{repo: repo, observer: observer, now: time.Now}
}

// Create fills the server defaults (status "unread", timestamp now) when
// the client omitted them, then persists the record.
func (s *messageServiceImpl) Create(ctx context.Context, in *model.MessageInput) (*model.Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	msg := in.ToMessage()
	msg.ApplyDefaults(s.now())
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.MessageCreated()
	}
	return msg, nil
}

// List returns every stored message ordered by timestamp descending.
func (s *messageServiceImpl) List(ctx context.Context) ([]*model.Message, error) {
	return s.repo.List(ctx)
}
