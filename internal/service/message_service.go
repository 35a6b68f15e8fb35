package service

import (
	"context"

	"github.com/leadrelay/backend/internal/model"
)

// MessageService defines the business logic for lead message capture.
type MessageService interface {
	// Create stores a new message built from the validated input and
	// returns the stored record, including its generated ID.
	Create(ctx context.Context, in *model.MessageInput) (*model.Message, error)

	// List returns all stored messages, newest first.
	List(ctx context.Context) ([]*model.Message, error)
}

// CreatedObserver is notified after each successful Create.
type CreatedObserver interface {
	MessageCreated()
}
