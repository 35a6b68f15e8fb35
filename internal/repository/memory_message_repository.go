package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leadrelay/backend/internal/model"
)

// MemoryMessageRepository keeps messages in process memory. It backs the
// "memory" store driver and the handler tests.
type MemoryMessageRepository struct {
	mu       sync.RWMutex
	messages []model.Message
	now      func() time.Time
}

// NewMemoryMessageRepository creates an empty MemoryMessageRepository.
func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{now: time.Now}
}

var _ MessageRepository = (*MemoryMessageRepository)(nil)

// Create stores a copy of msg and populates msg.ID.
func (r *MemoryMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg.ApplyDefaults(r.now())
	msg.ID = uuid.NewString()

	r.mu.Lock()
	r.messages = append(r.messages, *msg)
	r.mu.Unlock()
	return nil
}

// List returns copies of all messages, newest timestamp first.
func (r *MemoryMessageRepository) List(ctx context.Context) ([]*model.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]*model.Message, 0, len(r.messages))
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		out = append(out, &m)
	}
	r.mu.RUnlock()

	// stable sort keeps later inserts first among equal timestamps
	slices.SortStableFunc(out, func(a, b *model.Message) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out, nil
}
