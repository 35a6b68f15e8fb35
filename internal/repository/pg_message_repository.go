package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadrelay/backend/internal/model"
)

// MessageRepository defines the persistence interface for lead messages.
// It is defined here (in repository) to avoid an import cycle with service.
type MessageRepository interface {
	// Create persists msg, assigning ID and any missing server defaults.
	Create(ctx context.Context, msg *model.Message) error
	// List returns every message, newest timestamp first.
	List(ctx context.Context) ([]*model.Message, error)
}

// PgMessageRepository is the PostgreSQL implementation of MessageRepository.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

// NewPgMessageRepository creates a PgMessageRepository backed by the given pool.
func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

// Ensure PgMessageRepository implements MessageRepository at compile time.
var _ MessageRepository = (*PgMessageRepository)(nil)

// Create inserts a new messages row. Items are stored as a JSONB array.
func (r *PgMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	msg.ApplyDefaults(time.Now())

	items, err := json.Marshal(msg.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	id := uuid.NewString()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO messages (id, sender_name, sender_email, sender_phone, sender_address,
		                       subject, body, items, timestamp, status, user_id)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''),
		         NULLIF($6, ''), NULLIF($7, ''), $8::jsonb, $9, $10, NULLIF($11, ''))`,
		id, msg.SenderName, msg.SenderEmail, msg.SenderPhone, msg.SenderAddress,
		msg.Subject, msg.Body, string(items), msg.Timestamp, string(msg.Status), msg.UserID,
	)
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// List returns all messages ordered by timestamp descending. Rows sharing a
// timestamp come back in reverse insertion order.
func (r *PgMessageRepository) List(ctx context.Context) ([]*model.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, COALESCE(sender_name, ''), COALESCE(sender_email, ''),
		        COALESCE(sender_phone, ''), COALESCE(sender_address, ''),
		        COALESCE(subject, ''), COALESCE(body, ''), items::text,
		        timestamp, status, COALESCE(user_id, '')
		 FROM messages
		 ORDER BY timestamp DESC, seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var (
			m      model.Message
			items  string
			status string
		)
		if err := rows.Scan(&m.ID, &m.SenderName, &m.SenderEmail, &m.SenderPhone, &m.SenderAddress,
			&m.Subject, &m.Body, &items, &m.Timestamp, &status, &m.UserID); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(items), &m.Items); err != nil {
			return nil, fmt.Errorf("decode items of message %s: %w", m.ID, err)
		}
		m.Status = model.Status(status)
		m.Timestamp = m.Timestamp.UTC()
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
