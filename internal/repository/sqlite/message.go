package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/okonek/traintrack/internal/domain"
)

// MessageRepository implements domain.MessageRepository using SQLite.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new SQLite-backed MessageRepository.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db.SqlDB}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, sender_id, receiver_id, body, sent_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Body, msg.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListBetween(ctx context.Context, userA, userB int64, limit int) ([]domain.ChatMessage, error) {
	// Fetch the newest messages of the conversation, then reverse so
	// callers receive them oldest first.
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sender_id, receiver_id, body, sent_at
		 FROM chat_messages
		 WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		 ORDER BY sent_at DESC LIMIT ?`,
		userA, userB, userB, userA, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
