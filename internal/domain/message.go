package domain

import (
	"context"
	"time"
)

// ChatMessage is one direct message between two users.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

type MessageRepository interface {
	Create(ctx context.Context, msg *ChatMessage) error
	// ListBetween returns the most recent messages exchanged between
	// two users, oldest first.
	ListBetween(ctx context.Context, userA, userB int64, limit int) ([]ChatMessage, error)
}
