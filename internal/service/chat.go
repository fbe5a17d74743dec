package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okonek/traintrack/internal/domain"
)

const defaultHistoryLimit = 50

// ChatService persists direct messages and serves chat history.
type ChatService struct {
	messages domain.MessageRepository
}

// NewChatService creates a new ChatService.
func NewChatService(messages domain.MessageRepository) *ChatService {
	return &ChatService{messages: messages}
}

// Send stores one message from sender to receiver.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID int64, body string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message body is empty", domain.ErrInvalidInput)
	}
	if receiverID == 0 || receiverID == senderID {
		return nil, fmt.Errorf("%w: invalid receiver", domain.ErrInvalidInput)
	}

	msg := &domain.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		SentAt:     time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

// History returns the most recent messages exchanged between a user
// and a peer, oldest first. limit <= 0 falls back to the default.
func (s *ChatService) History(ctx context.Context, userID, peerID int64, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.messages.ListBetween(ctx, userID, peerID, limit)
}

// SaveIncoming persists a chat payload received over the realtime
// connection. The payload carries the receiver and body; malformed
// payloads are rejected.
func (s *ChatService) SaveIncoming(ctx context.Context, senderID int64, data json.RawMessage) error {
	var payload struct {
		ReceiverID int64  `json:"receiver_id"`
		Body       string `json:"body"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: decode chat payload: %v", domain.ErrInvalidInput, err)
	}
	_, err := s.Send(ctx, senderID, payload.ReceiverID, payload.Body)
	return err
}
