package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptly-app/promptly/backend/internal/model/chat"
)

var (
	ErrOwnerRequired = errors.New("owner id is required")
	ErrRoleRequired  = errors.New("message role is required")
)

// Service is the append-only message log and the read-time conversation
// assembler over it. Writes never touch existing rows; reads group and sort on
// every call.
type Service struct {
	db *gorm.DB
}

// NewService wraps the injected database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Record appends one role-tagged message for the owner and returns the stored
// row. The timestamp is assigned server-side at write time; a blank chatID is
// allowed and leaves the row ungroupable.
func (s *Service) Record(ctx context.Context, ownerID, role, content, chatID string) (chat.Message, error) {
	if ownerID == "" {
		return chat.Message{}, ErrOwnerRequired
	}
	if role == "" {
		return chat.Message{}, ErrRoleRequired
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return chat.Message{}, fmt.Errorf("failed to record message: %w", err)
	}
	return message, nil
}

// Assemble returns every conversation belonging to the owner. Messages within
// a group are ordered ascending by timestamp (seq breaks ties), rows without a
// chat id are silently dropped, and groups appear in first-seen order of their
// chat id during the scan.
func (s *Service) Assemble(ctx context.Context, ownerID string) ([]chat.Conversation, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}

	var records []chat.Message
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, seq ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	index := make(map[string]int)
	conversations := make([]chat.Conversation, 0)
	for _, record := range records {
		if record.ChatID == "" {
			continue
		}
		at, ok := index[record.ChatID]
		if !ok {
			at = len(conversations)
			index[record.ChatID] = at
			conversations = append(conversations, chat.Conversation{ChatID: record.ChatID})
		}
		conversations[at].Messages = append(conversations[at].Messages, record)
	}

	for i := range conversations {
		conversations[i].LastMessage = conversations[i].Messages[len(conversations[i].Messages)-1]
	}

	return conversations, nil
}
