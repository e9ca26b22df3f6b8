package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/promptly-app/promptly/backend/internal/model/chat"
	"github.com/promptly-app/promptly/backend/internal/service/completion"
	"github.com/promptly-app/promptly/backend/internal/service/history"
)

var ErrAssistantUnavailable = errors.New("assistant is unavailable")

// Reply is the outcome of one send: the assistant text plus the chat id the
// exchange was filed under (freshly generated when the caller sent none).
type Reply struct {
	ChatID   string
	Response string
}

// Service orchestrates one chat turn against the history log and the
// completion backend.
type Service struct {
	history    *history.Service
	completion completion.Client
}

// NewService wires the history log and completion client together. The client
// may be nil when no provider is configured; sends then fail after the user
// message is recorded.
func NewService(historySvc *history.Service, client completion.Client) *Service {
	return &Service{history: historySvc, completion: client}
}

// Send records the user's message, asks the completion backend for a reply,
// and records that reply. The user message is durable before the completion
// call is made; if the call fails, no bot message is appended and the log
// keeps the unanswered user message. Nothing rolls that back.
func (s *Service) Send(ctx context.Context, ownerID, chatID, message string) (Reply, error) {
	if chatID == "" {
		chatID = uuid.NewString()
	}

	if _, err := s.history.Record(ctx, ownerID, chat.RoleUser, message, chatID); err != nil {
		return Reply{}, err
	}

	if s.completion == nil {
		return Reply{}, ErrAssistantUnavailable
	}

	response, err := s.completion.Complete(ctx, message)
	if err != nil {
		return Reply{}, fmt.Errorf("completion failed: %w", err)
	}

	if _, err := s.history.Record(ctx, ownerID, chat.RoleBot, response, chatID); err != nil {
		log.Printf("[chat] failed to record bot reply for owner=%s: %v", ownerID, err)
		return Reply{}, err
	}

	return Reply{ChatID: chatID, Response: response}, nil
}

// History returns the owner's conversations, grouped and ordered by the
// assembler's contract.
func (s *Service) History(ctx context.Context, ownerID string) ([]chat.Conversation, error) {
	return s.history.Assemble(ctx, ownerID)
}
