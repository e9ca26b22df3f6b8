package client

import (
	"context"
	"sync"
	"time"
)

// Sender roles used on the wire.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// WelcomeText is the synthetic onboarding greeting. It exists only in the
// view-model: the server never stores or returns it, and every fresh load of
// an empty conversation re-derives it.
const WelcomeText = "👋 Welcome to Promptly! Ask me anything to get started."

// State is the load lifecycle of one conversation view.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateError
)

// Backend is the slice of the API the view-model needs.
type Backend interface {
	Send(ctx context.Context, chatID, message string) (SendResult, error)
	History(ctx context.Context) ([]Chat, error)
}

// ViewModel holds the in-memory state of a single conversation: server
// history merged with optimistic local updates, plus the typing indicator.
type ViewModel struct {
	mu        sync.Mutex
	backend   Backend
	chatID    string
	state     State
	errText   string
	botTyping bool
	messages  []ChatMessage
}

// NewViewModel creates a view-model for the given conversation. A blank
// chatID means a brand-new conversation; the id is adopted from the server
// after the first send.
func NewViewModel(backend Backend, chatID string) *ViewModel {
	return &ViewModel{backend: backend, chatID: chatID}
}

// Load fetches history and enters the ready state. A conversation with no
// stored messages gets exactly one injected welcome record; once any real
// record exists the welcome is not shown.
func (vm *ViewModel) Load(ctx context.Context) {
	vm.mu.Lock()
	vm.state = StateLoading
	vm.errText = ""
	chatID := vm.chatID
	vm.mu.Unlock()

	chats, err := vm.backend.History(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if err != nil {
		vm.state = StateError
		vm.errText = err.Error()
		return
	}

	vm.messages = nil
	for _, c := range chats {
		if c.ChatID == chatID {
			vm.messages = append(vm.messages, c.Messages...)
			break
		}
	}
	if len(vm.messages) == 0 {
		vm.messages = []ChatMessage{{
			Role:      RoleBot,
			Content:   WelcomeText,
			ChatID:    chatID,
			Timestamp: time.Now().UTC(),
		}}
	}
	vm.state = StateReady
}

// SendMessage appends the user's message optimistically, flips the typing
// indicator, and calls the backend. On success the bot reply is appended; on
// failure the error is surfaced and the optimistic user message stays visible
// with no paired reply, matching the server's partial-failure state.
func (vm *ViewModel) SendMessage(ctx context.Context, content string) error {
	vm.mu.Lock()
	vm.errText = ""
	vm.messages = append(vm.messages, ChatMessage{
		Role:      RoleUser,
		Content:   content,
		ChatID:    vm.chatID,
		Timestamp: time.Now().UTC(),
	})
	vm.botTyping = true
	chatID := vm.chatID
	vm.mu.Unlock()

	result, err := vm.backend.Send(ctx, chatID, content)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.botTyping = false

	if err != nil {
		vm.errText = err.Error()
		return err
	}

	if result.ChatID != "" {
		vm.chatID = result.ChatID
	}
	vm.messages = append(vm.messages, ChatMessage{
		Role:      RoleBot,
		Content:   result.Response,
		ChatID:    vm.chatID,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// Messages returns a copy of the current message list.
func (vm *ViewModel) Messages() []ChatMessage {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	copied := make([]ChatMessage, len(vm.messages))
	copy(copied, vm.messages)
	return copied
}

// State reports the load lifecycle state.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// BotTyping reports whether a completion request is outstanding.
func (vm *ViewModel) BotTyping() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.botTyping
}

// Err returns the last surfaced error text, empty when none.
func (vm *ViewModel) Err() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.errText
}

// ChatID returns the conversation id, which may have been adopted from the
// server after the first send.
func (vm *ViewModel) ChatID() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.chatID
}
