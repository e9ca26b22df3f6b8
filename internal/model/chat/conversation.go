package chat

// Conversation is a read-time projection over the history log: all messages
// sharing an owner and chat id, ordered ascending by timestamp. It has no
// stored representation and no lifecycle of its own.
type Conversation struct {
	ChatID      string    `json:"chatId"`
	Messages    []Message `json:"messages"`
	LastMessage Message   `json:"lastMessage"`
}
