package chat

import "time"

// Sender roles recorded in the history log.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is one row of the append-only history log. Rows are created once on
// send and never updated or deleted; derived views are recomputed at read time.
type Message struct {
	// Seq breaks ties between rows sharing a timestamp: reads order by
	// (created_at, seq), so equal timestamps resolve to insertion order.
	Seq       uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string    `gorm:"uniqueIndex;size:36" json:"id"`
	OwnerID   string    `gorm:"index;not null;size:64" json:"-"`
	ChatID    string    `gorm:"index;size:64" json:"chatId,omitempty"`
	Role      string    `gorm:"not null;size:16" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "chat_history"
}
