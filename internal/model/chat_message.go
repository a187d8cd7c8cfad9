package model

import "time"

// MessageSender tags who wrote a chat log entry.
type MessageSender string

const (
	SenderUser MessageSender = "User"
	SenderBot  MessageSender = "Bot"
)

// ChatMessageLog is one side of an assistant exchange. Rows are append-only.
type ChatMessageLog struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index:idx_chat_user_ts,priority:1" json:"userId"`
	User        *User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MessageText string        `gorm:"type:text;not null" json:"messageText"`
	Sender      MessageSender `gorm:"type:varchar(10);not null" json:"sender"`
	// Timestamp is stored in UTC with millisecond precision.
	Timestamp time.Time `gorm:"not null;index:idx_chat_user_ts,priority:2" json:"timestamp"`
}

// TableName pins the table name.
func (ChatMessageLog) TableName() string {
	return "chat_message_logs"
}
