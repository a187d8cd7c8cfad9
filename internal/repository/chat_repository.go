package repository

import (
	"context"
	"effisense-go/internal/model"

	"gorm.io/gorm"
)

// ChatRepository stores the assistant conversation log.
type ChatRepository interface {
	AppendExchange(ctx context.Context, question, answer *model.ChatMessageLog) error
	Latest(ctx context.Context, userID uint, limit int) ([]model.ChatMessageLog, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a ChatRepository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// AppendExchange writes the user's question and the bot's answer together, in that order.
func (r *chatRepository) AppendExchange(ctx context.Context, question, answer *model.ChatMessageLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(question).Error; err != nil {
			return err
		}
		return tx.Omit("User").Create(answer).Error
	})
}

// Latest returns the user's most recent messages, oldest first.
func (r *chatRepository) Latest(ctx context.Context, userID uint, limit int) ([]model.ChatMessageLog, error) {
	var logs []model.ChatMessageLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}
