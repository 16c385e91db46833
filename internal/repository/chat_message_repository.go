package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studyplanner/internal/model"
)

type ChatMessageRepository struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

func (r *ChatMessageRepository) Create(ctx context.Context, message *model.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create chat message failed: %w", err)
	}
	return nil
}

// Record persists msg synchronously. It is used in place of the queue publisher
// when no broker is configured.
func (r *ChatMessageRepository) Record(ctx context.Context, msg model.ChatMessage) error {
	msg.ID = 0
	return r.Create(ctx, &msg)
}

// ListRecent returns the newest limit messages in chronological order.
func (r *ChatMessageRepository) ListRecent(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var messages []model.ChatMessage
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
