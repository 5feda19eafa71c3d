package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// ChatMessage is one entry of the admin chat log.
// The log doubles as the audit trail of the tip workflow.
type ChatMessage struct {
	ID        uint      `gorm:"primarykey"`
	Sender    string    `gorm:"size:64;not null"`
	Text      string    `gorm:"type:text"`
	Timestamp time.Time `gorm:"index"`
}

func (c *Client) CreateChatMessage(ctx context.Context, msg *ChatMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if err := c.db.WithContext(ctx).Create(msg).Error; err != nil {
		log.Error("failed to create chat message", "error", err)
		return err
	}
	return nil
}

// GetRecentChatMessages returns up to limit messages, newest first.
func (c *Client) GetRecentChatMessages(ctx context.Context, limit int) ([]ChatMessage, error) {
	var msgs []ChatMessage
	if err := c.db.WithContext(ctx).Order("timestamp DESC, id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		log.Error("failed to get chat messages", "error", err)
		return nil, err
	}
	return msgs, nil
}
