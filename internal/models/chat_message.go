package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessage struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	SenderID    string    `json:"sender" gorm:"column:sender;size:36;not null;index:idx_chat_pair"`
	RecipientID string    `json:"recipient" gorm:"column:recipient;size:36;not null;index:idx_chat_pair"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"column:sent_at;not null;index"`
	Read        bool      `json:"read" gorm:"column:is_read;not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
