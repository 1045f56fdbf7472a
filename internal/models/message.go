package models

import (
	"time"
)

// Message is a point-to-point chat message. Content is immutable; the only
// mutation is the one-way IsRead transition, which sets ReadAt.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_messages_pair,priority:3" json:"createdAt"`

	SenderID   uint `gorm:"not null;index:idx_messages_pair,priority:1" json:"senderId"`
	Sender     User `gorm:"foreignKey:SenderID" json:"-"`
	ReceiverID uint `gorm:"not null;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1" json:"receiverId"`
	Receiver   User `gorm:"foreignKey:ReceiverID" json:"-"`

	Content string `gorm:"type:text;not null" json:"content"`

	IsRead bool       `gorm:"not null;default:false;index:idx_messages_unread,priority:2" json:"isRead"`
	ReadAt *time.Time `json:"readAt"`
}

type MessageResponse struct {
	ID         uint        `json:"id"`
	SenderID   uint        `json:"senderId"`
	Sender     UserSummary `json:"sender"`
	ReceiverID uint        `json:"receiverId"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	IsRead     bool        `json:"isRead"`
	ReadAt     *time.Time  `json:"readAt"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:       m.ID,
		SenderID: m.SenderID,
		Sender: UserSummary{
			ID:       m.SenderID,
			Username: m.Sender.Username,
		},
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
		IsRead:     m.IsRead,
		ReadAt:     m.ReadAt,
	}
}

// IsBetween reports whether the message belongs to the conversation of a and b.
func (m *Message) IsBetween(a, b uint) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}
