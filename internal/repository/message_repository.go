package repository

import (
	"context"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).Preload("Sender").First(&message, id).Error
	return &message, err
}

func (r *MessageRepository) FindConversationAndMarkRead(ctx context.Context, readerID, peerID uint, offset, limit int, at time.Time) ([]models.Message, int64, error) {
	var messages []models.Message
	var marked int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Newest first so page 1 is the latest window; reversed below.
		if err := tx.Preload("Sender").
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				readerID, peerID, peerID, readerID).
			Order("created_at DESC").
			Order("id DESC").
			Offset(offset).
			Limit(limit).
			Find(&messages).Error; err != nil {
			return err
		}

		unread := make([]uint, 0, len(messages))
		for _, m := range messages {
			if m.ReceiverID == readerID && !m.IsRead {
				unread = append(unread, m.ID)
			}
		}
		if len(unread) == 0 {
			return nil
		}

		// Conditional on is_read so concurrent fetches never overwrite read_at.
		res := tx.Model(&models.Message{}).
			Where("id IN ? AND receiver_id = ? AND is_read = ?", unread, readerID, false).
			Updates(map[string]interface{}{
				"is_read": true,
				"read_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		marked = res.RowsAffected

		var fresh []models.Message
		if err := tx.Select("id", "is_read", "read_at").Where("id IN ?", unread).Find(&fresh).Error; err != nil {
			return err
		}
		state := make(map[uint]models.Message, len(fresh))
		for _, f := range fresh {
			state[f.ID] = f
		}
		for i := range messages {
			if f, ok := state[messages[i].ID]; ok {
				messages[i].IsRead = f.IsRead
				messages[i].ReadAt = f.ReadAt
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, marked, nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&count).Error
	return count, err
}
