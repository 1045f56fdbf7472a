package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/apperr"
	"github.com/alieuroshub001/euroshub-management/internal/metrics"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/alieuroshub001/euroshub-management/internal/repository"
	"github.com/alieuroshub001/euroshub-management/internal/validation"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// MessageService is the durable message store.
type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	maxLength   int
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewMessageService(messageRepo repository.MessageRepositoryInterface, userRepo repository.UserRepositoryInterface, maxLength int, m *metrics.Metrics) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		maxLength:   maxLength,
		metrics:     m,
		now:         time.Now,
	}
}

// Append validates and persists a message from sender to receiver and
// returns the stored record with its sender loaded.
func (s *MessageService) Append(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	content, err := validation.MessageContent(content, s.maxLength)
	if err != nil {
		return nil, err
	}
	if receiverID == 0 {
		return nil, apperr.Validation("receiverId", "Receiver is required")
	}
	if receiverID == senderID {
		return nil, apperr.Validation("receiverId", "Cannot send a message to yourself")
	}

	if _, err := s.userRepo.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("receiverId", "Receiver not found")
		}
		return nil, apperr.Persistence("find receiver", err)
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, apperr.Persistence("create message", err)
	}

	// Load sender info
	saved, err := s.messageRepo.FindByID(ctx, message.ID)
	if err != nil {
		return nil, apperr.Persistence("load message", err)
	}
	return saved, nil
}

// ListConversation returns page of the conversation between caller and peer
// in ascending order. Page 1 holds the most recent messages. Unread messages
// in the page addressed to caller are marked read.
func (s *MessageService) ListConversation(ctx context.Context, callerID, peerID uint, page, limit int) ([]models.Message, error) {
	if peerID == 0 {
		return nil, apperr.Validation("receiverId", "Invalid user ID")
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page-1 > math.MaxInt32/limit {
		return nil, apperr.Validation("page", "Page is out of range")
	}

	messages, marked, err := s.messageRepo.FindConversationAndMarkRead(ctx, callerID, peerID, (page-1)*limit, limit, s.now())
	if err != nil {
		return nil, apperr.Persistence("list conversation", err)
	}
	s.metrics.MarkedRead(marked)
	return messages, nil
}

func (s *MessageService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	count, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Persistence("count unread", err)
	}
	return count, nil
}
