package repository

import (
	"context"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/models"
)

// UserRepositoryInterface defines the contract for user directory operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	SetActive(ctx context.Context, userID uint, active bool) error
	ListContacts(ctx context.Context, excludeID uint) ([]models.User, error)
	UpdatePresence(ctx context.Context, userID uint, isOnline bool, at time.Time) (bool, error)
	ResetPresence(ctx context.Context) (int64, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// MessageRepositoryInterface defines the contract for message store operations
type MessageRepositoryInterface interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	// FindConversationAndMarkRead returns one page of the conversation between
	// reader and peer in ascending order and marks the page's unread messages
	// addressed to reader as read at the given time.
	FindConversationAndMarkRead(ctx context.Context, readerID, peerID uint, offset, limit int, at time.Time) ([]models.Message, int64, error)
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
}
