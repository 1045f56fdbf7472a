package service

import (
	"context"
	"errors"
	"sort"

	"github.com/alieuroshub001/euroshub-management/internal/apperr"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/alieuroshub001/euroshub-management/internal/repository"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ConnectionLookup reports whether an identity has a live connection.
type ConnectionLookup interface {
	IsConnected(userID uint) bool
}

type UserService struct {
	userRepo repository.UserRepositoryInterface
	presence ConnectionLookup
}

func NewUserService(userRepo repository.UserRepositoryInterface, presence ConnectionLookup) *UserService {
	return &UserService{userRepo: userRepo, presence: presence}
}

// ListContacts returns every other active user, online users first and then
// by most recent activity. The online flag reflects live connections, not
// the stored column.
func (s *UserService) ListContacts(ctx context.Context, callerID uint) ([]models.ContactResponse, error) {
	users, err := s.userRepo.ListContacts(ctx, callerID)
	if err != nil {
		return nil, apperr.Persistence("list contacts", err)
	}
	contacts := lo.Map(users, func(u models.User, _ int) models.ContactResponse {
		c := u.ToContact()
		c.IsOnline = s.presence.IsConnected(u.ID)
		return c
	})
	sort.SliceStable(contacts, func(i, j int) bool {
		a, b := contacts[i], contacts[j]
		if a.IsOnline != b.IsOnline {
			return a.IsOnline
		}
		if (a.LastSeen == nil) != (b.LastSeen == nil) {
			return a.LastSeen != nil
		}
		if a.LastSeen != nil && !a.LastSeen.Equal(*b.LastSeen) {
			return a.LastSeen.After(*b.LastSeen)
		}
		return false
	})
	return contacts, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("userId", "User not found")
		}
		return nil, apperr.Persistence("find user", err)
	}
	return user, nil
}
