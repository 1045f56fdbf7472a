package service

import (
	"context"
	"errors"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/apperr"
	"github.com/alieuroshub001/euroshub-management/internal/auth"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/alieuroshub001/euroshub-management/internal/repository"
	"github.com/alieuroshub001/euroshub-management/internal/validation"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo repository.UserRepositoryInterface
	tokens   *auth.JWTManager
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepositoryInterface, tokens *auth.JWTManager, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateUserInput struct {
	Username  string `json:"username" validate:"required,username"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Role      string `json:"role" validate:"required,role"`
}

type UpdateUserStatusInput struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type AuthResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      models.UserResponse `json:"user"`
}

var errInvalidCredentials = apperr.Authentication("invalid credentials", nil)

// Login checks a username and password and issues an access token. Only
// active users may log in.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, validation.NormalizeUsername(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperr.Persistence("find user", err)
	}
	if !user.IsActive {
		return nil, errInvalidCredentials
	}

	// Compare password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToResponse(),
	}, nil
}

// CreateUser adds an active account. Callers must hold CapManageUsers.
func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	input.Username = validation.NormalizeUsername(input.Username)
	input.Email = validation.NormalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	// Check if user exists
	if _, err := s.userRepo.FindByUsernameOrEmail(ctx, input.Username, input.Email); err == nil {
		return nil, apperr.Validation("username", "Username or email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Persistence("find user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    validation.TrimAndLimit(input.FirstName, 50),
		LastName:     validation.TrimAndLimit(input.LastName, 50),
		Role:         models.Role(input.Role),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperr.Persistence("create user", err)
	}
	return user, nil
}

// ListUsers returns every account, newest first. Callers must hold
// CapManageUsers.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.UserResponse, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Persistence("list users", err)
	}
	return lo.Map(users, func(u models.User, _ int) models.UserResponse {
		return u.ToResponse()
	}), nil
}

// SetUserStatus activates or deactivates userID on behalf of actorID. A
// deactivated user is refused at the next handshake, request or login.
func (s *AuthService) SetUserStatus(ctx context.Context, actorID, userID uint, input UpdateUserStatusInput) (*models.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	active := *input.IsActive
	if actorID == userID && !active {
		return nil, apperr.Validation("isActive", "You cannot deactivate your own account")
	}

	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("userId", "User not found")
		}
		return nil, apperr.Persistence("update user status", err)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("find user", err)
	}
	s.log.Info("user status changed",
		zap.Uint("user_id", userID),
		zap.Uint("actor_id", actorID),
		zap.Bool("active", active),
	)
	return user, nil
}

// EnsureSuperAdmin creates the bootstrap superadmin account unless a user
// with that username already exists. Empty credentials disable seeding.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, username, password string) error {
	username = validation.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil
	}

	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Persistence("find superadmin", err)
	}
	if !validation.ValidatePassword(password) {
		return apperr.Validation("password", "Superadmin password is too short")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@euroshub.local",
		PasswordHash: string(hashedPassword),
		FirstName:    "Super",
		LastName:     "Admin",
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return apperr.Persistence("create superadmin", err)
	}
	s.log.Info("superadmin account created", zap.String("username", username))
	return nil
}
