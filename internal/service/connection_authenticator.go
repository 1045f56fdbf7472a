package service

//go:generate mockgen -destination=mock_identity_resolver_test.go -package=service github.com/alieuroshub001/euroshub-management/internal/auth IdentityResolver
//go:generate mockgen -source=connection_authenticator.go -destination=mock_user_directory_test.go -package=service

import (
	"context"

	"github.com/alieuroshub001/euroshub-management/internal/apperr"
	"github.com/alieuroshub001/euroshub-management/internal/auth"
	"github.com/alieuroshub001/euroshub-management/internal/metrics"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserDirectory looks up the account behind a resolved identity.
type UserDirectory interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// ConnectionAuthenticator gatekeeps websocket handshakes and API requests.
type ConnectionAuthenticator struct {
	resolver auth.IdentityResolver
	users    UserDirectory
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewConnectionAuthenticator(resolver auth.IdentityResolver, users UserDirectory, m *metrics.Metrics, log *zap.Logger) *ConnectionAuthenticator {
	return &ConnectionAuthenticator{
		resolver: resolver,
		users:    users,
		metrics:  m,
		log:      log,
	}
}

// Authenticate resolves credential and binds a fresh ConnContext to it.
// Every failure is an AuthenticationError.
func (a *ConnectionAuthenticator) Authenticate(ctx context.Context, credential string) (ConnContext, error) {
	identity, err := a.resolver.Resolve(credential)
	if err != nil {
		return a.reject(err)
	}

	user, err := a.users.FindByID(ctx, identity.UserID)
	if err != nil {
		return a.reject(apperr.Authentication("unknown user", err))
	}
	if !user.IsActive {
		return a.reject(apperr.Authentication("inactive user", nil))
	}

	return ConnContext{
		ConnID:   uuid.New(),
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (a *ConnectionAuthenticator) reject(err error) (ConnContext, error) {
	a.metrics.AuthFailed()
	if !apperr.IsAuthentication(err) {
		err = apperr.Authentication("invalid credential", err)
	}
	a.log.Debug("credential rejected", zap.Error(err))
	return ConnContext{}, err
}
