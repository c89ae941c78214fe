package services

import (
	"context"

	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/domain/entities"
	"notes-backend/pkg/auth"
	pkgerrors "notes-backend/pkg/errors"
)

// AuthService is the credential store: it registers users and verifies
// login credentials. Session token minting lives in pkg/auth and is wired
// at the handler level.
type AuthService struct {
	users  ports.UserRepository
	hasher *auth.PasswordHasher
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users ports.UserRepository, hasher *auth.PasswordHasher, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

// Register creates a new user with a hashed password. The identifier is
// normalized before the uniqueness check, consistently with lookup.
func (s *AuthService) Register(ctx context.Context, username, password string) (*entities.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to hash password").WithCause(err)
	}

	user, err := entities.NewUser(username, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, nil
}

// Verify checks login credentials. An unknown identifier is not-found and
// a failed hash comparison is unauthorized; the two are deliberately
// distinct on the wire.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := s.users.GetByUsername(ctx, entities.NormalizeUsername(username))
	if err != nil {
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.logger.Warn("failed login attempt", zap.String("username", user.Username))
		return nil, pkgerrors.NewUnauthorizedError("invalid password")
	}

	return user, nil
}
