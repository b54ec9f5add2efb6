package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

// AuthService implements registration, login and profile lookups.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenIssuer
	hasher ports.PasswordHasher
	clock  clockwork.Clock
	logger zerolog.Logger

	// decoy is compared against when the identifier matches nobody, so an
	// unknown user costs the same as a wrong password.
	decoy string
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, hasher ports.PasswordHasher, clk clockwork.Clock, logger zerolog.Logger) (*AuthService, error) {
	decoy, err := hasher.Hash("decoy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare decoy hash: %w", err)
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &AuthService{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
		clock:  clk,
		logger: logger.With().Str("component", "auth").Logger(),
		decoy:  decoy,
	}, nil
}

// Register creates a user with the default role and logs them in.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return "", nil, domain.NewValidationError("username, email and password are required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    s.clock.Now().UTC(),
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return token, user, nil
}

// Login accepts a username or an email. Unknown users and wrong passwords
// both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", nil, domain.NewValidationError("username and password are required")
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.hasher.Compare(s.decoy, password)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if s.hasher.Compare(user.PasswordHash, password) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Profile returns the stored record of the caller.
func (s *AuthService) Profile(ctx context.Context, actor domain.Identity) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Staff lists every admin and super admin.
func (s *AuthService) Staff(ctx context.Context) ([]*domain.User, error) {
	return s.repo.ListByRoles(ctx, domain.RoleAdmin, domain.RoleSuperAdmin)
}
