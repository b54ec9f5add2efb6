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

// PrivilegedAccount describes a staff account provisioned at startup.
type PrivilegedAccount struct {
	Username string      `yaml:"username"`
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Role     domain.Role `yaml:"role"`
}

// Seeder is the out-of-band path that grants staff roles. No HTTP endpoint
// changes a role.
type Seeder struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	clock  clockwork.Clock
	logger zerolog.Logger
}

func NewSeeder(repo ports.UserRepository, hasher ports.PasswordHasher, clk clockwork.Clock, logger zerolog.Logger) *Seeder {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Seeder{repo: repo, hasher: hasher, clock: clk, logger: logger.With().Str("component", "seed").Logger()}
}

// Ensure creates the account when missing, or sets its role when it exists.
// The password of an existing account is left alone.
func (s *Seeder) Ensure(ctx context.Context, acct PrivilegedAccount) error {
	acct.Username = strings.TrimSpace(acct.Username)
	acct.Email = strings.TrimSpace(acct.Email)
	if acct.Username == "" {
		return domain.NewValidationError("seed account needs a username")
	}
	if !acct.Role.IsStaff() {
		return domain.NewValidationError(fmt.Sprintf("seed account %q: role must be admin or super_admin", acct.Username))
	}

	existing, err := s.repo.FindByIdentifier(ctx, acct.Username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return s.create(ctx, acct)
	case err != nil:
		return fmt.Errorf("seed lookup %q: %w", acct.Username, err)
	}

	if existing.Role == acct.Role {
		return nil
	}
	if err := s.repo.SetRole(ctx, existing.ID, acct.Role); err != nil {
		return fmt.Errorf("seed role %q: %w", acct.Username, err)
	}
	s.logger.Info().Str("username", acct.Username).Str("role", string(acct.Role)).Msg("role granted")
	return nil
}

// EnsureAll applies every account and stops at the first failure.
func (s *Seeder) EnsureAll(ctx context.Context, accounts []PrivilegedAccount) error {
	for _, acct := range accounts {
		if err := s.Ensure(ctx, acct); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) create(ctx context.Context, acct PrivilegedAccount) error {
	if acct.Email == "" || acct.Password == "" {
		return domain.NewValidationError(fmt.Sprintf("seed account %q: email and password are required to create it", acct.Username))
	}
	hash, err := s.hasher.Hash(acct.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.repo.Create(ctx, &domain.User{
		Username:     acct.Username,
		Email:        acct.Email,
		PasswordHash: hash,
		Role:         acct.Role,
		CreatedAt:    s.clock.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("seed create %q: %w", acct.Username, err)
	}
	s.logger.Info().Str("username", acct.Username).Str("role", string(acct.Role)).Msg("staff account created")
	return nil
}
