package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/modportal/portal-api/internal/core/domain"
)

func newTestAuthService(t *testing.T, repo *stubUserRepo) (*AuthService, *TokenService) {
	t.Helper()
	tokens := NewTokenService("secret", 0, newTestClock())
	svc, err := NewAuthService(repo, tokens, newTestHasher(), newTestClock(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc, tokens
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(t, repo)

	token, user, err := svc.Register(context.Background(), "alice", "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", user.Role)
	}
	if user.PasswordHash == "pass123" || user.PasswordHash == "" {
		t.Fatalf("expected password to be hashed")
	}
	if err := newTestHasher().Compare(user.PasswordHash, "pass123"); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("registration token invalid: %v", err)
	}
	if claims != user.Identity() {
		t.Fatalf("expected claims %+v, got %+v", user.Identity(), claims)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	cases := [][3]string{
		{"", "a@example.com", "pw"},
		{"alice", "", "pw"},
		{"alice", "a@example.com", ""},
		{"   ", "a@example.com", "pw"},
	}
	for _, c := range cases {
		if _, _, err := svc.Register(context.Background(), c[0], c[1], c[2]); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("Register(%q, %q, %q): expected ErrValidation, got %v", c[0], c[1], c[2], err)
		}
	}
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	_, _, err := svc.Register(context.Background(), "alice", "alice@example.com", strings.Repeat("x", 80))
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Msg != "password must be at most 72 bytes" {
		t.Fatalf("unexpected message %q", ve.Msg)
	}
	if len(repo.users) != 0 {
		t.Fatalf("no user should be stored")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "bob", "bob@example.com", "pass"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "bob", "other@example.com", "pass"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("same username: expected ErrUserExists, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "robert", "bob@example.com", "pass"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("same email: expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_ByUsernameOrEmail(t *testing.T) {
	svc, tokens := newTestAuthService(t, newStubUserRepo())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "carol", "carol@example.com", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for _, identifier := range []string{"carol", "carol@example.com"} {
		token, user, err := svc.Login(ctx, identifier, "s3cret")
		if err != nil {
			t.Fatalf("login with %q failed: %v", identifier, err)
		}
		if user.Username != "carol" {
			t.Fatalf("unexpected user: %+v", user)
		}
		claims, err := tokens.Verify(token)
		if err != nil || claims.Username != "carol" {
			t.Fatalf("login token invalid: %v %+v", err, claims)
		}
	}
}

func TestAuthService_Login_DoesNotRevealWhichFieldFailed(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())
	ctx := context.Background()
	_, _, _ = svc.Register(ctx, "dave", "dave@example.com", "goodpass")

	_, _, wrongPassword := svc.Login(ctx, "dave", "badpass")
	_, _, unknownUser := svc.Login(ctx, "ghost", "goodpass")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) || !errors.Is(unknownUser, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", wrongPassword, unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownUser)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)
	repo.err = errStore

	if _, _, err := svc.Login(context.Background(), "dave", "pw"); !errors.Is(err, errStore) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}

func TestAuthService_ProfileAndStaff(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)
	ctx := context.Background()

	_, user, _ := svc.Register(ctx, "erin", "erin@example.com", "pw")
	_, admin, _ := svc.Register(ctx, "frank", "frank@example.com", "pw")
	if err := repo.SetRole(ctx, admin.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}

	profile, err := svc.Profile(ctx, user.Identity())
	if err != nil || profile.Username != "erin" {
		t.Fatalf("unexpected profile: %+v %v", profile, err)
	}

	staff, err := svc.Staff(ctx)
	if err != nil {
		t.Fatalf("Staff: %v", err)
	}
	if len(staff) != 1 || staff[0].Username != "frank" {
		t.Fatalf("expected only frank as staff, got %+v", staff)
	}
}
