package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront-api/internal/domain"
	tokenrepo "storefront-api/internal/repository/token"
	userrepo "storefront-api/internal/repository/user"
)

type stubUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
	created *domain.User
	updated *domain.User
}

func (s *stubUserRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	u.ID = "u-new"
	s.created = &u
	return &u, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) List(_ context.Context, _ userrepo.ListFilter) ([]domain.User, int, error) {
	return nil, 0, nil
}

func (s *stubUserRepo) Update(_ context.Context, u domain.User) (*domain.User, error) {
	s.updated = &u
	return &u, nil
}

type memTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]tokenrepo.Token{}}
}

func (s *memTokenRepo) Create(_ context.Context, t tokenrepo.Token) error {
	if _, ok := s.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *memTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *memTokenRepo) Delete(_ context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}

func (s *memTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for k, t := range s.tokens {
		if now.After(t.ExpiresAt) {
			delete(s.tokens, k)
			n++
		}
	}
	return n, nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func activeUser(t *testing.T) *domain.User {
	t.Helper()
	return &domain.User{
		ID:           "u1",
		Email:        "shopper@example.com",
		PasswordHash: hashOf(t, "hunter2secret"),
		Role:         domain.RoleCustomer,
		Status:       domain.UserActive,
	}
}

func newService(users *stubUserRepo, tokens tokenrepo.Repository) *Service {
	return New(users, tokens, time.Hour, nil)
}

func TestRegisterCreatesCustomer(t *testing.T) {
	repo := &stubUserRepo{byEmail: map[string]*domain.User{}}
	svc := newService(repo, newMemTokenRepo())

	created, err := svc.Register(context.Background(), RegisterInput{
		Email:     "  New@Example.COM ",
		Password:  "longenough",
		FirstName: "Ada",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Email != "new@example.com" {
		t.Fatalf("email = %s, want lowercased trimmed", created.Email)
	}
	if created.Role != domain.RoleCustomer {
		t.Fatalf("role = %s, want customer", created.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("longenough")) != nil {
		t.Fatalf("stored hash does not match password")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newService(&stubUserRepo{byEmail: map[string]*domain.User{}}, newMemTokenRepo())
	if _, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "short"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoginIssuesToken(t *testing.T) {
	u := activeUser(t)
	repo := &stubUserRepo{
		byEmail: map[string]*domain.User{u.Email: u},
		byID:    map[string]*domain.User{u.ID: u},
	}
	tokens := newMemTokenRepo()
	svc := newService(repo, tokens)

	session, err := svc.Login(context.Background(), "Shopper@Example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("empty token")
	}
	if _, ok := tokens.tokens[session.Token]; !ok {
		t.Fatalf("token not persisted")
	}

	got, err := svc.GetByToken(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("resolved user = %s, want u1", got.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	u := activeUser(t)
	repo := &stubUserRepo{byEmail: map[string]*domain.User{u.Email: u}}
	svc := newService(repo, newMemTokenRepo())

	_, err := svc.Login(context.Background(), u.Email, "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newService(&stubUserRepo{byEmail: map[string]*domain.User{}}, newMemTokenRepo())
	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	u := activeUser(t)
	u.Status = domain.UserInactive
	repo := &stubUserRepo{byEmail: map[string]*domain.User{u.Email: u}}
	svc := newService(repo, newMemTokenRepo())

	_, err := svc.Login(context.Background(), u.Email, "hunter2secret")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestExpiredTokenIsDeletedOnUse(t *testing.T) {
	u := activeUser(t)
	repo := &stubUserRepo{byID: map[string]*domain.User{u.ID: u}}
	tokens := newMemTokenRepo()
	tokens.tokens["stale"] = tokenrepo.Token{
		Token:     "stale",
		UserID:    u.ID,
		Kind:      "access",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	svc := newService(repo, tokens)

	_, err := svc.GetByToken(context.Background(), "stale")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, ok := tokens.tokens["stale"]; ok {
		t.Fatalf("expired token was not deleted")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	u := activeUser(t)
	repo := &stubUserRepo{
		byEmail: map[string]*domain.User{u.Email: u},
		byID:    map[string]*domain.User{u.ID: u},
	}
	tokens := newMemTokenRepo()
	svc := newService(repo, tokens)

	session, err := svc.Login(context.Background(), u.Email, "hunter2secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetByToken(context.Background(), session.Token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("revoked token still resolves: %v", err)
	}
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	u := activeUser(t)
	repo := &stubUserRepo{byID: map[string]*domain.User{u.ID: u}}
	svc := newService(repo, newMemTokenRepo())

	if err := svc.ChangePassword(context.Background(), u.ID, "not-it", "newpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "hunter2secret", "newpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updated == nil || bcrypt.CompareHashAndPassword([]byte(repo.updated.PasswordHash), []byte("newpassword")) != nil {
		t.Fatalf("new password hash not persisted")
	}
}

func TestAdminUpdateRejectsUnknownRole(t *testing.T) {
	u := activeUser(t)
	repo := &stubUserRepo{byID: map[string]*domain.User{u.ID: u}}
	svc := newService(repo, newMemTokenRepo())

	bad := domain.Role("superuser")
	if _, err := svc.AdminUpdate(context.Background(), u.ID, AdminUpdateInput{Role: &bad}); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
