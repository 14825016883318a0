package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront-api/internal/domain"
	tokenrepo "storefront-api/internal/repository/token"
	userrepo "storefront-api/internal/repository/user"
)

// ErrInvalidCredentials covers both unknown email and wrong password, so a
// caller cannot enumerate which emails exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

type userRepo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter userrepo.ListFilter) ([]domain.User, int, error)
	Update(ctx context.Context, u domain.User) (*domain.User, error)
}

type Service struct {
	users  userRepo
	tokens *tokenManager
	logger *log.Logger
}

func New(users userRepo, tokens tokenrepo.Repository, tokenTTL time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		users:  users,
		tokens: newTokenManager(tokens, tokenTTL),
		logger: logger,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a customer account. Roles are never taken from the
// caller; admins and editors are promoted separately.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", domain.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.users.Create(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         domain.RoleCustomer,
		Status:       domain.UserActive,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("user service: registered user_id=%s", created.ID)
	return created, nil
}

// Session is an issued bearer token plus the user it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.Status != domain.UserActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: *u}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// GetByToken resolves a bearer token to its user. Expired or unknown tokens
// come back as ErrInvalidCredentials.
func (s *Service) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.GetByID(ctx, meta.UserID)
	if err != nil {
		return nil, err
	}
	if u.Status != domain.UserActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

type ProfileInput struct {
	FirstName *string
	LastName  *string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	return s.users.Update(ctx, *u)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	_, err = s.users.Update(ctx, *u)
	return err
}

func (s *Service) List(ctx context.Context, filter userrepo.ListFilter) ([]domain.User, int, error) {
	return s.users.List(ctx, filter)
}

type AdminUpdateInput struct {
	Role   *domain.Role
	Status *domain.UserStatus
}

func (s *Service) AdminUpdate(ctx context.Context, userID string, in AdminUpdateInput) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Role != nil {
		switch *in.Role {
		case domain.RoleAdmin, domain.RoleEditor, domain.RoleCustomer:
			u.Role = *in.Role
		default:
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *in.Role)
		}
	}
	if in.Status != nil {
		switch *in.Status {
		case domain.UserActive, domain.UserInactive:
			u.Status = *in.Status
		default:
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *in.Status)
		}
	}
	return s.users.Update(ctx, *u)
}
