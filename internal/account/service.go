package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/JANE7J/DreamBalance-v2/internal/auth"
	"github.com/JANE7J/DreamBalance-v2/internal/domain"
	"github.com/JANE7J/DreamBalance-v2/internal/store"
)

var (
	// ErrMissingFields is returned when a registration lacks required fields
	ErrMissingFields = errors.New("missing fields")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the user persistence accounts need
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// Service registers users and logs them in
type Service struct {
	users  UserStore
	tokens TokenIssuer
}

// NewService creates an account service
func NewService(users UserStore, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// RegisterInput is a registration request
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Gender   string
}

// Session is what a successful register or login returns
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Register creates a user and opens a session for it
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Gender:       strings.TrimSpace(in.Gender),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", u.ID).Msg("user registered")
	return s.session(u)
}

// Login checks credentials and opens a session
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		zerolog.Ctx(ctx).Warn().Int64("user_id", u.ID).Msg("wrong password")
		return nil, ErrInvalidCredentials
	}

	return s.session(u)
}

func (s *Service) session(u *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, Username: u.Username}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
