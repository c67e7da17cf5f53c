package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"plugdrop/internal/domain"
	userrepo "plugdrop/internal/repository/user"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials hides whether the username or the password was
// wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken covers unknown and expired bearer tokens alike.
var ErrInvalidToken = errors.New("invalid token")

const defaultTokenTTL = 24 * time.Hour

// Service authenticates storefront accounts and issues opaque bearer
// tokens. Tokens live in memory; restarting the process logs everyone out.
type Service struct {
	users userrepo.Repository
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]session
}

type session struct {
	userID    string
	expiresAt time.Time
}

func New(users userrepo.Repository) *Service {
	return &Service{
		users:    users,
		ttl:      defaultTokenTTL,
		sessions: make(map[string]session),
	}
}

// Register creates an account with the given role and logs it in.
func (s *Service) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", domain.ValidationError{Reason: "username required"}
	}
	if len(password) < 6 {
		return nil, "", domain.ValidationError{Reason: "password must be at least 6 characters"}
	}
	switch role {
	case domain.RoleCustomer, domain.RoleCourier, domain.RoleAdmin:
	default:
		return nil, "", domain.ValidationError{Reason: "unknown role"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u, err := s.users.Create(ctx, domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, "", err
	}
	token, err := s.issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies the password and issues a fresh token.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Authenticate resolves a bearer token to its current account.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if ok && time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, sess.userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// Logout revokes a token. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *Service) issue(userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	s.mu.Lock()
	s.sessions[token] = session{userID: userID, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}
