package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"KPlayer/logger"
	"KPlayer/model"
	"KPlayer/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingFields      = errors.New("email and password are required")
)

// TokenStore tracks live session token ids.
type TokenStore interface {
	Save(ctx context.Context, jti, uid string, ttl time.Duration) error
	Owner(ctx context.Context, jti string) (string, error)
	Revoke(ctx context.Context, jti string) error
}

// Identity is the signed-in user as seen by the rest of the application.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Token       string `json:"token,omitempty"`
}

// Service is the identity provider: accounts in the user repository, sessions
// as JWTs whose ids live in the token store.
type Service struct {
	users  repository.UserRepository
	tokens TokenStore
	secret []byte
	ttl    time.Duration
}

func NewService(users repository.UserRepository, tokens TokenStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, tokens: tokens, secret: []byte(secret), ttl: ttl}
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		DisplayName:  strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if _, err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			logger.Warn("sign-up with registered email", logger.String("email", email))
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	logger.Info("user registered", logger.String("uid", user.UID))
	return s.issue(ctx, user)
}

// SignIn checks credentials and starts a session. Unknown email and wrong
// password are reported the same way.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !VerifyPassword(password, user.PasswordHash) {
		logger.Warn("sign-in rejected", logger.String("email", email))
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

// SignOut revokes the session behind token. Signing out an already invalid
// token is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	logger.Info("user signed out", logger.String("uid", claims.UID))
	return nil
}

// Verify returns the identity behind a live token.
func (s *Service) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// the stored owner must match the uid the token claims
	owner, err := s.tokens.Owner(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if owner == "" || owner != claims.UID {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByUID(ctx, claims.UID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return toIdentity(user, token), nil
}

func (s *Service) issue(ctx context.Context, user *model.User) (*Identity, error) {
	token, claims, err := GenerateToken(s.secret, user.UID, user.Email, s.ttl)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, claims.ID, user.UID, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return toIdentity(user, token), nil
}

func toIdentity(user *model.User, token string) *Identity {
	return &Identity{
		UID:         user.UID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Token:       token,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
