package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"messenger/internal/domain"
	"messenger/internal/security"
)

// AuthService handles registration, login, logout and session resolution.
type AuthService struct {
	users   domain.UserRepository
	tokens  *security.TokenService
	hash    *security.PasswordHasher
	revoked security.Revocations
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher, revoked security.Revocations) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		hash:    hash,
		revoked: revoked,
	}
}

type RegisterInput struct {
	Username    string
	Password    string
	DisplayName *string
	Email       *string
}

type LoginInput struct {
	Username string
	Password string
}

type TokenResponse struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	User        *domain.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "username and password are required")
	}

	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if existing != nil {
		return nil, domain.Errorf(domain.ErrConflict, "username already registered")
	}

	var email *string
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		e := strings.TrimSpace(*in.Email)
		if existing, err := s.users.GetByEmail(ctx, e); err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		} else if existing != nil {
			return nil, domain.Errorf(domain.ErrConflict, "email already registered")
		}
		email = &e
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := username
	if in.DisplayName != nil && strings.TrimSpace(*in.DisplayName) != "" {
		displayName = strings.TrimSpace(*in.DisplayName)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		DisplayName:  displayName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials. Unknown users and wrong passwords are
// indistinguishable; anonymized accounts are rejected as forbidden.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "username and password are required")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.Errorf(domain.ErrUnauthorized, "incorrect username or password")
	}
	if user.IsDeleted {
		return nil, domain.Errorf(domain.ErrForbidden, "user account has been deleted")
	}
	if err := s.hash.Verify(password, user.PasswordHash); err != nil {
		return nil, domain.Errorf(domain.ErrUnauthorized, "incorrect username or password")
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.CreateForUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.tokens.TTL(),
		User:        user,
	}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *security.Claims) error {
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// CurrentUser resolves a bearer token to a live user.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, *security.Claims, error) {
	unauthorized := domain.Errorf(domain.ErrUnauthorized, "could not validate credentials")

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, unauthorized
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, unauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, unauthorized
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || user.IsDeleted {
		return nil, nil, unauthorized
	}
	return user, claims, nil
}
