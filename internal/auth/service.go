// Package auth handles user accounts and JWT-based API authentication.
//
// Passwords are stored as bcrypt hashes. Access tokens are HS256 JWTs
// carrying the user's identity and role; the secret and TTL come from
// configuration. Registration can be restricted to one email domain for
// campus deployments.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/config"
)

const minPasswordLength = 8

// Claims is the JWT payload for an access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Logger is the minimal logging surface the service needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Service implements registration, login, and token verification.
type Service struct {
	users         UserRepository
	secret        []byte
	tokenTTL      time.Duration
	allowedDomain string
	logger        Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewService creates an auth Service from JWT configuration.
func NewService(users UserRepository, cfg config.JWTConfig, logger Logger) *Service {
	return &Service{
		users:         users,
		secret:        []byte(cfg.Secret),
		tokenTTL:      time.Duration(cfg.AccessTokenTTL) * time.Minute,
		allowedDomain: cfg.AllowedDomain,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates a viewer account and returns it.
//
// The email must belong to the allowed domain when one is configured.
// Duplicate emails return ErrEmailTaken.
func (s *Service) Register(ctx context.Context, email, name, password string) (*User, error) {
	email = normalizeEmail(email)
	if err := s.checkDomain(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         RoleViewer,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "email", email)
	return u, nil
}

// Login verifies the credentials and returns a signed access token with
// the user it belongs to.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.logger.Warn("failed login attempt", "email", u.Email)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// VerifyToken parses and validates an access token.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SeedAdmin creates the initial admin account when the user table is
// empty. Subsequent startups are no-ops.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking user store: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	u := &User{
		Email:        normalizeEmail(email),
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         RoleAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}

	s.logger.Info("admin account seeded", "email", u.Email)
	return nil
}

func (s *Service) issueToken(u *User) (string, error) {
	now := s.now()
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (s *Service) checkDomain(email string) error {
	if s.allowedDomain == "" {
		return nil
	}
	if !strings.HasSuffix(email, "@"+s.allowedDomain) {
		return ErrDomainNotAllowed
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
