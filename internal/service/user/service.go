// Package user handles signup, login and bearer-token resolution.
package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	userrepo "storefront/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	repo        userrepo.Repository
	tokenTTL    time.Duration
	passwordMin int
}

func New(repo userrepo.Repository) *Service {
	return &Service{
		repo:        repo,
		tokenTTL:    48 * time.Hour,
		passwordMin: 8,
	}
}

type SignupInput struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	password := strings.TrimSpace(in.Password)
	if len(password) < s.passwordMin {
		return nil, fmt.Errorf("password must be at least %d characters", s.passwordMin)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, userrepo.CreateInput{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hashed),
	})
}

// Login verifies credentials and issues a fresh opaque bearer token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return nil, "", err
		}
		err = s.repo.CreateToken(ctx, userrepo.Token{Token: token, UserID: u.ID, ExpiresAt: expiresAt})
		if err == nil {
			return u, token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return nil, "", err
	}
	return nil, "", errors.New("token collision")
}

// Resolve maps a bearer token to its user, including the current wallet
// balance.
func (s *Service) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.repo.DeleteToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
