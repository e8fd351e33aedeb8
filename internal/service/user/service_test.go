package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	userrepo "storefront/internal/repository/user"
)

type stubRepo struct {
	users  map[string]domain.User
	tokens map[string]userrepo.Token

	created []userrepo.CreateInput
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:  map[string]domain.User{},
		tokens: map[string]userrepo.Token{},
	}
}

func (s *stubRepo) Create(_ context.Context, in userrepo.CreateInput) (*domain.User, error) {
	if _, ok := s.users[in.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	u := domain.User{ID: int64(len(s.users) + 1), Name: in.Name, Email: in.Email, PasswordHash: in.PasswordHash}
	s.users[in.Email] = u
	s.created = append(s.created, in)
	return &u, nil
}

func (s *stubRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *stubRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) CreateToken(_ context.Context, t userrepo.Token) error {
	if _, ok := s.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *stubRepo) GetByToken(_ context.Context, token string) (*domain.User, error) {
	t, ok := s.tokens[token]
	if !ok || t.ExpiresAt.Before(time.Now()) {
		return nil, domain.ErrNotFound
	}
	for _, u := range s.users {
		if u.ID == t.UserID {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) DeleteToken(_ context.Context, token string) error {
	if _, ok := s.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(s.tokens, token)
	return nil
}

func TestSignupNormalizesAndHashes(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo)

	u, err := svc.Signup(context.Background(), SignupInput{
		Name:     "  Ada  ",
		Email:    "Ada@Example.COM",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("got email %q, want lowercased", u.Email)
	}
	if u.Name != "Ada" {
		t.Fatalf("got name %q, want trimmed", u.Name)
	}
	hash := repo.created[0].PasswordHash
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	svc := New(newStubRepo())

	if _, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "short",
	}); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo)

	if _, err := svc.Signup(context.Background(), SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	u, token, err := svc.Login(context.Background(), LoginInput{
		Email: "ada@example.com", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	resolved, err := svc.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.ID != u.ID {
		t.Fatalf("resolved user %d, want %d", resolved.ID, u.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo)

	if _, err := svc.Signup(context.Background(), SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	_, _, err := svc.Login(context.Background(), LoginInput{
		Email: "ada@example.com", Password: "wrong horse",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}

	_, _, err = svc.Login(context.Background(), LoginInput{
		Email: "nobody@example.com", Password: "correct horse",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials for unknown email", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo)

	if _, err := svc.Signup(context.Background(), SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	_, token, err := svc.Login(context.Background(), LoginInput{
		Email: "ada@example.com", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized after logout", err)
	}
	// Logging out twice is fine.
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}
