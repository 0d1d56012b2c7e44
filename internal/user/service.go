package user

import (
	"context"
	"errors"
	"time"

	"bookshelfapi/internal/auth"
)

// Service provides account business logic: registration, login, and the
// plain CRUD operations.
type Service struct {
	repo      Repository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *Service) Register(ctx context.Context, email, username, firstName, lastName, password string) (User, error) {
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return User{}, err
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	u := &User{
		Email:     email,
		Username:  username,
		Password:  hashed,
		FirstName: firstName,
		LastName:  lastName,
		Role:      "USER",
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return *u, nil
}

// Login verifies the credentials and issues a signed token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if !auth.VerifyPassword(u.Password, password) {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.jwtSecret, u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, id string, p UpdatePayload) (User, error) {
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
