package user

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrAlreadyExists is returned when the email or username is taken.
var ErrAlreadyExists = errors.New("user already exists")

// ErrInvalidCredentials is returned on a failed login attempt. It deliberately
// does not distinguish unknown email from wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is an account. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdatePayload carries a partial user update. Nil fields are left unchanged.
type UpdatePayload struct {
	Username  *string
	FirstName *string
	LastName  *string
}

// Repository defines the contract for user storage.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, limit, offset int) ([]User, int, error)
	Update(ctx context.Context, id string, p UpdatePayload) (User, error)
	Delete(ctx context.Context, id string) error
}
