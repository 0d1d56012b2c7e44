package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelfapi/internal/auth"
)

// fakeRepo is an in-memory Repository keyed by email.
type fakeRepo struct {
	byEmail map[string]User
	nextID  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]User{}}
}

func (f *fakeRepo) Create(ctx context.Context, u *User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return ErrAlreadyExists
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	var out []User
	for _, u := range f.byEmail {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, p UpdatePayload) (User, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	for email, u := range f.byEmail {
		if u.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return ErrNotFound
}

func newTestService() *Service {
	return NewService(newFakeRepo(), "test-secret", time.Hour)
}

func TestService_Register(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), "reader@example.com", "reader", "Rea", "Der", "Sup3rSecret")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "USER", u.Role)
	assert.NotEqual(t, "Sup3rSecret", u.Password)

	_, err = svc.Register(context.Background(), "reader@example.com", "reader2", "", "", "Sup3rSecret")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestService_RegisterRejectsWeakPasswords(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		password string
		wantErr  error
	}{
		{"short1A", auth.ErrPasswordTooShort},
		{"alllowercase1", auth.ErrPasswordNoUpper},
		{"ALLUPPERCASE1", auth.ErrPasswordNoLower},
		{"NoNumbersHere", auth.ErrPasswordNoNumber},
	}
	for _, tt := range tests {
		_, err := svc.Register(context.Background(), "weak@example.com", "weak", "", "", tt.password)
		assert.ErrorIs(t, err, tt.wantErr)
	}
}

func TestService_Login(t *testing.T) {
	svc := newTestService()

	registered, err := svc.Register(context.Background(), "reader@example.com", "reader", "", "", "Sup3rSecret")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		u, token, err := svc.Login(context.Background(), "reader@example.com", "Sup3rSecret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, u.ID)

		claims, err := auth.ParseToken("test-secret", token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.Sub)
		assert.Equal(t, "USER", claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "reader@example.com", "WrongPass1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "ghost@example.com", "Sup3rSecret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
