package bookshelf

import (
	"context"
	"errors"
	"time"

	"bookshelfapi/internal/book"
)

// ErrNotFound is returned when a bookshelf or association row does not exist.
var ErrNotFound = errors.New("bookshelf not found")

// ErrAlreadyShelved is returned when the (bookshelf, book, user) triple already
// has an association row.
var ErrAlreadyShelved = errors.New("book already on bookshelf")

// ErrInvalidReference is returned when a referenced bookshelf, book, or user
// does not exist.
var ErrInvalidReference = errors.New("invalid reference")

// Bookshelf is a user-owned named collection of books.
type Bookshelf struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Entry is the association row linking a book to a bookshelf for a user.
// The (bookshelf, book, user) triple is unique.
type Entry struct {
	ID          string    `json:"id"`
	BookshelfID string    `json:"bookshelf_id"`
	BookID      string    `json:"book_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntryPayload carries a new association row.
type EntryPayload struct {
	BookshelfID string
	BookID      string
	UserID      string
	Status      string
	Notes       *string
}

// ShelfTarget names where a found-or-created book should be shelved.
type ShelfTarget struct {
	BookshelfID string
	UserID      string
	Status      string
	Notes       *string
}

// Repository defines the contract for bookshelf storage.
type Repository interface {
	Create(ctx context.Context, userID, name, description string) (Bookshelf, error)
	GetByID(ctx context.Context, id string) (Bookshelf, []book.Book, error)
	ListByUser(ctx context.Context, userID string) ([]Bookshelf, error)
	Update(ctx context.Context, id, name, description string) (Bookshelf, error)
	Delete(ctx context.Context, id string) error

	AddBook(ctx context.Context, p EntryPayload) (Entry, error)
	UpdateEntry(ctx context.Context, bookshelfID, bookID, userID, status string, notes *string) (Entry, error)
	RemoveBook(ctx context.Context, bookshelfID, bookID, userID string) error

	// FindOrCreateAndShelve resolves a book by ISBN (creating it from the
	// payload when absent) and links it to the target bookshelf, atomically.
	FindOrCreateAndShelve(ctx context.Context, p book.CreatePayload, t ShelfTarget) (book.Book, Entry, error)
}
