package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book does not exist.
var ErrNotFound = errors.New("book not found")

// ErrDuplicateISBN is returned when a create collides with an existing ISBN.
var ErrDuplicateISBN = errors.New("isbn already exists")

// ErrInvalidReference is returned when a referenced row (creator) does not exist.
var ErrInvalidReference = errors.New("invalid reference")

// Book represents a catalog book. ISBN is the natural key; the store enforces
// its uniqueness.
type Book struct {
	ID          string    `json:"id"`
	ISBN        string    `json:"isbn"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Pages       int       `json:"pages"`
	Publisher   string    `json:"publisher"`
	Language    string    `json:"language"`
	PublishedAt time.Time `json:"published_at"`
	CreatedBy   *string   `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreatePayload carries the descriptive fields for a new book.
type CreatePayload struct {
	ISBN        string
	Title       string
	Author      string
	Pages       int
	Publisher   string
	Language    string
	PublishedAt time.Time
	CreatedBy   *string
}

// UpdatePayload carries optional field updates; nil means keep the current value.
type UpdatePayload struct {
	Title       *string
	Author      *string
	Pages       *int
	Publisher   *string
	Language    *string
	PublishedAt *time.Time
}

// Query defines filters and pagination for listing books.
type Query struct {
	Q         string
	Author    string
	Publisher string
	Language  string
	Limit     int
	Offset    int
}
