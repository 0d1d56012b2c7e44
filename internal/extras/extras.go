// Package extras holds the document-store side data for books: cover images
// and reader reviews. It lives in Badger, not Postgres, so it is only
// eventually consistent with the relational catalog. A cover or review can
// reference a book that was deleted moments ago; readers tolerate that.
package extras

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a cover or review does not exist.
var ErrNotFound = errors.New("document not found")

// Cover is the stored cover image for a book: raw bytes plus the MIME type
// they were uploaded with. One cover per book; writes overwrite.
type Cover struct {
	BookID     string    `json:"book_id"`
	Data       []byte    `json:"data"`
	MimeType   string    `json:"mime_type"`
	UploadedBy string    `json:"uploaded_by"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Review is a reader review of a book.
type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
