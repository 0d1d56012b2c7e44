package extras

import (
	"context"
	"errors"

	"bookshelfapi/internal/book"
)

// ErrForbidden is returned when a user tries to replace a cover on a book
// someone else created.
var ErrForbidden = errors.New("not allowed to modify this cover")

// Service ties the document store to the relational catalog. Covers are
// checked against the catalog before writing; reviews are written without a
// catalog round trip and may outlive their book.
type Service struct {
	store *Store
	books *book.Service
}

func NewService(store *Store, books *book.Service) *Service {
	return &Service{store: store, books: books}
}

// PutCover stores the raw image bytes after verifying the book exists and the
// caller is allowed to touch it. Admins and the book's creator may write;
// books with no recorded creator are open to any authenticated user.
func (s *Service) PutCover(ctx context.Context, bookID, userID, role string, data []byte, mimeType string) (Cover, error) {
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return Cover{}, err
	}
	if b.CreatedBy != nil && *b.CreatedBy != userID && role != "ADMIN" {
		return Cover{}, ErrForbidden
	}
	return s.store.PutCover(Cover{
		BookID:     bookID,
		Data:       data,
		MimeType:   mimeType,
		UploadedBy: userID,
	})
}

func (s *Service) GetCover(ctx context.Context, bookID string) (Cover, error) {
	return s.store.GetCover(bookID)
}

func (s *Service) AddReview(ctx context.Context, bookID, userID, username, text string) (Review, error) {
	return s.store.AddReview(bookID, userID, username, text)
}

func (s *Service) ListReviews(ctx context.Context, bookID string) ([]Review, error) {
	return s.store.ListReviews(bookID)
}

func (s *Service) DeleteReview(ctx context.Context, bookID, reviewID string) error {
	return s.store.DeleteReview(bookID, reviewID)
}

// PurgeBook clears documents left behind after a catalog delete.
func (s *Service) PurgeBook(ctx context.Context, bookID string) error {
	return s.store.PurgeBook(bookID)
}
