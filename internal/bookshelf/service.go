package bookshelf

import (
	"context"

	"bookshelfapi/internal/book"
)

// Service provides bookshelf business logic.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID, name, description string) (Bookshelf, error) {
	return s.repo.Create(ctx, userID, name, description)
}

func (s *Service) GetByID(ctx context.Context, id string) (Bookshelf, []book.Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Bookshelf, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, id, name, description string) (Bookshelf, error) {
	return s.repo.Update(ctx, id, name, description)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddBook(ctx context.Context, p EntryPayload) (Entry, error) {
	return s.repo.AddBook(ctx, p)
}

func (s *Service) UpdateEntry(ctx context.Context, bookshelfID, bookID, userID, status string, notes *string) (Entry, error) {
	return s.repo.UpdateEntry(ctx, bookshelfID, bookID, userID, status, notes)
}

func (s *Service) RemoveBook(ctx context.Context, bookshelfID, bookID, userID string) error {
	return s.repo.RemoveBook(ctx, bookshelfID, bookID, userID)
}

// FindOrCreateAndShelve guarantees exactly one book row for the payload's ISBN
// and exactly one association row for the target, as one atomic unit. When the
// ISBN already exists the supplied descriptive fields are discarded and the
// stored book wins; callers can compare the returned book against their input.
func (s *Service) FindOrCreateAndShelve(ctx context.Context, p book.CreatePayload, t ShelfTarget) (book.Book, Entry, error) {
	return s.repo.FindOrCreateAndShelve(ctx, p, t)
}
