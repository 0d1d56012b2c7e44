package book

import (
	"context"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository

	// onDelete is invoked after a successful delete so side stores can drop
	// their documents. Best effort; failures leave stale documents behind
	// until the next purge.
	onDelete func(ctx context.Context, id string)
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetDeleteHook registers a callback to run after each successful delete.
func (s *Service) SetDeleteHook(hook func(ctx context.Context, id string)) {
	s.onDelete = hook
}

func (s *Service) Create(ctx context.Context, p CreatePayload) (Book, error) {
	return s.repo.Create(ctx, p)
}

func (s *Service) GetByID(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

// List returns books matching the query plus the total match count.
func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) Update(ctx context.Context, id string, p UpdatePayload) (Book, error) {
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.onDelete != nil {
		s.onDelete(ctx, id)
	}
	return nil
}
