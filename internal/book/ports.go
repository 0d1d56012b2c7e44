package book

import (
	"context"
)

// Repository defines the contract for book storage.
type Repository interface {
	Create(ctx context.Context, p CreatePayload) (Book, error)
	GetByID(ctx context.Context, id string) (Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	List(ctx context.Context, q Query) ([]Book, int, error)
	Update(ctx context.Context, id string, p UpdatePayload) (Book, error)
	Delete(ctx context.Context, id string) error
}
