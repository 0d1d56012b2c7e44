package extras

import (
	"context"
	"log/slog"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelfapi/internal/book"
	"bookshelfapi/internal/book/mocks"
)

func newTestService(t *testing.T) (*Service, *mocks.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := mocks.NewMockRepository(ctrl)

	store, err := Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewService(store, book.NewService(repo)), repo
}

func TestService_PutCover(t *testing.T) {
	creator := "creator-id"

	tests := []struct {
		name      string
		userID    string
		role      string
		bookErr   error
		createdBy *string
		wantErr   error
	}{
		{
			name:      "creator can write",
			userID:    creator,
			role:      "USER",
			createdBy: &creator,
		},
		{
			name:      "admin can write another user's book",
			userID:    "someone-else",
			role:      "ADMIN",
			createdBy: &creator,
		},
		{
			name:   "no recorded creator is open",
			userID: "anyone",
			role:   "USER",
		},
		{
			name:      "other users are rejected",
			userID:    "someone-else",
			role:      "USER",
			createdBy: &creator,
			wantErr:   ErrForbidden,
		},
		{
			name:    "missing book",
			userID:  creator,
			role:    "USER",
			bookErr: book.ErrNotFound,
			wantErr: book.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)
			if tt.bookErr != nil {
				repo.EXPECT().
					GetByID(gomock.Any(), "book-1").
					Return(book.Book{}, tt.bookErr)
			} else {
				repo.EXPECT().
					GetByID(gomock.Any(), "book-1").
					Return(book.Book{ID: "book-1", CreatedBy: tt.createdBy}, nil)
			}

			cover, err := svc.PutCover(context.Background(), "book-1", tt.userID, tt.role,
				[]byte{0xff, 0xd8, 0xff}, "image/jpeg")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.userID, cover.UploadedBy)
			assert.Equal(t, []byte{0xff, 0xd8, 0xff}, cover.Data)
			assert.Equal(t, "image/jpeg", cover.MimeType)
		})
	}
}

// Reviews skip the catalog check on purpose; they may land for a book that is
// being deleted at the same time.
func TestService_AddReviewWithoutCatalogCheck(t *testing.T) {
	svc, _ := newTestService(t)

	rev, err := svc.AddReview(context.Background(), "maybe-deleted", "user-1", "alice", "still here")
	require.NoError(t, err)
	assert.Equal(t, "maybe-deleted", rev.BookID)
	assert.Equal(t, "alice", rev.Username)

	reviews, err := svc.ListReviews(context.Background(), "maybe-deleted")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}
