package bookshelf_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"bookshelfapi/internal/book"
	"bookshelfapi/internal/bookshelf"
	"bookshelfapi/internal/bookshelf/mocks"
)

const (
	testShelfID = "f2b9a1de-6c31-4e5a-9f3d-0c8b7a654321"
	testUserID  = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
)

var testShelf = bookshelf.Bookshelf{
	ID:        testShelfID,
	UserID:    testUserID,
	Name:      "Currently Reading",
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

var testEntry = bookshelf.Entry{
	ID:          "11111111-2222-4333-8444-555555555555",
	BookshelfID: testShelfID,
	BookID:      "5f0c3a9e-9d1a-4a7b-8a6e-2f4f1b7c9d01",
	UserID:      testUserID,
	Status:      "reading",
	CreatedAt:   time.Now(),
	UpdatedAt:   time.Now(),
}

var testShelvedBook = book.Book{
	ID:          testEntry.BookID,
	ISBN:        "9780134190440",
	Title:       "The Go Programming Language",
	Author:      "Alan A. A. Donovan",
	Pages:       380,
	PublishedAt: time.Date(2015, 10, 26, 0, 0, 0, 0, time.UTC),
}

func newShelfHandler(t *testing.T) (*bookshelf.HTTPHandler, *mocks.MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := mocks.NewMockRepository(ctrl)
	return bookshelf.NewHTTPHandler(bookshelf.NewService(repo)), repo
}

func TestShelfHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(repo *mocks.MockRepository)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"userId":"` + testUserID + `","name":"Currently Reading"}`,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					Create(gomock.Any(), testUserID, "Currently Reading", "").
					Return(testShelf, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			body:           `{"userId":"` + testUserID + `"}`,
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown user",
			body: `{"userId":"` + testUserID + `","name":"x"}`,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					Create(gomock.Any(), testUserID, "x", "").
					Return(bookshelf.Bookshelf{}, bookshelf.ErrInvalidReference)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newShelfHandler(t)
			tt.setupMock(repo)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/bookshelves", strings.NewReader(tt.body))
			handler.Create(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestShelfHandler_Get(t *testing.T) {
	t.Run("success with books", func(t *testing.T) {
		handler, repo := newShelfHandler(t)
		repo.EXPECT().
			GetByID(gomock.Any(), testShelfID).
			Return(testShelf, []book.Book{testShelvedBook}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/bookshelves/"+testShelfID, nil)
		r.SetPathValue("id", testShelfID)
		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), testShelvedBook.ISBN)
	})

	t.Run("not found", func(t *testing.T) {
		handler, repo := newShelfHandler(t)
		repo.EXPECT().
			GetByID(gomock.Any(), testShelfID).
			Return(bookshelf.Bookshelf{}, nil, bookshelf.ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/bookshelves/"+testShelfID, nil)
		r.SetPathValue("id", testShelfID)
		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestShelfHandler_AddBook(t *testing.T) {
	body := `{"bookId":"` + testEntry.BookID + `","userId":"` + testUserID + `","status":"reading"}`

	tests := []struct {
		name           string
		setupMock      func(repo *mocks.MockRepository)
		expectedStatus int
	}{
		{
			name: "success",
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					AddBook(gomock.Any(), gomock.Any()).
					Return(testEntry, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "already shelved",
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					AddBook(gomock.Any(), gomock.Any()).
					Return(bookshelf.Entry{}, bookshelf.ErrAlreadyShelved)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "dangling reference",
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					AddBook(gomock.Any(), gomock.Any()).
					Return(bookshelf.Entry{}, bookshelf.ErrInvalidReference)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newShelfHandler(t)
			tt.setupMock(repo)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/bookshelves/"+testShelfID+"/books", strings.NewReader(body))
			r.SetPathValue("id", testShelfID)
			handler.AddBook(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestShelfHandler_AddToBookshelf(t *testing.T) {
	validBody := `{
		"bookshelfId": "` + testShelfID + `",
		"userId": "` + testUserID + `",
		"status": "reading",
		"notes": "recommended by a friend",
		"book": {
			"isbn": "9780134190440",
			"title": "The Go Programming Language",
			"author": "Alan A. A. Donovan",
			"pages": 380,
			"publisher": "Addison-Wesley",
			"language": "en",
			"publishedAt": "2015-10-26"
		}
	}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(repo *mocks.MockRepository)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "success - book created and shelved",
			body: validBody,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					FindOrCreateAndShelve(gomock.Any(), gomock.Any(), bookshelf.ShelfTarget{
						BookshelfID: testShelfID,
						UserID:      testUserID,
						Status:      "reading",
						Notes:       strPtr("recommended by a friend"),
					}).
					Return(testShelvedBook, testEntry, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "short dashed isbn is accepted",
			body: `{"bookshelfId":"` + testShelfID + `","userId":"` + testUserID + `","status":"reading","book":{"isbn":"978-0-0-0","title":"t","author":"a","publishedAt":"2015-10-26"}}`,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					FindOrCreateAndShelve(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(testShelvedBook, testEntry, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{`,
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "missing bookshelfId",
			body:           `{"userId":"` + testUserID + `","status":"reading","book":{"isbn":"9780134190440","title":"t","author":"a","publishedAt":"2015-10-26"}}`,
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "invalid isbn",
			body:           `{"bookshelfId":"` + testShelfID + `","userId":"` + testUserID + `","status":"reading","book":{"isbn":"nope","title":"t","author":"a","publishedAt":"2015-10-26"}}`,
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "invalid date",
			body:           `{"bookshelfId":"` + testShelfID + `","userId":"` + testUserID + `","status":"reading","book":{"isbn":"9780134190440","title":"t","author":"a","publishedAt":"soon"}}`,
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "already on shelf",
			body: validBody,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					FindOrCreateAndShelve(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(book.Book{}, bookshelf.Entry{}, bookshelf.ErrAlreadyShelved)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "CONFLICT",
		},
		{
			name: "lost concurrent isbn race",
			body: validBody,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					FindOrCreateAndShelve(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(book.Book{}, bookshelf.Entry{}, book.ErrDuplicateISBN)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "CONFLICT",
		},
		{
			name: "bookshelf does not exist",
			body: validBody,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					FindOrCreateAndShelve(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(book.Book{}, bookshelf.Entry{}, bookshelf.ErrInvalidReference)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name: "server error",
			body: validBody,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					FindOrCreateAndShelve(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(book.Book{}, bookshelf.Entry{}, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newShelfHandler(t)
			tt.setupMock(repo)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/books/add-to-bookshelf", strings.NewReader(tt.body))
			handler.AddToBookshelf(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Contains(t, w.Body.String(), tt.expectedCode)
			}
		})
	}
}

func TestShelfHandler_AddToBookshelf_ResponseShape(t *testing.T) {
	handler, repo := newShelfHandler(t)
	repo.EXPECT().
		FindOrCreateAndShelve(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(testShelvedBook, testEntry, nil)

	body := `{
		"bookshelfId": "` + testShelfID + `",
		"userId": "` + testUserID + `",
		"status": "reading",
		"book": {
			"isbn": "9780134190440",
			"title": "The Go Programming Language",
			"author": "Alan A. A. Donovan",
			"publishedAt": "2015-10-26"
		}
	}`

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/books/add-to-bookshelf", strings.NewReader(body))
	handler.AddToBookshelf(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Book          book.Book       `json:"book"`
			BookshelfBook bookshelf.Entry `json:"bookshelfBook"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, testShelvedBook.ID, resp.Data.Book.ID)
	assert.Equal(t, testEntry.ID, resp.Data.BookshelfBook.ID)
	assert.Equal(t, resp.Data.Book.ID, resp.Data.BookshelfBook.BookID)
}

func TestShelfHandler_UpdateEntry(t *testing.T) {
	body := `{"userId":"` + testUserID + `","status":"finished"}`

	t.Run("success", func(t *testing.T) {
		handler, repo := newShelfHandler(t)
		updated := testEntry
		updated.Status = "finished"
		repo.EXPECT().
			UpdateEntry(gomock.Any(), testShelfID, testEntry.BookID, testUserID, "finished", nil).
			Return(updated, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPatch, "/bookshelves/"+testShelfID+"/books/"+testEntry.BookID, strings.NewReader(body))
		r.SetPathValue("id", testShelfID)
		r.SetPathValue("bookId", testEntry.BookID)
		handler.UpdateEntry(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "finished")
	})

	t.Run("entry missing", func(t *testing.T) {
		handler, repo := newShelfHandler(t)
		repo.EXPECT().
			UpdateEntry(gomock.Any(), testShelfID, testEntry.BookID, testUserID, "finished", nil).
			Return(bookshelf.Entry{}, bookshelf.ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPatch, "/bookshelves/"+testShelfID+"/books/"+testEntry.BookID, strings.NewReader(body))
		r.SetPathValue("id", testShelfID)
		r.SetPathValue("bookId", testEntry.BookID)
		handler.UpdateEntry(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestShelfHandler_RemoveBook(t *testing.T) {
	body := `{"userId":"` + testUserID + `"}`

	t.Run("success", func(t *testing.T) {
		handler, repo := newShelfHandler(t)
		repo.EXPECT().
			RemoveBook(gomock.Any(), testShelfID, testEntry.BookID, testUserID).
			Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/bookshelves/"+testShelfID+"/books/"+testEntry.BookID, strings.NewReader(body))
		r.SetPathValue("id", testShelfID)
		r.SetPathValue("bookId", testEntry.BookID)
		handler.RemoveBook(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		handler, repo := newShelfHandler(t)
		repo.EXPECT().
			RemoveBook(gomock.Any(), testShelfID, testEntry.BookID, testUserID).
			Return(bookshelf.ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/bookshelves/"+testShelfID+"/books/"+testEntry.BookID, strings.NewReader(body))
		r.SetPathValue("id", testShelfID)
		r.SetPathValue("bookId", testEntry.BookID)
		handler.RemoveBook(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func strPtr(s string) *string { return &s }
