package book_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"bookshelfapi/internal/book"
	"bookshelfapi/internal/book/mocks"
)

var testBook = book.Book{
	ID:          "5f0c3a9e-9d1a-4a7b-8a6e-2f4f1b7c9d01",
	ISBN:        "9780134190440",
	Title:       "The Go Programming Language",
	Author:      "Alan A. A. Donovan",
	Pages:       380,
	Publisher:   "Addison-Wesley",
	Language:    "en",
	PublishedAt: time.Date(2015, 10, 26, 0, 0, 0, 0, time.UTC),
	CreatedAt:   time.Now(),
	UpdatedAt:   time.Now(),
}

func newBookHandler(t *testing.T) (*book.HTTPHandler, *mocks.MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := mocks.NewMockRepository(ctrl)
	return book.NewHTTPHandler(book.NewService(repo)), repo
}

func TestBookHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(repo *mocks.MockRepository)
		expectedStatus int
	}{
		{
			name:        "success - empty list",
			queryParams: "?page=1&page_size=20",
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					List(gomock.Any(), gomock.Any()).
					Return([]book.Book{}, 0, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "success - with books",
			queryParams: "?page=1&page_size=20",
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					List(gomock.Any(), gomock.Any()).
					Return([]book.Book{testBook}, 1, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "success - author filter",
			queryParams: "?author=Donovan",
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					List(gomock.Any(), book.Query{Author: "Donovan", Limit: 20}).
					Return([]book.Book{testBook}, 1, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "server error",
			queryParams: "?page=1&page_size=20",
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					List(gomock.Any(), gomock.Any()).
					Return(nil, 0, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newBookHandler(t)
			tt.setupMock(repo)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/books"+tt.queryParams, nil)
			handler.List(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBookHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		setupMock      func(repo *mocks.MockRepository)
		expectedStatus int
	}{
		{
			name: "success - by id",
			key:  testBook.ID,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					GetByID(gomock.Any(), testBook.ID).
					Return(testBook, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "success - by isbn",
			key:  testBook.ISBN,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					GetByISBN(gomock.Any(), testBook.ISBN).
					Return(testBook, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			key:  "0000000000000",
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					GetByISBN(gomock.Any(), "0000000000000").
					Return(book.Book{}, book.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newBookHandler(t)
			tt.setupMock(repo)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/books/"+tt.key, nil)
			r.SetPathValue("id", tt.key)
			handler.Get(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBookHandler_Create(t *testing.T) {
	validBody := `{
		"isbn": "9780134190440",
		"title": "The Go Programming Language",
		"author": "Alan A. A. Donovan",
		"pages": 380,
		"publisher": "Addison-Wesley",
		"language": "en",
		"publishedAt": "2015-10-26"
	}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(repo *mocks.MockRepository)
		expectedStatus int
	}{
		{
			name: "success",
			body: validBody,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(testBook, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{not json`,
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing title",
			body:           `{"isbn":"9780134190440","author":"x","publishedAt":"2015-10-26"}`,
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad isbn",
			body:           `{"isbn":"not-an-isbn","title":"t","author":"a","publishedAt":"2015-10-26"}`,
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad date",
			body:           `{"isbn":"9780134190440","title":"t","author":"a","publishedAt":"yesterday"}`,
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate isbn",
			body: validBody,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(book.Book{}, book.ErrDuplicateISBN)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown creator",
			body: validBody,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(book.Book{}, book.ErrInvalidReference)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newBookHandler(t)
			tt.setupMock(repo)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tt.body))
			handler.Create(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBookHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		setupMock      func(repo *mocks.MockRepository)
		expectedStatus int
	}{
		{
			name: "success",
			id:   testBook.ID,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					Delete(gomock.Any(), testBook.ID).
					Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "not a uuid",
			id:             "garbage",
			setupMock:      func(repo *mocks.MockRepository) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "still shelved",
			id:   testBook.ID,
			setupMock: func(repo *mocks.MockRepository) {
				repo.EXPECT().
					Delete(gomock.Any(), testBook.ID).
					Return(book.ErrInvalidReference)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newBookHandler(t)
			tt.setupMock(repo)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodDelete, "/books/"+tt.id, nil)
			r.SetPathValue("id", tt.id)
			handler.Delete(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := book.ParseDate("2015-10-26")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2015, 10, 26, 0, 0, 0, 0, time.UTC), got)

	got, err = book.ParseDate("2015-10-26T15:04:05Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2015, 10, 26, 0, 0, 0, 0, time.UTC), got)

	_, err = book.ParseDate("26/10/2015")
	assert.Error(t, err)
}
