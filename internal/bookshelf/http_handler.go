package bookshelf

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookshelfapi/internal/book"
	"bookshelfapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createShelfRequest struct {
	UserID      string `json:"userId" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type updateShelfRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type addBookRequest struct {
	BookID string  `json:"bookId" validate:"required,uuid"`
	UserID string  `json:"userId" validate:"required,uuid"`
	Status string  `json:"status" validate:"required,max=60"`
	Notes  *string `json:"notes,omitempty"`
}

type updateEntryRequest struct {
	UserID string  `json:"userId" validate:"required,uuid"`
	Status string  `json:"status" validate:"required,max=60"`
	Notes  *string `json:"notes,omitempty"`
}

type removeBookRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

type addToBookshelfBook struct {
	ISBN        string  `json:"isbn" validate:"required,isbn"`
	Title       string  `json:"title" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	Pages       int     `json:"pages" validate:"gte=0"`
	Publisher   string  `json:"publisher"`
	Language    string  `json:"language"`
	PublishedAt string  `json:"publishedAt" validate:"required"`
	CreatedBy   *string `json:"createdBy,omitempty" validate:"omitempty,uuid"`
}

type addToBookshelfRequest struct {
	BookshelfID string             `json:"bookshelfId" validate:"required,uuid"`
	UserID      string             `json:"userId" validate:"required,uuid"`
	Status      string             `json:"status" validate:"required,max=60"`
	Notes       *string            `json:"notes,omitempty"`
	Book        addToBookshelfBook `json:"book" validate:"required"`
}

// Create handles POST /bookshelves
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createShelfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if req.UserID == "" {
		req.UserID = httpx.UserIDFrom(r)
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	shelf, err := h.service.Create(r.Context(), req.UserID, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, ErrInvalidReference) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "User does not exist", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, shelf)
}

// Get handles GET /bookshelves/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	shelf, books, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Bookshelf not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	if books == nil {
		books = []book.Book{}
	}
	httpx.JSONSuccess(w, map[string]any{
		"id":          shelf.ID,
		"user_id":     shelf.UserID,
		"name":        shelf.Name,
		"description": shelf.Description,
		"books":       books,
	}, nil)
}

// ListByUser handles GET /bookshelves/user/{userId}
func (h *HTTPHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	shelves, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if shelves == nil {
		shelves = []Bookshelf{}
	}
	httpx.JSONSuccess(w, shelves, nil)
}

// Update handles PUT /bookshelves/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateShelfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	shelf, err := h.service.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Bookshelf not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, shelf, nil)
}

// Delete handles DELETE /bookshelves/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Bookshelf not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// AddBook handles POST /bookshelves/{id}/books
func (h *HTTPHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	shelfID := r.PathValue("id")

	var req addBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if req.UserID == "" {
		req.UserID = httpx.UserIDFrom(r)
	}
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	entry, err := h.service.AddBook(r.Context(), EntryPayload{
		BookshelfID: shelfID,
		BookID:      req.BookID,
		UserID:      req.UserID,
		Status:      req.Status,
		Notes:       req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyShelved):
			httpx.JSONError(w, http.StatusBadRequest, "CONFLICT", "Book is already on this bookshelf", nil)
		case errors.Is(err, ErrInvalidReference):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Bookshelf, book, or user does not exist", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessCreated(w, entry)
}

// UpdateEntry handles PATCH /bookshelves/{id}/books/{bookId}
func (h *HTTPHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	shelfID := r.PathValue("id")
	bookID := r.PathValue("bookId")

	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if req.UserID == "" {
		req.UserID = httpx.UserIDFrom(r)
	}
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), shelfID, bookID, req.UserID, req.Status, req.Notes)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Bookshelf entry not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, entry, nil)
}

// RemoveBook handles DELETE /bookshelves/{id}/books/{bookId}
func (h *HTTPHandler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	shelfID := r.PathValue("id")
	bookID := r.PathValue("bookId")

	var req removeBookRequest
	// Body is optional; the authenticated user is the fallback.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.UserID == "" {
		req.UserID = httpx.UserIDFrom(r)
	}
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	if err := h.service.RemoveBook(r.Context(), shelfID, bookID, req.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Bookshelf entry not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// AddToBookshelf handles POST /books/add-to-bookshelf, the transactional
// find-or-create-and-associate flow.
func (h *HTTPHandler) AddToBookshelf(w http.ResponseWriter, r *http.Request) {
	var req addToBookshelfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if req.UserID == "" {
		req.UserID = httpx.UserIDFrom(r)
	}
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	publishedAt, err := book.ParseDate(req.Book.PublishedAt)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "book.publishedAt", Message: "publishedAt must be an ISO date"},
		})
		return
	}

	payload := book.CreatePayload{
		ISBN:        req.Book.ISBN,
		Title:       req.Book.Title,
		Author:      req.Book.Author,
		Pages:       req.Book.Pages,
		Publisher:   req.Book.Publisher,
		Language:    req.Book.Language,
		PublishedAt: publishedAt,
		CreatedBy:   req.Book.CreatedBy,
	}
	target := ShelfTarget{
		BookshelfID: req.BookshelfID,
		UserID:      req.UserID,
		Status:      req.Status,
		Notes:       req.Notes,
	}

	resolved, entry, err := h.service.FindOrCreateAndShelve(r.Context(), payload, target)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyShelved):
			httpx.JSONError(w, http.StatusBadRequest, "CONFLICT", "Book is already on this bookshelf", nil)
		case errors.Is(err, book.ErrDuplicateISBN):
			// Lost the race against a concurrent insert of the same ISBN.
			// The whole transaction rolled back; the client retries.
			httpx.JSONError(w, http.StatusBadRequest, "CONFLICT", "Concurrent create for this ISBN, retry", nil)
		case errors.Is(err, ErrInvalidReference):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Bookshelf or user does not exist", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessCreated(w, map[string]any{
		"book":          resolved,
		"bookshelfBook": entry,
	})
}
