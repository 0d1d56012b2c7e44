package book

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bookshelfapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createBookRequest struct {
	ISBN        string  `json:"isbn" validate:"required,isbn"`
	Title       string  `json:"title" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	Pages       int     `json:"pages" validate:"gte=0"`
	Publisher   string  `json:"publisher"`
	Language    string  `json:"language"`
	PublishedAt string  `json:"publishedAt" validate:"required"`
	CreatedBy   *string `json:"createdBy,omitempty" validate:"omitempty,uuid"`
}

type updateBookRequest struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Pages       *int    `json:"pages,omitempty" validate:"omitempty,gte=0"`
	Publisher   *string `json:"publisher,omitempty"`
	Language    *string `json:"language,omitempty"`
	PublishedAt *string `json:"publishedAt,omitempty"`
}

// ParseDate accepts the date forms clients send: plain ISO dates and RFC3339
// timestamps (truncated to the date).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Q:         query.Get("q"),
		Author:    query.Get("author"),
		Publisher: query.Get("publisher"),
		Language:  query.Get("language"),
	}

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	books, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, books, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// Get handles GET /books/{id}. The path value is a book id; anything that is
// not a UUID is treated as an ISBN so both lookups share one route.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("id")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	var b Book
	var err error
	if uuid.Validate(key) == nil {
		b, err = h.service.GetByID(r.Context(), key)
	} else {
		b, err = h.service.GetByISBN(r.Context(), key)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, b, nil)
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	publishedAt, err := ParseDate(req.PublishedAt)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "publishedAt", Message: "publishedAt must be an ISO date"},
		})
		return
	}

	b, err := h.service.Create(r.Context(), CreatePayload{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Pages:       req.Pages,
		Publisher:   req.Publisher,
		Language:    req.Language,
		PublishedAt: publishedAt,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateISBN):
			httpx.JSONError(w, http.StatusBadRequest, "DUPLICATE_ISBN", "A book with this ISBN already exists", nil)
		case errors.Is(err, ErrInvalidReference):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Referenced user does not exist", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessCreated(w, b)
}

// Update handles PUT /books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if uuid.Validate(id) != nil {
		http.NotFound(w, r)
		return
	}

	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	payload := UpdatePayload{
		Title:     req.Title,
		Author:    req.Author,
		Pages:     req.Pages,
		Publisher: req.Publisher,
		Language:  req.Language,
	}
	if req.PublishedAt != nil {
		publishedAt, err := ParseDate(*req.PublishedAt)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
				{Field: "publishedAt", Message: "publishedAt must be an ISO date"},
			})
			return
		}
		payload.PublishedAt = &publishedAt
	}

	b, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccess(w, b, nil)
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if uuid.Validate(id) != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		case errors.Is(err, ErrInvalidReference):
			httpx.JSONError(w, http.StatusBadRequest, "CONFLICT", "Book is still referenced by a bookshelf", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessNoContent(w)
}
