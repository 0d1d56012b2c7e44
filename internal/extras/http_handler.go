package extras

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"bookshelfapi/internal/book"
	"bookshelfapi/internal/httpx"
)

const maxCoverBytes = 1 << 20

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type addReviewRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Text     string `json:"text" validate:"required,max=5000"`
}

// readCoverUpload pulls the image bytes and MIME type out of the request.
// Accepts either a raw body with an image Content-Type or a multipart form
// with a "cover" file part.
func readCoverUpload(r *http.Request) ([]byte, string, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
			return nil, "", err
		}
		file, header, err := r.FormFile("cover")
		if err != nil {
			return nil, "", err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}
		return data, header.Header.Get("Content-Type"), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxCoverBytes))
	return data, contentType, err
}

// PutCover handles PUT /books/{id}/cover
func (h *HTTPHandler) PutCover(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	data, mimeType, err := readCoverUpload(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid cover upload", nil)
		return
	}
	if len(data) == 0 || !strings.HasPrefix(mimeType, "image/") {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "cover", Message: "cover must be non-empty image data with an image/* content type"},
		})
		return
	}

	cover, err := h.service.PutCover(r.Context(), bookID, userID, httpx.RoleFrom(r), data, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, book.ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		case errors.Is(err, ErrForbidden):
			httpx.JSONError(w, http.StatusForbidden, "FORBIDDEN", "Only the book's creator can replace its cover", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	// Echo metadata only; clients fetch the bytes from the GET endpoint.
	httpx.JSONSuccess(w, map[string]any{
		"book_id":     cover.BookID,
		"mime_type":   cover.MimeType,
		"size":        len(cover.Data),
		"uploaded_by": cover.UploadedBy,
		"updated_at":  cover.UpdatedAt,
	}, nil)
}

// GetCover handles GET /books/{id}/cover, serving the stored bytes with the
// MIME type they were uploaded with.
func (h *HTTPHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")

	cover, err := h.service.GetCover(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Cover not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	w.Header().Set("Content-Type", cover.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(cover.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(cover.Data)
}

// AddReview handles POST /books/{id}/reviews
func (h *HTTPHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var req addReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	rev, err := h.service.AddReview(r.Context(), bookID, userID, req.Username, req.Text)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessCreated(w, rev)
}

// ListReviews handles GET /books/{id}/reviews
func (h *HTTPHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")

	reviews, err := h.service.ListReviews(r.Context(), bookID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if reviews == nil {
		reviews = []Review{}
	}
	httpx.JSONSuccess(w, reviews, nil)
}

// DeleteReview handles DELETE /books/{id}/reviews/{reviewId}
func (h *HTTPHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("id")
	reviewID := r.PathValue("reviewId")

	if err := h.service.DeleteReview(r.Context(), bookID, reviewID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Review not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
