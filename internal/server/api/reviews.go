// Package api provides HTTP API handlers for the moveright CRUD resources.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JosephGleason/moveright-backend/internal/store"
)

// userHeader carries the externally authenticated user identity.
const userHeader = "X-User-ID"

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// userID extracts the authenticated user id from a request.
func userID(r *http.Request) string {
	return r.Header.Get(userHeader)
}

// ReviewsHandler handles HTTP requests for review resources.
type ReviewsHandler struct {
	store *store.Store
}

// NewReviewsHandler creates a new ReviewsHandler with the given store.
func NewReviewsHandler(s *store.Store) *ReviewsHandler {
	return &ReviewsHandler{store: s}
}

// RegisterRoutes registers review routes.
func (h *ReviewsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/reviews", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.delete)
	})
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

type listReviewsResponse struct {
	Reviews []reviewResponse `json:"reviews"`
}

func toReviewResponse(rev *store.Review) reviewResponse {
	return reviewResponse{
		ID:        rev.ID,
		UserID:    rev.UserID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// list handles GET /api/reviews and returns all reviews.
func (h *ReviewsHandler) list(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.store.Reviews().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reviews")
		return
	}

	response := listReviewsResponse{
		Reviews: make([]reviewResponse, 0, len(reviews)),
	}
	for _, rev := range reviews {
		response.Reviews = append(response.Reviews, toReviewResponse(rev))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/reviews/{id}.
func (h *ReviewsHandler) get(w http.ResponseWriter, r *http.Request) {
	rev, err := h.store.Reviews().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get review")
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(rev))
}

// create handles POST /api/reviews for the authenticated user.
func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	rev := &store.Review{
		ID:      uuid.New().String(),
		UserID:  userID(r),
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := h.store.Reviews().Create(rev); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create review")
		return
	}

	writeJSON(w, http.StatusCreated, toReviewResponse(rev))
}

// delete handles DELETE /api/reviews/{id}. Users may only delete their own
// reviews.
func (h *ReviewsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rev, err := h.store.Reviews().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get review")
		return
	}

	if rev.UserID != userID(r) {
		writeError(w, http.StatusForbidden, "Cannot delete another user's review")
		return
	}

	if err := h.store.Reviews().Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
