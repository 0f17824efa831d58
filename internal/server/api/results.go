package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JosephGleason/moveright-backend/internal/analysis"
	"github.com/JosephGleason/moveright-backend/internal/store"
)

// ResultsHandler handles HTTP requests for workout result resources.
type ResultsHandler struct {
	store *store.Store
}

// NewResultsHandler creates a new ResultsHandler with the given store.
func NewResultsHandler(s *store.Store) *ResultsHandler {
	return &ResultsHandler{store: s}
}

// RegisterRoutes registers workout result routes.
func (h *ResultsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/results", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
	})
}

type createResultRequest struct {
	ExerciseType     string          `json:"exercise_type"`
	TotalReps        int             `json:"total_reps"`
	AverageFormScore float64         `json:"average_form_score"`
	SessionDuration  int             `json:"session_duration"`
	RepDetails       json.RawMessage `json:"rep_details"`
}

type resultResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	ExerciseType     string          `json:"exercise_type"`
	TotalReps        int             `json:"total_reps"`
	AverageFormScore float64         `json:"average_form_score"`
	SessionDuration  int             `json:"session_duration"`
	RepDetails       json.RawMessage `json:"rep_details"`
	CreatedAt        string          `json:"created_at"`
}

type listResultsResponse struct {
	Results []resultResponse `json:"results"`
}

func toResultResponse(res *store.WorkoutResult) resultResponse {
	return resultResponse{
		ID:               res.ID,
		UserID:           res.UserID,
		ExerciseType:     res.ExerciseType,
		TotalReps:        res.TotalReps,
		AverageFormScore: res.AverageFormScore,
		SessionDuration:  res.SessionDuration,
		RepDetails:       json.RawMessage(res.RepDetails),
		CreatedAt:        res.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// list handles GET /api/results and returns the authenticated user's workout
// history, newest first.
func (h *ResultsHandler) list(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.Results().ListByUser(userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list results")
		return
	}

	response := listResultsResponse{
		Results: make([]resultResponse, 0, len(results)),
	}
	for _, res := range results {
		response.Results = append(response.Results, toResultResponse(res))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/results/{id}. Results are private to their owner.
func (h *ResultsHandler) get(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.Results().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Result not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get result")
		return
	}

	if res.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "Result not found")
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(res))
}

// create handles POST /api/results and records a completed session summary.
func (h *ResultsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := analysis.ParseExercise(req.ExerciseType); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exercise type")
		return
	}
	if req.TotalReps < 0 || req.SessionDuration < 0 {
		writeError(w, http.StatusBadRequest, "Counts cannot be negative")
		return
	}

	res := &store.WorkoutResult{
		ID:               uuid.New().String(),
		UserID:           userID(r),
		ExerciseType:     req.ExerciseType,
		TotalReps:        req.TotalReps,
		AverageFormScore: req.AverageFormScore,
		SessionDuration:  req.SessionDuration,
		RepDetails:       string(req.RepDetails),
	}

	if err := h.store.Results().Create(res); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create result")
		return
	}

	writeJSON(w, http.StatusCreated, toResultResponse(res))
}
