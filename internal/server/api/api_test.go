package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/JosephGleason/moveright-backend/internal/store"
)

func newTestRouter(t *testing.T) (chi.Router, *store.Store) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "moveright-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	r := chi.NewRouter()
	NewReviewsHandler(s).RegisterRoutes(r)
	NewResultsHandler(s).RegisterRoutes(r)

	return r, s
}

func seedUser(t *testing.T, s *store.Store, id string) {
	t.Helper()

	u := &store.User{ID: id, Email: id + "@example.com", DisplayName: id}
	if err := s.Users().Create(u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func doRequest(t *testing.T, r chi.Router, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestReviews_Create(t *testing.T) {
	r, s := newTestRouter(t)
	seedUser(t, s, "alice")

	rec := doRequest(t, r, http.MethodPost, "/api/reviews/", "alice",
		`{"rating": 5, "comment": "great form cues"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp reviewResponse
	decode(t, rec, &resp)
	if resp.ID == "" || resp.Rating != 5 || resp.UserID != "alice" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReviews_CreateInvalidRating(t *testing.T) {
	r, s := newTestRouter(t)
	seedUser(t, s, "alice")

	for _, body := range []string{`{"rating": 0}`, `{"rating": 6}`, `not json`} {
		rec := doRequest(t, r, http.MethodPost, "/api/reviews/", "alice", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestReviews_ListAndGet(t *testing.T) {
	r, s := newTestRouter(t)
	seedUser(t, s, "alice")

	rec := doRequest(t, r, http.MethodPost, "/api/reviews/", "alice", `{"rating": 4}`)
	var created reviewResponse
	decode(t, rec, &created)

	t.Run("List", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodGet, "/api/reviews/", "alice", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp listReviewsResponse
		decode(t, rec, &resp)
		if len(resp.Reviews) != 1 {
			t.Errorf("len = %d, want 1", len(resp.Reviews))
		}
	})

	t.Run("Get", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodGet, "/api/reviews/"+created.ID, "alice", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodGet, "/api/reviews/nope", "alice", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestReviews_DeleteOwnership(t *testing.T) {
	r, s := newTestRouter(t)
	seedUser(t, s, "alice")
	seedUser(t, s, "bob")

	rec := doRequest(t, r, http.MethodPost, "/api/reviews/", "alice", `{"rating": 3}`)
	var created reviewResponse
	decode(t, rec, &created)

	t.Run("OtherUserForbidden", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodDelete, "/api/reviews/"+created.ID, "bob", "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("OwnerDeletes", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodDelete, "/api/reviews/"+created.ID, "alice", "")
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})
}

func TestResults_CreateAndList(t *testing.T) {
	r, s := newTestRouter(t)
	seedUser(t, s, "alice")

	body := `{
		"exercise_type": "squat",
		"total_reps": 15,
		"average_form_score": 0.82,
		"session_duration": 120,
		"rep_details": [{"rep": 1, "score": 0.9}]
	}`
	rec := doRequest(t, r, http.MethodPost, "/api/results/", "alice", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var created resultResponse
	decode(t, rec, &created)
	if created.TotalReps != 15 || created.ExerciseType != "squat" {
		t.Errorf("unexpected response: %+v", created)
	}

	t.Run("ListMine", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodGet, "/api/results/", "alice", "")
		var resp listResultsResponse
		decode(t, rec, &resp)
		if len(resp.Results) != 1 {
			t.Errorf("len = %d, want 1", len(resp.Results))
		}
	})

	t.Run("ListOtherUserEmpty", func(t *testing.T) {
		seedUser(t, s, "bob")
		rec := doRequest(t, r, http.MethodGet, "/api/results/", "bob", "")
		var resp listResultsResponse
		decode(t, rec, &resp)
		if len(resp.Results) != 0 {
			t.Errorf("len = %d, want 0", len(resp.Results))
		}
	})

	t.Run("GetHidesOtherUsers", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodGet, "/api/results/"+created.ID, "bob", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestResults_CreateValidation(t *testing.T) {
	r, s := newTestRouter(t)
	seedUser(t, s, "alice")

	cases := []struct {
		name string
		body string
	}{
		{"UnknownExercise", `{"exercise_type": "lunge", "total_reps": 5}`},
		{"NegativeReps", `{"exercise_type": "pushup", "total_reps": -1}`},
		{"BadJSON", `{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, r, http.MethodPost, "/api/results/", "alice", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
