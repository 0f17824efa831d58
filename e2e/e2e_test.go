package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/JosephGleason/moveright-backend/internal/analysis"
	"github.com/JosephGleason/moveright-backend/internal/capture"
	"github.com/JosephGleason/moveright-backend/internal/metrics"
	"github.com/JosephGleason/moveright-backend/internal/pose"
	"github.com/JosephGleason/moveright-backend/internal/render"
	"github.com/JosephGleason/moveright-backend/internal/server"
	"github.com/JosephGleason/moveright-backend/internal/session"
	"github.com/JosephGleason/moveright-backend/internal/store"
)

type workflowEnv struct {
	server   *httptest.Server
	store    *store.Store
	registry *session.Registry
}

func newWorkflowEnv(t *testing.T) *workflowEnv {
	t.Helper()

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	registry := session.NewRegistry()
	t.Cleanup(registry.Shutdown)

	estimator := pose.NewMockEstimator()
	estimator.SetLandmarks(pose.SquatBottomLandmarks())

	classifier := analysis.NewMockClassifier()
	classifier.SetResult(&analysis.Classification{Label: "good", Confidence: 0.93})

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	srv := server.New(server.Config{
		Store:       s,
		Registry:    registry,
		Analyzer:    analysis.NewAnalyzer(estimator, classifier),
		Renderer:    render.NewRenderer(estimator, 85),
		Metrics:     metrics.New(),
		PictureDir:  filepath.Join(tmpDir, "captures"),
		StopTimeout: time.Second,
		StreamTick:  20 * time.Millisecond,
		NewAgent: func(userID, source string) (*capture.Agent, error) {
			device := capture.NewMockDevice([]*gocv.Mat{&frame}, true)
			device.SetReadDelay(5 * time.Millisecond)
			return capture.NewAgentWithDevice(capture.AgentConfig{
				UserID:      userID,
				StopTimeout: time.Second,
			}, device, "mock")
		},
	})

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	if err := os.MkdirAll(filepath.Join(tmpDir, "captures"), 0755); err != nil {
		t.Fatalf("failed to create picture dir: %v", err)
	}

	return &workflowEnv{server: ts, store: s, registry: registry}
}

func (e *workflowEnv) request(t *testing.T, method, path, user, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("X-User-ID", user)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func TestE2E_WorkoutSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	env := newWorkflowEnv(t)
	user := "athlete-1"

	if err := env.store.Users().Create(&store.User{
		ID:          user,
		Email:       "athlete@example.com",
		DisplayName: "Athlete",
	}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	t.Run("StartCamera", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/camera/start", user, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	})

	// Wait for the mock device to publish a frame.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if agent := env.registry.Camera(user); agent != nil {
			if f := agent.LatestFrame(); f != nil {
				f.Close()
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Run("StreamWithAnalysis", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("failed to dial websocket: %v", err)
		}
		defer conn.Close()

		conn.WriteJSON(map[string]string{
			"event": "start_stream", "user_id": user, "exercise": "squat",
		})

		var sawFrame bool
		for i := 0; i < 20 && !sawFrame; i++ {
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			var ev struct {
				Event    string           `json:"event"`
				Analysis *analysis.Result `json:"analysis"`
			}
			if err := conn.ReadJSON(&ev); err != nil {
				t.Fatalf("failed to read event: %v", err)
			}
			if ev.Event != "frame" {
				continue
			}
			sawFrame = true
			if ev.Analysis == nil || ev.Analysis.Classification == nil {
				t.Fatal("streamed frame should carry a classification")
			}
			if ev.Analysis.Classification.Label != "good" {
				t.Errorf("label = %q", ev.Analysis.Classification.Label)
			}
		}
		if !sawFrame {
			t.Fatal("no frame event received")
		}

		conn.WriteJSON(map[string]string{"event": "stop_stream", "user_id": user})
	})

	t.Run("StopCamera", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/camera/stop", user, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	})

	t.Run("RecordResult", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/results/", user, `{
			"exercise_type": "squat",
			"total_reps": 10,
			"average_form_score": 0.93,
			"session_duration": 60
		}`)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	})

	t.Run("History", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/results/", user, "")
		defer resp.Body.Close()

		var listResp struct {
			Results []struct {
				ExerciseType string `json:"exercise_type"`
				TotalReps    int    `json:"total_reps"`
			} `json:"results"`
		}
		json.NewDecoder(resp.Body).Decode(&listResp)

		if len(listResp.Results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(listResp.Results))
		}
		if listResp.Results[0].TotalReps != 10 {
			t.Errorf("total_reps = %d, want 10", listResp.Results[0].TotalReps)
		}
	})
}

func TestE2E_DisconnectTearsDownSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	env := newWorkflowEnv(t)
	user := "athlete-2"

	resp := env.request(t, http.MethodPost, "/api/camera/start", user, "")
	resp.Body.Close()

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}

	conn.WriteJSON(map[string]string{
		"event": "start_stream", "user_id": user, "exercise": "pushup",
	})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ack struct {
		Event string `json:"event"`
	}
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("failed to read ack: %v", err)
	}

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if env.registry.Camera(user) == nil && env.registry.Stream(user) == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("abrupt disconnect did not tear down the session")
}
