package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/JosephGleason/moveright-backend/internal/capture"
)

type startCameraRequest struct {
	Source string `json:"source"`
}

type cameraResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
	Filename string  `json:"filename,omitempty"`
	FPS      float64 `json:"fps"`
}

// handleCameraStart handles POST /api/camera/start. An optional JSON body may
// name an explicit source; otherwise local devices are probed. A user who
// already has a running camera gets it replaced.
func (s *Server) handleCameraStart(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req startCameraRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	agent, err := s.config.Registry.StartCamera(uid, func() (*capture.Agent, error) {
		return s.newAgent(uid, req.Source)
	})
	if err != nil {
		log.Printf("[CAMERA] start failed for user %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to start camera: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, cameraResponse{
		Status:  "running",
		Message: "Camera started",
		FPS:     agent.FPS(),
	})
}

// handleCameraStop handles POST /api/camera/stop.
func (s *Server) handleCameraStop(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	if !s.config.Registry.StopCamera(uid) {
		writeError(w, http.StatusNotFound, "No active camera session")
		return
	}

	writeJSON(w, http.StatusOK, cameraResponse{
		Status:  "stopped",
		Message: "Camera stopped",
	})
}

// handleCameraCapture handles POST /api/camera/capture and snapshots the
// latest frame to a still image.
func (s *Server) handleCameraCapture(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	agent := s.config.Registry.Camera(uid)
	if agent == nil {
		writeError(w, http.StatusNotFound, "No active camera session")
		return
	}

	filename, err := agent.TakePicture(s.config.PictureDir, "")
	if err != nil {
		if errors.Is(err, capture.ErrNoFrame) {
			writeError(w, http.StatusInternalServerError, "No frame available yet")
			return
		}
		log.Printf("[CAMERA] capture failed for user %s: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "Failed to save picture")
		return
	}

	writeJSON(w, http.StatusOK, cameraResponse{
		Status:   "running",
		Message:  "Picture saved",
		Filename: filename,
		FPS:      agent.FPS(),
	})
}

// handleCameraStatus handles GET /api/camera/status. It never errors: a user
// without a camera simply reads as stopped.
func (s *Server) handleCameraStatus(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	agent := s.config.Registry.Camera(uid)
	if agent == nil || !agent.IsRunning() {
		writeJSON(w, http.StatusOK, cameraResponse{Status: "stopped"})
		return
	}

	writeJSON(w, http.StatusOK, cameraResponse{
		Status: "running",
		FPS:    agent.FPS(),
	})
}
