package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// handleCameraPreview streams raw MJPEG frames from the user's camera.
// Unlike the websocket path this carries no analysis or overlay; it exists
// for quick framing checks before a workout.
func (s *Server) handleCameraPreview(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	agent := s.config.Registry.Camera(uid)
	if agent == nil {
		writeError(w, http.StatusNotFound, "No active camera session")
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	tick := s.config.StreamTick
	if tick <= 0 {
		tick = 33 * time.Millisecond
	}

	for agent.IsRunning() {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame := agent.LatestFrame()
		if frame == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			if s.config.Metrics != nil {
				s.config.Metrics.EncodeErrors.Add(1)
			}
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(tick)
	}
}
