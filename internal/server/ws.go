package server

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/JosephGleason/moveright-backend/internal/analysis"
	"github.com/JosephGleason/moveright-backend/internal/capture"
	"github.com/JosephGleason/moveright-backend/internal/metrics"
	"github.com/JosephGleason/moveright-backend/internal/render"
	"github.com/JosephGleason/moveright-backend/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin is enforced by the fronting proxy
	},
}

// RealtimeConfig holds the dependencies of the realtime handler.
type RealtimeConfig struct {
	Registry *session.Registry
	Analyzer *analysis.Analyzer
	Renderer *render.Renderer
	Metrics  *metrics.Metrics
	Tick     time.Duration
}

// RealtimeHandler dispatches inbound realtime events and runs the streaming
// tasks that push annotated frames back to clients.
type RealtimeHandler struct {
	registry *session.Registry
	analyzer *analysis.Analyzer
	renderer *render.Renderer
	metrics  *metrics.Metrics
	tick     time.Duration
}

// NewRealtimeHandler creates a RealtimeHandler with the given dependencies.
func NewRealtimeHandler(cfg RealtimeConfig) *RealtimeHandler {
	tick := cfg.Tick
	if tick <= 0 {
		tick = 33 * time.Millisecond
	}
	return &RealtimeHandler{
		registry: cfg.Registry,
		analyzer: cfg.Analyzer,
		renderer: cfg.Renderer,
		metrics:  cfg.Metrics,
		tick:     tick,
	}
}

// wsClient wraps one websocket connection with a write lock so a stream task
// and the dispatch loop can interleave messages safely.
type wsClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteJSON(v)
}

// inboundEvent is the envelope for all client-to-server realtime messages.
type inboundEvent struct {
	Event    string `json:"event"`
	UserID   string `json:"user_id"`
	Exercise string `json:"exercise"`
}

type frameEvent struct {
	Event    string           `json:"event"`
	Image    string           `json:"image"`
	Analysis *analysis.Result `json:"analysis"`
}

type statusEvent struct {
	Event  string `json:"event"`
	Status string `json:"status"`
}

type errorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

func sendError(c *wsClient, message string) {
	c.send(errorEvent{Event: "error", Message: message})
}

// ServeHTTP upgrades the connection and runs the event dispatch loop until
// the client goes away. Disconnect, clean or abrupt, always runs the
// one-pass registry cleanup.
func (h *RealtimeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SESSION] websocket upgrade error: %v", err)
		return
	}

	client := &wsClient{
		id:   uuid.New().String(),
		conn: conn,
	}
	log.Printf("[SESSION] connection opened: %s", client.id)

	defer func() {
		h.registry.Cleanup(client.id)
		conn.Close()
		log.Printf("[SESSION] connection closed: %s", client.id)
	}()

	for {
		var ev inboundEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}

		switch ev.Event {
		case "request_frame":
			h.handleRequestFrame(client, ev)
		case "start_stream":
			h.handleStartStream(client, ev)
		case "stop_stream":
			h.handleStopStream(client, ev)
		default:
			sendError(client, fmt.Sprintf("Unknown event: %q", ev.Event))
		}
	}
}

// handleRequestFrame serves the one-shot polling path: analyze and render the
// latest frame once, outside any stream loop.
func (h *RealtimeHandler) handleRequestFrame(c *wsClient, ev inboundEvent) {
	if ev.UserID == "" {
		sendError(c, "user_id is required")
		return
	}

	exercise, err := analysis.ParseExercise(ev.Exercise)
	if err != nil {
		sendError(c, err.Error())
		return
	}

	agent := h.registry.Camera(ev.UserID)
	if agent == nil || !agent.IsRunning() {
		sendError(c, "No active camera session")
		return
	}

	frame := agent.LatestFrame()
	if frame == nil {
		sendError(c, "No frame available yet")
		return
	}
	defer frame.Close()

	h.pushFrame(c, frame, exercise)
}

// handleStartStream binds the connection to the user and spawns the stream
// task. Starting without a running camera is a protocol error and changes no
// state.
func (h *RealtimeHandler) handleStartStream(c *wsClient, ev inboundEvent) {
	if ev.UserID == "" {
		sendError(c, "user_id is required")
		return
	}

	exercise, err := analysis.ParseExercise(ev.Exercise)
	if err != nil {
		sendError(c, err.Error())
		return
	}

	agent := h.registry.Camera(ev.UserID)
	if agent == nil || !agent.IsRunning() {
		sendError(c, "No active camera session")
		return
	}

	h.registry.BindConnection(c.id, ev.UserID)

	stream := session.NewStream(ev.UserID, exercise)
	h.registry.StartStream(stream)

	if err := c.send(statusEvent{Event: "stream_started", Status: "ok"}); err != nil {
		stream.Deactivate()
		return
	}

	go h.streamLoop(c, stream, agent)
}

// handleStopStream clears the user's stream flag. Idempotent: stopping a
// stream that is not running still acknowledges.
func (h *RealtimeHandler) handleStopStream(c *wsClient, ev inboundEvent) {
	if ev.UserID == "" {
		sendError(c, "user_id is required")
		return
	}

	h.registry.StopStream(ev.UserID)
	c.send(statusEvent{Event: "stream_stopped", Status: "ok"})
}

// streamLoop is the stream task body: pull the latest frame, analyze, render,
// push, then yield for one tick. Latest-frame-wins; a tick with no frame is
// skipped without error. A push failure terminates only this task.
func (h *RealtimeHandler) streamLoop(c *wsClient, stream *session.Stream, agent *capture.Agent) {
	if h.metrics != nil {
		h.metrics.ActiveStreams.Add(1)
		defer h.metrics.ActiveStreams.Add(-1)
	}
	log.Printf("[SESSION] stream started for user %s (%s)", stream.UserID, stream.Exercise)
	defer log.Printf("[SESSION] stream stopped for user %s", stream.UserID)

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for stream.Active() && agent.IsRunning() {
		frame := agent.LatestFrame()
		if frame != nil {
			err := h.pushFrame(c, frame, stream.Exercise)
			frame.Close()
			if err != nil {
				if h.metrics != nil {
					h.metrics.StreamErrors.Add(1)
				}
				log.Printf("[SESSION] stream tick failed for user %s: %v", stream.UserID, err)
				stream.Deactivate()
				return
			}
		}

		<-ticker.C
	}
}

// pushFrame analyzes and renders one frame and pushes it to the client. An
// analysis failure degrades to a frame without analysis; an encoding failure
// becomes a one-shot error event. Only a failed write is returned as an
// error, since it means the client is gone.
func (h *RealtimeHandler) pushFrame(c *wsClient, frame *gocv.Mat, exercise analysis.Exercise) error {
	result, err := h.analyzer.Analyze(frame, exercise)
	if err != nil {
		log.Printf("[ANALYSIS] frame analysis failed: %v", err)
		result = nil
	}

	encoded, err := h.renderer.Render(frame, exercise)
	if err != nil {
		if h.metrics != nil {
			h.metrics.EncodeErrors.Add(1)
		}
		return c.send(errorEvent{Event: "error", Message: "Frame encoding failed"})
	}

	if err := c.send(frameEvent{
		Event:    "frame",
		Image:    base64.StdEncoding.EncodeToString(encoded),
		Analysis: result,
	}); err != nil {
		return err
	}

	if h.metrics != nil {
		h.metrics.FramesStreamed.Add(1)
	}
	return nil
}
