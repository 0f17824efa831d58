// Package session tracks per-user capture agents, stream tasks, and
// connection bindings.
package session

import (
	"log"
	"sync"

	"github.com/JosephGleason/moveright-backend/internal/capture"
)

// Registry is the lock-guarded session state service. It owns three maps:
// user id → capture agent (at most one per user), user id → stream handle,
// and connection id → user id (for disconnect cleanup). It is constructed
// once per process and torn down with Shutdown.
//
// The maps are mutated by request/event handlers only, never by capture or
// stream loops. Start/stop calls for the same user are serialized by
// per-user mutexes so that the single-agent-per-user invariant holds under
// concurrent requests.
type Registry struct {
	mu      sync.RWMutex
	cameras map[string]*capture.Agent
	streams map[string]*Stream
	conns   map[string]string

	userMu sync.Mutex
	users  map[string]*sync.Mutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		cameras: make(map[string]*capture.Agent),
		streams: make(map[string]*Stream),
		conns:   make(map[string]string),
		users:   make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing camera lifecycle for one user.
func (r *Registry) userLock(userID string) *sync.Mutex {
	r.userMu.Lock()
	defer r.userMu.Unlock()

	mu, ok := r.users[userID]
	if !ok {
		mu = &sync.Mutex{}
		r.users[userID] = mu
	}
	return mu
}

// StartCamera installs an agent for the user, built by the given
// constructor, and starts it. If the user already has a running agent it is
// stopped and discarded first, so at no point do two live capture loops
// exist for one user. The registry swap itself is atomic with respect to
// lookups.
func (r *Registry) StartCamera(userID string, build func() (*capture.Agent, error)) (*capture.Agent, error) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	old := r.cameras[userID]
	delete(r.cameras, userID)
	r.mu.Unlock()

	if old != nil {
		log.Printf("[SESSION] replacing camera for user %s", userID)
		old.Stop()
	}

	agent, err := build()
	if err != nil {
		return nil, err
	}

	agent.Start()

	r.mu.Lock()
	r.cameras[userID] = agent
	r.mu.Unlock()

	return agent, nil
}

// StopCamera stops and removes the user's agent. Returns false if the user
// has none.
func (r *Registry) StopCamera(userID string) bool {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	agent := r.cameras[userID]
	delete(r.cameras, userID)
	r.mu.Unlock()

	if agent == nil {
		return false
	}

	agent.Stop()
	return true
}

// Camera returns the user's agent, or nil.
func (r *Registry) Camera(userID string) *capture.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.cameras[userID]
}

// StartStream installs a fresh active stream handle for the user,
// deactivating any previous one.
func (r *Registry) StartStream(stream *Stream) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old := r.streams[stream.UserID]; old != nil {
		old.Deactivate()
	}
	r.streams[stream.UserID] = stream
}

// StopStream clears the user's stream flag. Idempotent: stopping a user
// with no stream is a no-op.
func (r *Registry) StopStream(userID string) {
	r.mu.Lock()
	stream := r.streams[userID]
	delete(r.streams, userID)
	r.mu.Unlock()

	if stream != nil {
		stream.Deactivate()
	}
}

// Stream returns the user's stream handle, or nil.
func (r *Registry) Stream(userID string) *Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.streams[userID]
}

// BindConnection associates a transport connection with a user.
func (r *Registry) BindConnection(connID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[connID] = userID
}

// ConnectionUser returns the user bound to a connection, or "".
func (r *Registry) ConnectionUser(connID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.conns[connID]
}

// Cleanup runs the one-pass disconnect path for a connection: stop any
// stream, stop and remove any camera, drop the binding. Every step is
// idempotent and all of them run even when some are no-ops; calling Cleanup
// twice for the same connection is safe.
func (r *Registry) Cleanup(connID string) {
	r.mu.Lock()
	userID, bound := r.conns[connID]
	delete(r.conns, connID)
	r.mu.Unlock()

	if !bound {
		log.Printf("[SESSION] unknown connection disconnected: %s", connID)
		return
	}

	r.StopStream(userID)

	if r.StopCamera(userID) {
		log.Printf("[SESSION] stopped camera for user %s", userID)
	}

	log.Printf("[SESSION] cleanup complete for user %s", userID)
}

// Shutdown deactivates every stream and stops every agent. Used at process
// exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	streams := r.streams
	cameras := r.cameras
	r.streams = make(map[string]*Stream)
	r.cameras = make(map[string]*capture.Agent)
	r.conns = make(map[string]string)
	r.mu.Unlock()

	for _, s := range streams {
		s.Deactivate()
	}
	for _, agent := range cameras {
		agent.Stop()
	}
}
