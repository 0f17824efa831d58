// Package app wires the moveright backend together: storage, the capture
// pipeline dependencies, and the HTTP/realtime server.
package app

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/JosephGleason/moveright-backend/internal/analysis"
	"github.com/JosephGleason/moveright-backend/internal/config"
	"github.com/JosephGleason/moveright-backend/internal/metrics"
	"github.com/JosephGleason/moveright-backend/internal/pose"
	"github.com/JosephGleason/moveright-backend/internal/render"
	"github.com/JosephGleason/moveright-backend/internal/server"
	"github.com/JosephGleason/moveright-backend/internal/session"
	"github.com/JosephGleason/moveright-backend/internal/store"
)

// App owns the process-lifetime services and tears them down in order.
type App struct {
	config     *config.Config
	store      *store.Store
	registry   *session.Registry
	estimator  pose.Estimator
	classifier analysis.FormClassifier
	metrics    *metrics.Metrics
	server     *server.Server
}

// New builds the application from configuration. The pose estimator and form
// classifier run as external services; when either is unavailable the app
// starts anyway with degraded analysis rather than refusing to boot.
func New(cfg *config.Config) (*App, error) {
	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.PictureDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var estimator pose.Estimator
	if mp, err := pose.NewMediaPipeEstimator(pose.DefaultConfig()); err == nil {
		estimator = mp
		log.Println("Using MediaPipe pose estimation")
	} else {
		log.Printf("MediaPipe not available (%v), using mock estimator", err)
		estimator = pose.NewMockEstimator()
	}

	var classifier analysis.FormClassifier
	if svm, err := analysis.NewSVMClassifier(); err == nil {
		classifier = svm
		log.Println("Using SVM form classifier")
	} else {
		log.Printf("Form classifier not available (%v), analysis will carry no verdicts", err)
	}

	a := &App{
		config:     cfg,
		store:      st,
		registry:   session.NewRegistry(),
		estimator:  estimator,
		classifier: classifier,
		metrics:    metrics.New(),
	}

	a.server = server.New(server.Config{
		Store:         st,
		Registry:      a.registry,
		Analyzer:      analysis.NewAnalyzer(estimator, classifier),
		Renderer:      render.NewRenderer(estimator, cfg.JPEGQuality),
		Metrics:       a.metrics,
		PictureDir:    cfg.PictureDir,
		CaptureWidth:  cfg.CaptureWidth,
		CaptureHeight: cfg.CaptureHeight,
		StopTimeout:   cfg.StopTimeout,
		StreamTick:    cfg.StreamTick,
		ProbeIndices:  cfg.ProbeIndices,
	})

	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server
}

// Registry returns the session registry.
func (a *App) Registry() *session.Registry {
	return a.registry
}

// Close stops every live session and releases external resources. Safe to
// call once at shutdown.
func (a *App) Close() {
	a.registry.Shutdown()

	if a.classifier != nil {
		if err := a.classifier.Close(); err != nil {
			log.Printf("Error closing classifier: %v", err)
		}
	}
	if err := a.estimator.Close(); err != nil {
		log.Printf("Error closing estimator: %v", err)
	}
	if err := a.store.Close(); err != nil {
		log.Printf("Error closing store: %v", err)
	}
}
