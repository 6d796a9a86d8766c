// Package server wires the planet viewer services behind one HTTP server:
// the Huma REST API, the Datastar editor streams, the FIRMS CSV proxy, and
// the static viewer assets.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/gazawayj/planetgis/internal/api"
	"github.com/gazawayj/planetgis/internal/api/editor"
	"github.com/gazawayj/planetgis/internal/engine"
	"github.com/gazawayj/planetgis/internal/firms"
	"github.com/gazawayj/planetgis/internal/ingest"
	"github.com/gazawayj/planetgis/internal/layers"
	"github.com/gazawayj/planetgis/internal/planet"
	"github.com/gazawayj/planetgis/internal/scene"
	"github.com/gazawayj/planetgis/internal/store"
	"github.com/gazawayj/planetgis/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	WebDir  string // Path to web/ directory for static files and template overrides

	FIRMSMapKey string
	FIRMSSource string
	FIRMSArea   string
	FIRMSRange  string
}

// Server is the planet viewer HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	archive  *store.Detections
	services *api.Services
	renderer *templates.Renderer
	firms    *firms.Client
}

// New creates a new server with the full service graph: registry, headless
// engine, scene lifecycle, view coordinator, and the overlay ingestor.
func New(cfg Config) *Server {
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("planetgis API", "1.0.0")
	humaConfig.Info.Description = "Multi-planet map viewer API for managing layers, planets, and fire detection overlays."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	bus := layers.NewEventBus()
	registry := layers.NewRegistry(bus)
	eng := engine.NewHeadless()
	lifecycle := scene.NewLifecycle(registry, eng)
	ingestor := ingest.New(registry)
	lifecycle.SetLoader(ingestor)
	coordinator := scene.NewCoordinator(lifecycle)

	services := &api.Services{
		Registry:    registry,
		Lifecycle:   lifecycle,
		Coordinator: coordinator,
		Ingestor:    ingestor,
	}

	var fragmentsDir string
	if cfg.WebDir != "" {
		fragmentsDir = filepath.Join(cfg.WebDir, "templates", "fragments")
	}
	renderer, _ := templates.New(fragmentsDir)

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		services: services,
		renderer: renderer,
		firms:    firms.NewClient(cfg.FIRMSMapKey),
	}

	conn, err := store.Get(store.Config{
		DataDir: cfg.DataDir,
		DBName:  "planetgis",
	})
	if err != nil {
		// The viewer still works without the archive; detections just
		// aren't persisted.
		log.Printf("detections archive unavailable: %v", err)
	} else {
		s.db = conn
		s.archive = store.NewDetections(conn)
		ingestor.SetArchiver(s.archive)
	}

	// Start on Earth so the basemap and seed overlays exist before the
	// first request.
	if err := coordinator.SetPlanet(context.Background(), planet.Earth); err != nil {
		log.Printf("activating earth: %v", err)
	}

	s.routes(bus)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close closes server resources.
func (s *Server) Close() error {
	return store.Close()
}

// OpenAPI returns the API description for spec export.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

func (s *Server) routes(bus *layers.EventBus) {
	// Huma REST API routes (OpenAPI-documented JSON endpoints)
	handler := api.NewHandler(s.services)
	handler.RegisterRoutes(s.humaAPI)
	handler.RegisterFeatureRoutes(s.humaAPI)
	handler.RegisterHealth(s.humaAPI)

	api.NewInfoHandler(s.config.DataDir, s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewDetectionsHandler(s.archive).RegisterRoutes(s.humaAPI)

	// Editor SSE routes using Huma + Datastar SDK
	editor.NewLayerHandler(s.services.Registry, s.services.Lifecycle, s.renderer).RegisterRoutes(s.humaAPI)
	editor.NewPlanetHandler(s.services.Coordinator, s.services.Ingestor, s.renderer).RegisterRoutes(s.humaAPI)
	editor.NewEventHandler(s.services.Registry, s.services.Lifecycle, bus, s.renderer).RegisterRoutes(s.humaAPI)

	// FIRMS CSV proxy stays on the stdlib mux: the response is raw CSV, not JSON
	s.mux.HandleFunc("/firms", s.handleFirms)

	// Static files
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		s.mux.HandleFunc("/viewer", s.handleViewer)
	}

	s.mux.HandleFunc("/", s.handleRoot)
}

// handleFirms proxies the NASA FIRMS area CSV feed so the browser viewer
// avoids CORS and never sees the map key. Query parameters override the
// configured source, area, and day range.
func (s *Server) handleFirms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = s.config.FIRMSSource
	}
	area := r.URL.Query().Get("area")
	if area == "" {
		area = s.config.FIRMSArea
	}
	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = s.config.FIRMSRange
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	csvBody, err := s.firms.FetchCSV(ctx, source, area, rng)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": err.Error(),
		})
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "text/csv")
	fmt.Fprint(w, csvBody)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "planetgis",
		"status":  "running",
	})
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	templatePath := filepath.Join(s.config.WebDir, "templates", "viewer.html")
	http.ServeFile(w, r, templatePath)
}
