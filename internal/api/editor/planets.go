package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gazawayj/planetgis/internal/humastar"
	"github.com/gazawayj/planetgis/internal/ingest"
	"github.com/gazawayj/planetgis/internal/planet"
	"github.com/gazawayj/planetgis/internal/scene"
	"github.com/gazawayj/planetgis/internal/templates"
)

// PlanetHandler drives the planet switcher and the status bar.
type PlanetHandler struct {
	humastar.Handler
	coordinator *scene.Coordinator
	ingestor    *ingest.Ingestor
}

// NewPlanetHandler creates a planet switcher handler.
func NewPlanetHandler(coordinator *scene.Coordinator, ingestor *ingest.Ingestor, renderer *templates.Renderer) *PlanetHandler {
	return &PlanetHandler{
		Handler:     humastar.Handler{Renderer: renderer},
		coordinator: coordinator,
		ingestor:    ingestor,
	}
}

func (h *PlanetHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/planets", h.ListPlanets, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/planets/{planet}/activate", h.Activate, huma.OperationTags("editor"))
	huma.Get(api, "/api/v1/editor/status", h.Status, huma.OperationTags("editor"))
}

// PlanetOptionData holds data for rendering one planet switcher button.
type PlanetOptionData struct {
	Planet planet.Planet
	Active bool
}

// StatusData holds data for rendering the status bar fragment.
type StatusData struct {
	Planet   planet.Planet
	Gravity  float64
	LonLabel string
	LatLabel string
	Lon      string
	Lat      string
	Zoom     string
	Loading  bool
}

func (h *PlanetHandler) ListPlanets(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.renderPlanetOptions(), "#planet-switcher")
	}), nil
}

func (h *PlanetHandler) Activate(ctx context.Context, input *PlanetInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if err := h.coordinator.SetPlanet(ctx, input.Planet); err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Patch(h.renderPlanetOptions(), "#planet-switcher")
		sse.Replace(h.renderStatus(), "#status-bar")
	}), nil
}

func (h *PlanetHandler) Status(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Replace(h.renderStatus(), "#status-bar")
	}), nil
}

func (h *PlanetHandler) renderPlanetOptions() string {
	current := h.coordinator.Current()
	items := make([]any, 0, len(planet.All()))
	for _, p := range planet.All() {
		items = append(items, PlanetOptionData{Planet: p, Active: p == current})
	}
	return h.RenderList("planet-option", items, "No planets", "")
}

func (h *PlanetHandler) renderStatus() string {
	profile := h.coordinator.Profile()
	lon, lat := h.coordinator.Coordinates()
	return h.Renderer.MustRender("status-bar", StatusData{
		Planet:   h.coordinator.Current(),
		Gravity:  profile.Gravity,
		LonLabel: profile.LongitudeLabel,
		LatLabel: profile.LatitudeLabel,
		Lon:      lon,
		Lat:      lat,
		Zoom:     h.coordinator.ZoomDisplay(),
		Loading:  h.ingestor.IsLoading(),
	})
}
