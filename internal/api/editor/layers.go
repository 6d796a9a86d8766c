// Package editor contains Datastar SSE handlers for the map control panel.
package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gazawayj/planetgis/internal/humastar"
	"github.com/gazawayj/planetgis/internal/layers"
	"github.com/gazawayj/planetgis/internal/planet"
	"github.com/gazawayj/planetgis/internal/scene"
	"github.com/gazawayj/planetgis/internal/templates"
)

// LayerHandler drives the layer panel: list, visibility toggles, removal.
type LayerHandler struct {
	humastar.Handler
	registry  *layers.Registry
	lifecycle *scene.Lifecycle
}

// NewLayerHandler creates a layer panel handler.
func NewLayerHandler(registry *layers.Registry, lifecycle *scene.Lifecycle, renderer *templates.Renderer) *LayerHandler {
	return &LayerHandler{
		Handler:   humastar.Handler{Renderer: renderer},
		registry:  registry,
		lifecycle: lifecycle,
	}
}

func (h *LayerHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/planets/{planet}/layers", h.ListLayers, huma.OperationTags("editor"))
	huma.Put(api, "/api/v1/editor/planets/{planet}/layers/{id}/visibility", h.ToggleVisibility, huma.OperationTags("editor"))
	huma.Delete(api, "/api/v1/editor/planets/{planet}/layers/{id}", h.DeleteLayer, huma.OperationTags("editor"))
}

// PlanetInput identifies a planet in an editor route.
type PlanetInput struct {
	Planet planet.Planet `path:"planet" enum:"earth,mars,moon" doc:"Planet identifier"`
}

// LayerInput identifies one layer of a planet.
type LayerInput struct {
	PlanetInput
	ID string `path:"id" doc:"Layer ID"`
}

func (h *LayerHandler) ListLayers(ctx context.Context, input *PlanetInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.renderLayerList(input.Planet), "#layer-list")
	}), nil
}

func (h *LayerHandler) ToggleVisibility(ctx context.Context, input *LayerInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		rec := h.registry.Find(input.Planet, input.ID)
		if rec == nil {
			sse.Error("Layer not found")
			return
		}
		if _, err := h.lifecycle.SetLayerVisibility(ctx, input.Planet, input.ID, !rec.Visible); err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Patch(h.renderLayerList(input.Planet), "#layer-list")
	}), nil
}

func (h *LayerHandler) DeleteLayer(ctx context.Context, input *LayerInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if err := h.lifecycle.RemoveLayer(input.Planet, input.ID); err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Success("Layer removed")
		sse.Patch(h.renderLayerList(input.Planet), "#layer-list")
	}), nil
}

// LayerCardData holds data for rendering one layer card.
type LayerCardData struct {
	Planet  planet.Planet
	ID      string
	Name    string
	Kind    layers.Kind
	Visible bool
	ZIndex  int
	Basemap bool
}

func (h *LayerHandler) renderLayerList(p planet.Planet) string {
	recs := h.registry.Get(p)
	items := make([]any, 0, len(recs))
	// Cards top layer first, matching the panel's draw-order view.
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		items = append(items, LayerCardData{
			Planet:  p,
			ID:      rec.ID,
			Name:    rec.Name,
			Kind:    rec.Kind,
			Visible: rec.Visible,
			ZIndex:  rec.ZIndex,
			Basemap: rec.IsBasemap(),
		})
	}
	return h.RenderList("layer-card", items, "No layers", "This planet has no layers yet")
}
