package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gazawayj/planetgis/internal/humastar"
	"github.com/gazawayj/planetgis/internal/layers"
	"github.com/gazawayj/planetgis/internal/scene"
	"github.com/gazawayj/planetgis/internal/templates"
)

// EventHandler streams layer change events to the Datastar UI via SSE.
// Every registry mutation re-renders the layer panel for the affected
// planet, so open clients stay in sync without polling.
type EventHandler struct {
	humastar.Handler
	registry  *layers.Registry
	lifecycle *scene.Lifecycle
	bus       *layers.EventBus
}

// NewEventHandler creates a new event handler.
func NewEventHandler(registry *layers.Registry, lifecycle *scene.Lifecycle, bus *layers.EventBus, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{
		Handler:   humastar.Handler{Renderer: renderer},
		registry:  registry,
		lifecycle: lifecycle,
		bus:       bus,
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/events", h.Events,
		huma.OperationTags("editor"),
	)
}

func (h *EventHandler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)

		lh := &LayerHandler{
			Handler:   humastar.Handler{Renderer: h.Renderer},
			registry:  h.registry,
			lifecycle: h.lifecycle,
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				sse.Patch(lh.renderLayerList(ev.Planet), "#layer-list")
				sse.Signals(map[string]any{
					"lastEvent": map[string]any{
						"planet": ev.Planet,
						"action": ev.Action,
						"id":     ev.ID,
					},
				})
			}
		}
	}), nil
}
