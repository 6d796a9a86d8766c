// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gazawayj/planetgis/internal/ingest"
	"github.com/gazawayj/planetgis/internal/layers"
	"github.com/gazawayj/planetgis/internal/planet"
	"github.com/gazawayj/planetgis/internal/scene"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Registry    *layers.Registry
	Lifecycle   *scene.Lifecycle
	Coordinator *scene.Coordinator
	Ingestor    *ingest.Ingestor
}

// Types

type PlanetInput struct {
	Planet planet.Planet `path:"planet" enum:"earth,mars,moon" doc:"Planet identifier" example:"mars"`
}

type LayerIDInput struct {
	PlanetInput
	ID string `path:"id" doc:"Layer ID" example:"fires"`
}

type LayersOutput struct {
	Body []*layers.Record
}

type LayerOutput struct {
	Body layers.Record
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status string `json:"status" doc:"Health status" example:"ok"`
	TS     int64  `json:"ts" doc:"Server time, Unix milliseconds"`
}

type PlanetSummary struct {
	Planet  planet.Planet  `json:"planet" doc:"Planet identifier"`
	Profile planet.Profile `json:"profile" doc:"Catalog profile"`
	Active  bool           `json:"active" doc:"Whether this planet is currently shown"`
}

type StatusBody struct {
	Planet    planet.Planet `json:"planet" doc:"Current planet"`
	Gravity   float64       `json:"gravity" doc:"Surface gravity in m/s²"`
	LonLabel  string        `json:"lonLabel" doc:"Longitude axis label"`
	LatLabel  string        `json:"latLabel" doc:"Latitude axis label"`
	Zoom      string        `json:"zoom" doc:"Formatted zoom level"`
	IsLoading bool          `json:"isLoading" doc:"Whether overlay ingestion is in flight"`
}

// Handler holds all REST API handlers.
type Handler struct {
	svc *Services
}

// NewHandler creates the API handler set.
func NewHandler(svc *Services) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers every REST route.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/planets", h.ListPlanets, huma.OperationTags("planets"))
	huma.Post(api, "/api/v1/planets/{planet}/activate", h.ActivatePlanet, huma.OperationTags("planets"))
	huma.Get(api, "/api/v1/status", h.GetStatus, huma.OperationTags("planets"))

	huma.Get(api, "/api/v1/planets/{planet}/layers", h.ListLayers, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/planets/{planet}/layers", h.CreateLayer, huma.OperationTags("layers"))
	huma.Delete(api, "/api/v1/planets/{planet}/layers/{id}", h.DeleteLayer, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/planets/{planet}/layers/order", h.ReorderLayers, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/planets/{planet}/layers/{id}/visibility", h.SetVisibility, huma.OperationTags("layers"))
}

// Handlers

func (h *Handler) ListPlanets(ctx context.Context, input *struct{}) (*struct{ Body []PlanetSummary }, error) {
	current := h.svc.Coordinator.Current()
	var out []PlanetSummary
	for _, p := range planet.All() {
		out = append(out, PlanetSummary{
			Planet:  p,
			Profile: planet.ProfileOf(p),
			Active:  p == current,
		})
	}
	return &struct{ Body []PlanetSummary }{Body: out}, nil
}

func (h *Handler) ActivatePlanet(ctx context.Context, input *PlanetInput) (*struct{ Body StatusBody }, error) {
	if err := h.svc.Coordinator.SetPlanet(ctx, input.Planet); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &struct{ Body StatusBody }{Body: h.status()}, nil
}

func (h *Handler) GetStatus(ctx context.Context, input *struct{}) (*struct{ Body StatusBody }, error) {
	return &struct{ Body StatusBody }{Body: h.status()}, nil
}

func (h *Handler) status() StatusBody {
	p := h.svc.Coordinator.Current()
	profile := planet.ProfileOf(p)
	return StatusBody{
		Planet:    p,
		Gravity:   profile.Gravity,
		LonLabel:  profile.LongitudeLabel,
		LatLabel:  profile.LatitudeLabel,
		Zoom:      h.svc.Coordinator.ZoomDisplay(),
		IsLoading: h.svc.Ingestor.IsLoading(),
	}
}

func (h *Handler) ListLayers(ctx context.Context, input *PlanetInput) (*LayersOutput, error) {
	return &LayersOutput{Body: h.svc.Registry.Get(input.Planet)}, nil
}

func (h *Handler) CreateLayer(ctx context.Context, input *struct {
	PlanetInput
	Body layers.Record
}) (*LayerOutput, error) {
	rec, err := h.svc.Lifecycle.AddLayer(ctx, input.Planet, input.Body)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &LayerOutput{Body: *rec}, nil
}

func (h *Handler) DeleteLayer(ctx context.Context, input *LayerIDInput) (*struct{ Body MessageBody }, error) {
	if err := h.svc.Lifecycle.RemoveLayer(input.Planet, input.ID); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Layer removed"}}, nil
}

func (h *Handler) ReorderLayers(ctx context.Context, input *struct {
	PlanetInput
	Body struct {
		IDs []string `json:"ids" required:"true" minItems:"1" doc:"Layer IDs in the new draw order, bottom first"`
	}
}) (*LayersOutput, error) {
	if err := h.svc.Registry.ReorderByIDList(input.Planet, input.Body.IDs); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	h.svc.Lifecycle.ApplyZOrder(input.Planet)
	return &LayersOutput{Body: h.svc.Registry.Get(input.Planet)}, nil
}

func (h *Handler) SetVisibility(ctx context.Context, input *struct {
	LayerIDInput
	Body struct {
		Visible bool `json:"visible" doc:"Requested visibility"`
	}
}) (*LayerOutput, error) {
	rec, err := h.svc.Lifecycle.SetLayerVisibility(ctx, input.Planet, input.ID, input.Body.Visible)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return &LayerOutput{Body: *rec}, nil
}
