package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gazawayj/planetgis/internal/store"
)

// DetectionsHandler serves the archived fire-detection history.
type DetectionsHandler struct {
	archive *store.Detections
}

// NewDetectionsHandler creates a detections handler over the archive.
func NewDetectionsHandler(archive *store.Detections) *DetectionsHandler {
	return &DetectionsHandler{archive: archive}
}

// RegisterRoutes registers detection archive routes with Huma.
func (h *DetectionsHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/detections", h.ListDetections, huma.OperationTags("detections"))
	huma.Get(api, "/api/v1/detections/summary", h.Summary, huma.OperationTags("detections"))
}

// DetectionsInput filters the archived detection listing.
type DetectionsInput struct {
	Layer string `query:"layer" doc:"Restrict to one layer ID" example:"fires"`
	Limit int    `query:"limit" default:"100" minimum:"1" maximum:"1000" doc:"Maximum rows to return"`
}

// DetectionsOutput is the response for listing detections.
type DetectionsOutput struct {
	Body struct {
		Detections []store.Detection `json:"detections" doc:"Archived detections, newest first"`
		Count      int               `json:"count" doc:"Number of rows returned"`
	}
}

// ListDetections returns the newest archived detections.
func (h *DetectionsHandler) ListDetections(ctx context.Context, input *DetectionsInput) (*DetectionsOutput, error) {
	if h.archive == nil {
		return nil, huma.Error503ServiceUnavailable("Detection archive not available")
	}

	dets, err := h.archive.Recent(ctx, input.Layer, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to query detections", err)
	}
	if dets == nil {
		dets = []store.Detection{}
	}

	out := &DetectionsOutput{}
	out.Body.Detections = dets
	out.Body.Count = len(dets)
	return out, nil
}

// SummaryOutput is the response for the per-layer archive summary.
type SummaryOutput struct {
	Body struct {
		Layers []store.LayerCount `json:"layers" doc:"Archive size per layer"`
	}
}

// Summary returns archive sizes grouped by layer.
func (h *DetectionsHandler) Summary(ctx context.Context, input *struct{}) (*SummaryOutput, error) {
	if h.archive == nil {
		return nil, huma.Error503ServiceUnavailable("Detection archive not available")
	}

	counts, err := h.archive.CountByLayer(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to summarize detections", err)
	}
	if counts == nil {
		counts = []store.LayerCount{}
	}

	out := &SummaryOutput{}
	out.Body.Layers = counts
	return out, nil
}
