package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/gazawayj/planetgis/internal/engine"
)

// RegisterFeatureRoutes registers the vector-layer data routes: GeoJSON dump
// and MVT tiles rendered from the live feature source.
func (h *Handler) RegisterFeatureRoutes(api huma.API) {
	huma.Get(api, "/api/v1/planets/{planet}/layers/{id}/features", h.GetFeatures, huma.OperationTags("layers"))
	// No extension on the final segment: a ServeMux wildcard must span its
	// whole segment, so "{y}.mvt" is not a registrable pattern. The MVT
	// content type rides on the response headers instead.
	huma.Register(api, huma.Operation{
		OperationID: "get-layer-tile",
		Method:      http.MethodGet,
		Path:        "/api/v1/planets/{planet}/layers/{id}/tiles/{z}/{x}/{y}",
		Summary:     "Render a vector layer tile",
		Tags:        []string{"layers"},
	}, h.GetTile)
}

func (h *Handler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

func (h *Handler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{
		Status: "ok",
		TS:     time.Now().UnixMilli(),
	}}, nil
}

type FeaturesOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// GetFeatures returns a vector layer's ingested features as GeoJSON. Layers
// that have not loaded yet return an empty collection.
func (h *Handler) GetFeatures(ctx context.Context, input *LayerIDInput) (*FeaturesOutput, error) {
	rec := h.svc.Registry.Find(input.Planet, input.ID)
	if rec == nil {
		return nil, huma.Error404NotFound("layer not found")
	}
	vr, ok := h.svc.Registry.RenderableOf(rec).(engine.VectorRenderable)
	if !ok {
		return nil, huma.Error400BadRequest("layer has no vector source")
	}
	fc := vr.Features()
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("encoding features", err)
	}
	return &FeaturesOutput{ContentType: "application/geo+json", Body: data}, nil
}

type TileInput struct {
	LayerIDInput
	Z int `path:"z" minimum:"0" maximum:"22" doc:"Zoom level"`
	X int `path:"x" minimum:"0" doc:"Tile column"`
	Y int `path:"y" minimum:"0" doc:"Tile row"`
}

type TileOutput struct {
	ContentType     string `header:"Content-Type"`
	ContentEncoding string `header:"Content-Encoding"`
	Body            []byte
}

// GetTile renders one MVT tile from a vector layer's current features.
func (h *Handler) GetTile(ctx context.Context, input *TileInput) (*TileOutput, error) {
	rec := h.svc.Registry.Find(input.Planet, input.ID)
	if rec == nil {
		return nil, huma.Error404NotFound("layer not found")
	}
	vr, ok := h.svc.Registry.RenderableOf(rec).(engine.VectorRenderable)
	if !ok {
		return nil, huma.Error400BadRequest("layer has no vector source")
	}

	tile := maptile.New(uint32(input.X), uint32(input.Y), maptile.Zoom(input.Z))
	data, err := engine.MarshalTile(vr.Features(), tile, rec.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("rendering tile", err)
	}
	return &TileOutput{
		ContentType:     "application/vnd.mapbox-vector-tile",
		ContentEncoding: "gzip",
		Body:            data,
	}, nil
}
