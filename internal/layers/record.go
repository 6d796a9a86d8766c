// Package layers holds the per-planet layer registry: the ordered collections
// of layer records that back the viewer's layer panel, and the change bus the
// UI stream subscribes to.
package layers

import "github.com/gazawayj/planetgis/internal/engine"

// Kind determines a layer's rendering strategy.
type Kind string

const (
	KindBasemap Kind = "basemap"
	KindOverlay Kind = "overlay"
	KindVector  Kind = "vector"
	KindRaster  Kind = "raster"
)

// Record represents one logical layer: the basemap or an overlay.
// Single source of truth for the layer panel; Huma reads the tags for
// OpenAPI + validation.
//
// The collection a record lives in is the canonical order: ZIndex always
// equals the record's position in its planet's list.
type Record struct {
	ID          string `json:"id" doc:"Unique layer identifier within the planet" example:"fires"`
	Name        string `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name" example:"Active Fires"`
	Description string `json:"description,omitempty" doc:"Display description"`
	Kind        Kind   `json:"kind" enum:"basemap,overlay,vector,raster" doc:"Rendering strategy" example:"vector"`
	Visible     bool   `json:"visible" doc:"User-controlled visibility toggle"`
	ZIndex      int    `json:"zIndex" doc:"Draw order; higher paints on top"`
	SourceURL   string `json:"sourceUrl,omitempty" doc:"Data origin for vector/raster layers; empty for the basemap"`
	Color       string `json:"color,omitempty" doc:"Style hint (CSS color)" example:"#ff0000"`
	Shape       string `json:"shape,omitempty" doc:"Point marker shape hint" example:"circle"`

	// Renderable is a non-owning handle to the engine object backing this
	// record. Absent until the lifecycle lazily creates it. Guarded by the
	// registry lock: write via BindRenderable/DetachRenderable, and read
	// from loader goroutines only through ApplyFeatures.
	Renderable engine.Renderable `json:"-"`

	// Generation increments each time a renderable is bound or detached.
	// Asynchronous loaders capture it to detect stale completions. Guarded
	// by the registry lock like Renderable.
	Generation uint64 `json:"-"`
}

// IsBasemap reports whether the record is its planet's basemap.
func (r *Record) IsBasemap() bool {
	return r.Kind == KindBasemap
}
