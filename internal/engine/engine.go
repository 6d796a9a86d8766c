// Package engine abstracts the map rendering engine the viewer core drives.
//
// The core never owns engine resources: it holds non-owning renderable
// handles and releases them with explicit Dispose calls. Any 2D tile/vector
// mapping widget can satisfy the capability; the package also ships a
// headless implementation used by the server and tests.
package engine

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Renderable is the engine-side object backing one logical layer.
type Renderable interface {
	SetVisible(visible bool)
	SetZIndex(z int)
	// Dispose releases the engine resources behind the renderable. The
	// handle must not be used afterwards.
	Dispose()
}

// TileRenderable is a renderable backed by an XYZ tile source.
type TileRenderable interface {
	Renderable
	// SetSource retargets the tile source to a new URL template and
	// projection without recreating the renderable.
	SetSource(urlTemplate, projectionID string)
}

// VectorRenderable is a renderable backed by a feature source.
type VectorRenderable interface {
	Renderable
	SetFeatures(fc *geojson.FeatureCollection)
	Features() *geojson.FeatureCollection
}

// Style carries the point style hints a layer record provides.
type Style struct {
	Color string
	Shape string
}

// Engine is the rendering capability the lifecycle and view coordinator
// consume.
type Engine interface {
	NewTileLayer(urlTemplate, projectionID string, visible bool, zIndex int) TileRenderable
	NewVectorLayer(style Style, visible bool, zIndex int) VectorRenderable

	// AnimateView moves the view to a geographic center and zoom.
	AnimateView(center orb.Point, zoom float64, duration time.Duration)

	// SetProjection switches the view to a named planetary frame.
	SetProjection(projectionID string)

	// Unproject converts a screen coordinate to a geographic coordinate
	// under the current projection and view.
	Unproject(x, y float64) orb.Point

	// Zoom returns the current view zoom level.
	Zoom() float64
}
