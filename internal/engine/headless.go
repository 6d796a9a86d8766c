package engine

import (
	"math"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Headless is an in-process Engine with no display. It tracks the same state
// a browser widget would (renderables, visibility, z-order, view) so the
// server can mirror the viewer and tests can observe lifecycle behavior.
type Headless struct {
	mu sync.Mutex

	viewportW  float64
	viewportH  float64
	center     orb.Point
	zoom       float64
	projection string

	tileLayers   []*HeadlessTileLayer
	vectorLayers []*HeadlessVectorLayer
	animations   int
}

// NewHeadless creates a headless engine with a default 1024x768 viewport at
// world view.
func NewHeadless() *Headless {
	return &Headless{
		viewportW:  1024,
		viewportH:  768,
		zoom:       2,
		projection: "EPSG:3857",
	}
}

// HeadlessTileLayer is the headless TileRenderable.
type HeadlessTileLayer struct {
	mu          sync.Mutex
	URLTemplate string
	Projection  string
	visible     bool
	zIndex      int
	disposed    bool
	sourceSets  int
}

func (l *HeadlessTileLayer) SetVisible(v bool) {
	l.mu.Lock()
	l.visible = v
	l.mu.Unlock()
}

func (l *HeadlessTileLayer) SetZIndex(z int) {
	l.mu.Lock()
	l.zIndex = z
	l.mu.Unlock()
}

func (l *HeadlessTileLayer) SetSource(urlTemplate, projectionID string) {
	l.mu.Lock()
	l.URLTemplate = urlTemplate
	l.Projection = projectionID
	l.sourceSets++
	l.mu.Unlock()
}

func (l *HeadlessTileLayer) Dispose() {
	l.mu.Lock()
	l.disposed = true
	l.mu.Unlock()
}

// Visible reports the current visibility flag.
func (l *HeadlessTileLayer) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// ZIndex reports the current draw order.
func (l *HeadlessTileLayer) ZIndex() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zIndex
}

// Disposed reports whether Dispose has been called.
func (l *HeadlessTileLayer) Disposed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disposed
}

// SourceSets reports how many times the tile source was retargeted.
func (l *HeadlessTileLayer) SourceSets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sourceSets
}

// HeadlessVectorLayer is the headless VectorRenderable.
type HeadlessVectorLayer struct {
	mu       sync.Mutex
	Style    Style
	fc       *geojson.FeatureCollection
	visible  bool
	zIndex   int
	disposed bool
}

func (l *HeadlessVectorLayer) SetVisible(v bool) {
	l.mu.Lock()
	l.visible = v
	l.mu.Unlock()
}

func (l *HeadlessVectorLayer) SetZIndex(z int) {
	l.mu.Lock()
	l.zIndex = z
	l.mu.Unlock()
}

func (l *HeadlessVectorLayer) SetFeatures(fc *geojson.FeatureCollection) {
	l.mu.Lock()
	l.fc = fc
	l.mu.Unlock()
}

func (l *HeadlessVectorLayer) Features() *geojson.FeatureCollection {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fc
}

func (l *HeadlessVectorLayer) Dispose() {
	l.mu.Lock()
	l.disposed = true
	l.fc = nil
	l.mu.Unlock()
}

// Visible reports the current visibility flag.
func (l *HeadlessVectorLayer) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// ZIndex reports the current draw order.
func (l *HeadlessVectorLayer) ZIndex() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zIndex
}

// Disposed reports whether Dispose has been called.
func (l *HeadlessVectorLayer) Disposed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disposed
}

func (e *Headless) NewTileLayer(urlTemplate, projectionID string, visible bool, zIndex int) TileRenderable {
	l := &HeadlessTileLayer{
		URLTemplate: urlTemplate,
		Projection:  projectionID,
		visible:     visible,
		zIndex:      zIndex,
	}
	e.mu.Lock()
	e.tileLayers = append(e.tileLayers, l)
	e.mu.Unlock()
	return l
}

func (e *Headless) NewVectorLayer(style Style, visible bool, zIndex int) VectorRenderable {
	l := &HeadlessVectorLayer{
		Style:   style,
		visible: visible,
		zIndex:  zIndex,
	}
	e.mu.Lock()
	e.vectorLayers = append(e.vectorLayers, l)
	e.mu.Unlock()
	return l
}

func (e *Headless) AnimateView(center orb.Point, zoom float64, duration time.Duration) {
	e.mu.Lock()
	e.center = center
	e.zoom = zoom
	e.animations++
	e.mu.Unlock()
}

func (e *Headless) SetProjection(projectionID string) {
	e.mu.Lock()
	e.projection = projectionID
	e.mu.Unlock()
}

// Unproject maps a viewport pixel to lon/lat with a plate-carree scale at the
// current zoom. Good enough for coordinate readouts; a real widget projects
// through its own view math.
func (e *Headless) Unproject(x, y float64) orb.Point {
	e.mu.Lock()
	defer e.mu.Unlock()

	degPerPx := 360 / (256 * math.Exp2(e.zoom))
	lon := e.center[0] + (x-e.viewportW/2)*degPerPx
	lat := e.center[1] - (y-e.viewportH/2)*degPerPx
	if lat > 90 {
		lat = 90
	}
	if lat < -90 {
		lat = -90
	}
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return orb.Point{lon, lat}
}

func (e *Headless) Zoom() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

// Center returns the current view center.
func (e *Headless) Center() orb.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.center
}

// Projection returns the current named projection.
func (e *Headless) Projection() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projection
}

// Animations returns how many view animations were issued.
func (e *Headless) Animations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.animations
}

// TileLayerCount returns how many tile renderables were ever created.
func (e *Headless) TileLayerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tileLayers)
}

// VectorLayerCount returns how many vector renderables were ever created.
func (e *Headless) VectorLayerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.vectorLayers)
}

// Ensure Headless implements Engine.
var _ Engine = (*Headless)(nil)
