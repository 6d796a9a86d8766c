// Package scene drives the rendering engine from the layer registry: it owns
// every renderable's lifetime (lazy creation, planet-switch teardown) and the
// current-view bookkeeping.
package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gazawayj/planetgis/internal/engine"
	"github.com/gazawayj/planetgis/internal/layers"
	"github.com/gazawayj/planetgis/internal/planet"
)

// activateDuration is the view animation length on planet switch.
const activateDuration = time.Second

// Loader populates a vector layer's renderable from its source URL. Load must
// not block; implementations fetch in the background and guard completion
// against the record's generation.
type Loader interface {
	Load(ctx context.Context, p planet.Planet, rec *layers.Record)
}

// Lifecycle is the sole writer of layer records' renderable references and
// the sole caller of engine Dispose.
//
// Policy: renderables for overlays are created lazily on first visibility;
// the basemap is eager at planet activation so the initial view has imagery.
// On planet switch, records are detached and kept: every non-basemap
// renderable of the old planet is disposed, but the records stay registered
// and are revived on return.
type Lifecycle struct {
	mu       sync.Mutex
	registry *layers.Registry
	eng      engine.Engine
	loader   Loader

	active  planet.Planet
	basemap engine.TileRenderable
}

// NewLifecycle creates a lifecycle over the registry and engine. No planet is
// active until ActivatePlanet is called.
func NewLifecycle(registry *layers.Registry, eng engine.Engine) *Lifecycle {
	return &Lifecycle{registry: registry, eng: eng}
}

// SetLoader wires the overlay loader. Without one, vector layers render empty.
func (l *Lifecycle) SetLoader(loader Loader) {
	l.loader = loader
}

// Active returns the currently active planet, or empty before first
// activation.
func (l *Lifecycle) Active() planet.Planet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// ActivatePlanet makes p the rendered planet: tears down the old planet's
// non-basemap renderables, retargets the shared basemap renderable to p's
// profile, revives p's visible layers, and animates the view to the profile
// default center and zoom.
func (l *Lifecycle) ActivatePlanet(ctx context.Context, p planet.Planet) error {
	if !planet.Valid(p) {
		return fmt.Errorf("unknown planet %q", p)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	profile := planet.ProfileOf(p)

	// Release the old planet's renderables. The engine must be told about
	// every one; dropping a reference without Dispose leaks the engine
	// object.
	if l.active != "" && l.active != p {
		for _, rec := range l.registry.Get(l.active) {
			if rec.Renderable == nil {
				continue
			}
			if rec.IsBasemap() {
				// shared basemap survives, see below
				l.registry.DetachRenderable(rec)
				continue
			}
			rec.Renderable.Dispose()
			l.registry.DetachRenderable(rec)
		}
	}

	l.eng.SetProjection(profile.ProjectionID)

	col := l.registry.Get(p)
	for _, rec := range col {
		if rec.IsBasemap() {
			if l.basemap == nil {
				l.basemap = l.eng.NewTileLayer(profile.BasemapURL, profile.ProjectionID, rec.Visible, rec.ZIndex)
			} else {
				l.basemap.SetSource(profile.BasemapURL, profile.ProjectionID)
				l.basemap.SetVisible(rec.Visible)
				l.basemap.SetZIndex(rec.ZIndex)
			}
			l.registry.BindRenderable(rec, l.basemap)
			continue
		}
		if rec.Visible {
			l.ensureRenderable(ctx, p, rec)
		}
	}

	l.active = p
	l.eng.AnimateView(profile.DefaultCenter, profile.DefaultZoom, activateDuration)
	return nil
}

// SetLayerVisibility flips a layer's visibility and synchronizes the
// renderable, creating it on first show. Toggling off keeps the renderable so
// toggling back on does not re-fetch or re-create.
func (l *Lifecycle) SetLayerVisibility(ctx context.Context, p planet.Planet, id string, visible bool) (*layers.Record, error) {
	rec, err := l.registry.SetVisible(p, id, visible)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case rec.Renderable != nil:
		rec.Renderable.SetVisible(visible)
	case visible && p == l.active:
		l.ensureRenderable(ctx, p, rec)
	}
	return rec, nil
}

// AddLayer registers a new layer and, when it is visible on the active
// planet, creates its renderable immediately. Adding a layer whose ID is
// already taken is an error; use the registry directly to replace in place.
func (l *Lifecycle) AddLayer(ctx context.Context, p planet.Planet, rec layers.Record) (*layers.Record, error) {
	added, err := l.registry.Insert(p, rec)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if added.Visible && p == l.active && added.Renderable == nil {
		l.ensureRenderable(ctx, p, added)
	}
	return added, nil
}

// RemoveLayer removes a layer and disposes its renderable if one exists.
func (l *Lifecycle) RemoveLayer(p planet.Planet, id string) error {
	rec := l.registry.Find(p, id)
	if err := l.registry.Remove(p, id); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if rec != nil && rec.Renderable != nil {
		rec.Renderable.Dispose()
		l.registry.DetachRenderable(rec)
	}
	return nil
}

// ApplyZOrder pushes each record's ZIndex to its renderable. Call after any
// reorder.
func (l *Lifecycle) ApplyZOrder(p planet.Planet) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rec := range l.registry.Get(p) {
		if rec.Renderable != nil {
			rec.Renderable.SetZIndex(rec.ZIndex)
		}
	}
}

// ensureRenderable creates the engine object for rec if absent. Vector layers
// additionally kick off ingestion.
func (l *Lifecycle) ensureRenderable(ctx context.Context, p planet.Planet, rec *layers.Record) {
	if rec.Renderable != nil {
		return
	}

	profile := planet.ProfileOf(p)
	switch rec.Kind {
	case layers.KindVector:
		l.registry.BindRenderable(rec, l.eng.NewVectorLayer(engine.Style{Color: rec.Color, Shape: rec.Shape}, rec.Visible, rec.ZIndex))
		if l.loader != nil && rec.SourceURL != "" {
			l.loader.Load(ctx, p, rec)
		}
	default:
		url := rec.SourceURL
		if url == "" {
			url = profile.BasemapURL
		}
		l.registry.BindRenderable(rec, l.eng.NewTileLayer(url, profile.ProjectionID, rec.Visible, rec.ZIndex))
	}
}
