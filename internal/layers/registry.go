package layers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/gazawayj/planetgis/internal/engine"
	"github.com/gazawayj/planetgis/internal/planet"
)

// Registry tracks every planet's ordered layer collection. Each planet's
// collection is seeded on first access from the catalog and is fully isolated
// from the others.
//
// The slice order is canonical: after every structural change the registry
// re-derives ZIndex for all members so that ZIndex == position.
type Registry struct {
	mu      sync.RWMutex
	planets map[planet.Planet][]*Record
	bus     *EventBus
}

// NewRegistry creates a registry publishing changes to bus. A nil bus
// disables publishing.
func NewRegistry(bus *EventBus) *Registry {
	return &Registry{
		planets: make(map[planet.Planet][]*Record),
		bus:     bus,
	}
}

// seedLocked builds p's default collection from the catalog: the basemap at
// the bottom plus any statically defined overlays. Caller holds mu.
func (r *Registry) seedLocked(p planet.Planet) []*Record {
	if col, ok := r.planets[p]; ok {
		return col
	}

	col := []*Record{{
		ID:          string(p) + "-base",
		Name:        planet.BasemapName(p),
		Description: planet.BasemapDescription(p),
		Kind:        KindBasemap,
		Visible:     true,
	}}
	for _, def := range planet.SeedOverlays(p) {
		col = append(col, &Record{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Kind:        KindOverlay,
			Visible:     false,
		})
	}
	reindex(col)
	r.planets[p] = col
	return col
}

// Get returns p's current collection in draw order, seeding it on first
// visit. The returned slice is a copy; the records are live.
func (r *Registry) Get(p planet.Planet) []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := r.seedLocked(p)
	out := make([]*Record, len(col))
	copy(out, col)
	return out
}

// Find returns the record with the given id, or nil.
func (r *Registry) Find(p planet.Planet, id string) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.seedLocked(p) {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

// Upsert inserts rec at the top of p's collection, or replaces the existing
// record with the same ID in place. Manually created layers must carry a name
// and, for vector/raster kinds, a source URL.
func (r *Registry) Upsert(p planet.Planet, rec Record) (*Record, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return nil, fmt.Errorf("layer name is required")
	}
	if (rec.Kind == KindVector || rec.Kind == KindRaster) && strings.TrimSpace(rec.SourceURL) == "" {
		return nil, fmt.Errorf("layer %q: source URL is required for %s layers", rec.Name, rec.Kind)
	}
	if rec.ID == "" {
		rec.ID = generateID(rec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	col := r.seedLocked(p)
	for _, existing := range col {
		if existing.ID == rec.ID {
			// A record's kind picks its renderable type, so it cannot
			// change once the layer exists.
			if rec.Kind != existing.Kind {
				return nil, fmt.Errorf("layer %q: kind is %s and cannot change to %s", existing.ID, existing.Kind, rec.Kind)
			}
			existing.Name = rec.Name
			existing.Description = rec.Description
			existing.Visible = rec.Visible
			existing.SourceURL = rec.SourceURL
			existing.Color = rec.Color
			existing.Shape = rec.Shape
			r.publish(p, "updated", existing.ID)
			return existing, nil
		}
	}

	added := rec
	col = append(col, &added)
	reindex(col)
	r.planets[p] = col
	r.publish(p, "created", added.ID)
	return &added, nil
}

// Insert adds a new record and fails loudly on a duplicate ID. Use Upsert
// when replacement is acceptable.
func (r *Registry) Insert(p planet.Planet, rec Record) (*Record, error) {
	if rec.ID == "" {
		rec.ID = generateID(rec.Name)
	}
	r.mu.Lock()
	exists := false
	for _, existing := range r.seedLocked(p) {
		if existing.ID == rec.ID {
			exists = true
			break
		}
	}
	r.mu.Unlock()
	if exists {
		return nil, fmt.Errorf("layer %q already exists on %s", rec.ID, p)
	}
	return r.Upsert(p, rec)
}

// Reorder moves the record at fromIndex to toIndex and re-derives every
// member's ZIndex.
func (r *Registry) Reorder(p planet.Planet, fromIndex, toIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := r.seedLocked(p)
	if fromIndex < 0 || fromIndex >= len(col) || toIndex < 0 || toIndex >= len(col) {
		return fmt.Errorf("reorder %s: index out of range (%d -> %d of %d)", p, fromIndex, toIndex, len(col))
	}
	if fromIndex == toIndex {
		return nil
	}

	moved := col[fromIndex]
	col = append(col[:fromIndex], col[fromIndex+1:]...)
	col = append(col[:toIndex], append([]*Record{moved}, col[toIndex:]...)...)
	reindex(col)
	r.planets[p] = col
	r.publish(p, "reordered", moved.ID)
	return nil
}

// ReorderByIDList replaces p's order with idsInNewOrder. The list must be a
// permutation of the current collection's ids; drag-and-drop callers already
// hold the final order.
func (r *Registry) ReorderByIDList(p planet.Planet, idsInNewOrder []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := r.seedLocked(p)
	if len(idsInNewOrder) != len(col) {
		return fmt.Errorf("reorder %s: got %d ids, have %d layers", p, len(idsInNewOrder), len(col))
	}

	byID := make(map[string]*Record, len(col))
	for _, rec := range col {
		byID[rec.ID] = rec
	}

	next := make([]*Record, 0, len(col))
	for _, id := range idsInNewOrder {
		rec, ok := byID[id]
		if !ok {
			return fmt.Errorf("reorder %s: unknown layer %q", p, id)
		}
		delete(byID, id)
		next = append(next, rec)
	}

	reindex(next)
	r.planets[p] = next
	r.publish(p, "reordered", "")
	return nil
}

// SetVisible flips a record's visibility flag and returns the record.
// Idempotent: requesting the current state is a no-op, not an error.
func (r *Registry) SetVisible(p planet.Planet, id string, visible bool) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.seedLocked(p) {
		if rec.ID != id {
			continue
		}
		if rec.Visible != visible {
			rec.Visible = visible
			r.publish(p, "updated", id)
		}
		return rec, nil
	}
	return nil, fmt.Errorf("layer %q not found on %s", id, p)
}

// Remove deletes a record. Removing the basemap is a caller bug and fails.
func (r *Registry) Remove(p planet.Planet, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := r.seedLocked(p)
	for i, rec := range col {
		if rec.ID != id {
			continue
		}
		if rec.IsBasemap() {
			return fmt.Errorf("cannot remove basemap layer %q", id)
		}
		col = append(col[:i], col[i+1:]...)
		reindex(col)
		r.planets[p] = col
		r.publish(p, "deleted", id)
		return nil
	}
	return fmt.Errorf("layer %q not found on %s", id, p)
}

// BindRenderable attaches ren to rec and advances its generation, all under
// the registry lock. The lifecycle goroutine and ingest completions both
// touch these fields, so every access goes through the lock.
func (r *Registry) BindRenderable(rec *Record, ren engine.Renderable) {
	r.mu.Lock()
	rec.Renderable = ren
	rec.Generation++
	r.mu.Unlock()
}

// DetachRenderable clears rec's handle and advances its generation so any
// in-flight load for the old binding turns stale. The caller disposes the
// renderable; the registry only drops the reference.
func (r *Registry) DetachRenderable(rec *Record) {
	r.mu.Lock()
	rec.Renderable = nil
	rec.Generation++
	r.mu.Unlock()
}

// RenderableOf returns rec's current renderable under the registry lock.
// Readers outside the lifecycle must use this instead of the field.
func (r *Registry) RenderableOf(rec *Record) engine.Renderable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return rec.Renderable
}

// Generation returns rec's current generation under the registry lock.
// Asynchronous loaders capture it before starting and compare on completion.
func (r *Registry) Generation(rec *Record) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return rec.Generation
}

// ApplyFeatures delivers fc to rec's vector renderable, but only while rec is
// still in p's collection at generation gen with a vector renderable
// attached. The whole check-and-set runs under the registry lock so a planet
// switch cannot rebind the renderable mid-apply. Reports whether the
// features were applied.
func (r *Registry) ApplyFeatures(p planet.Planet, rec *Record, gen uint64, fc *geojson.FeatureCollection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := false
	for _, cur := range r.seedLocked(p) {
		if cur == rec {
			live = true
			break
		}
	}
	if !live || rec.Generation != gen {
		return false
	}
	vr, ok := rec.Renderable.(engine.VectorRenderable)
	if !ok || vr == nil {
		return false
	}
	vr.SetFeatures(fc)
	return true
}

func (r *Registry) publish(p planet.Planet, action, id string) {
	if r.bus != nil {
		r.bus.Publish(Event{Planet: p, Action: action, ID: id})
	}
}

// reindex assigns ZIndex = position for every member.
func reindex(col []*Record) {
	for i, rec := range col {
		rec.ZIndex = i
	}
}

// generateID creates a URL-safe ID from a name.
func generateID(name string) string {
	id := strings.ToLower(name)
	id = strings.ReplaceAll(id, " ", "-")
	var result strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
