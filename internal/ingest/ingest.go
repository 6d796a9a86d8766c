// Package ingest populates vector layers from remote CSV or GeoJSON feeds.
//
// Loads run in the background with a fixed-delay, bounded retry. Because the
// registry can change while a fetch is in flight (planet switched, layer
// removed), every completion is guarded by a liveness check before it touches
// renderable state.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/gazawayj/planetgis/internal/layers"
	"github.com/gazawayj/planetgis/internal/planet"
)

// Archiver persists ingested detections. Optional.
type Archiver interface {
	ArchiveDetections(ctx context.Context, layerID string, fc *geojson.FeatureCollection) error
}

// Ingestor loads overlay data into vector renderables.
type Ingestor struct {
	registry *layers.Registry
	client   *http.Client
	archiver Archiver

	// RetryDelay is the fixed wait between failed fetch attempts.
	RetryDelay time.Duration
	// MaxAttempts bounds the retry loop; afterwards the layer is marked
	// failed rather than retrying forever.
	MaxAttempts int

	loading atomic.Int32
	wg      sync.WaitGroup

	mu     sync.Mutex
	failed map[string]error
}

// New creates an ingestor over the registry with the default retry policy
// (5 attempts, 5 seconds apart).
func New(registry *layers.Registry) *Ingestor {
	return &Ingestor{
		registry:    registry,
		client:      &http.Client{Timeout: 30 * time.Second},
		RetryDelay:  5 * time.Second,
		MaxAttempts: 5,
		failed:      make(map[string]error),
	}
}

// SetHTTPClient overrides the HTTP client, mainly for tests.
func (g *Ingestor) SetHTTPClient(c *http.Client) {
	g.client = c
}

// SetArchiver wires a detection archive.
func (g *Ingestor) SetArchiver(a Archiver) {
	g.archiver = a
}

// IsLoading reports whether any load is in flight.
func (g *Ingestor) IsLoading() bool {
	return g.loading.Load() > 0
}

// LastError returns the terminal error for a layer whose load gave up, or
// nil.
func (g *Ingestor) LastError(p planet.Planet, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failed[failKey(p, id)]
}

// Wait blocks until all in-flight loads finish. Test helper.
func (g *Ingestor) Wait() {
	g.wg.Wait()
}

// Load fetches rec's source and populates its vector renderable. Returns
// immediately; the work happens in the background. Implements scene.Loader.
func (g *Ingestor) Load(ctx context.Context, p planet.Planet, rec *layers.Record) {
	if rec.SourceURL == "" {
		return
	}

	// The trigger is usually an HTTP handler whose context dies as soon as
	// the response is written. Only planet switch or layer removal may end
	// a load, and the generation guard already covers those, so the
	// background work must outlive the request.
	ctx = context.WithoutCancel(ctx)

	// Capture the generation now: a later planet switch or removal
	// recreates the renderable and bumps it, invalidating this load.
	gen := g.registry.Generation(rec)

	g.loading.Add(1)
	g.wg.Add(1)
	go func() {
		defer g.loading.Add(-1)
		defer g.wg.Done()
		g.run(ctx, p, rec, gen)
	}()
}

func (g *Ingestor) run(ctx context.Context, p planet.Planet, rec *layers.Record, gen uint64) {
	var lastErr error
	for attempt := 0; attempt < g.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				g.fail(p, rec.ID, ctx.Err())
				return
			case <-time.After(g.RetryDelay):
			}
		}

		text, err := g.fetch(ctx, rec.SourceURL)
		if err != nil {
			lastErr = err
			continue
		}

		fc, err := Parse(text)
		if err != nil {
			// Unparseable payloads do not get better on retry.
			g.fail(p, rec.ID, err)
			return
		}

		g.apply(ctx, p, rec, gen, fc)
		return
	}
	g.fail(p, rec.ID, lastErr)
}

func (g *Ingestor) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// apply pushes parsed features into the layer's renderable, but only if the
// layer is still live: still registered, same generation, renderable present.
// The liveness check and the SetFeatures call happen atomically under the
// registry lock, so a concurrent planet switch cannot slip in between.
func (g *Ingestor) apply(ctx context.Context, p planet.Planet, rec *layers.Record, gen uint64, fc *geojson.FeatureCollection) {
	if !g.registry.ApplyFeatures(p, rec, gen, fc) {
		return // layer removed or renderable recreated since the fetch started
	}

	g.mu.Lock()
	delete(g.failed, failKey(p, rec.ID))
	g.mu.Unlock()

	if g.archiver != nil && len(fc.Features) > 0 {
		// Archival is best-effort; the layer is already populated.
		_ = g.archiver.ArchiveDetections(ctx, rec.ID, fc)
	}
}

func (g *Ingestor) fail(p planet.Planet, id string, err error) {
	if err == nil {
		err = fmt.Errorf("load gave up")
	}
	g.mu.Lock()
	g.failed[failKey(p, id)] = err
	g.mu.Unlock()
}

func failKey(p planet.Planet, id string) string {
	return string(p) + "/" + id
}
