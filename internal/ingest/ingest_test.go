package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gazawayj/planetgis/internal/engine"
	"github.com/gazawayj/planetgis/internal/layers"
	"github.com/gazawayj/planetgis/internal/planet"
)

const firesCSV = "latitude,longitude,brightness\n" +
	"34.1,-118.2,330.5\n" +
	"not-a-number,-120.0,300.1\n" +
	"-33.9,151.2,315.0\n"

// addVectorLayer registers a visible vector layer with a live renderable, the
// state the lifecycle leaves it in before triggering ingestion.
func addVectorLayer(t *testing.T, reg *layers.Registry, eng *engine.Headless, url string) *layers.Record {
	t.Helper()
	rec, err := reg.Upsert(planet.Earth, layers.Record{
		Name: "NASA FIRMS", Kind: layers.KindVector, SourceURL: url, Visible: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	reg.BindRenderable(rec, eng.NewVectorLayer(engine.Style{Color: "red"}, true, rec.ZIndex))
	return rec
}

func TestLoadSkipsInvalidRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(firesCSV))
	}))
	defer srv.Close()

	reg := layers.NewRegistry(nil)
	eng := engine.NewHeadless()
	rec := addVectorLayer(t, reg, eng, srv.URL)

	g := New(reg)
	g.Load(context.Background(), planet.Earth, rec)
	g.Wait()

	if g.IsLoading() {
		t.Error("isLoading still true after completion")
	}
	fc := rec.Renderable.(engine.VectorRenderable).Features()
	if fc == nil || len(fc.Features) != 2 {
		t.Fatalf("features = %v, want 2", fc)
	}
	if fc.Features[0].Properties["brightness"] != "330.5" {
		t.Errorf("properties not carried: %v", fc.Features[0].Properties)
	}
	if err := g.LastError(planet.Earth, rec.ID); err != nil {
		t.Errorf("unexpected terminal error: %v", err)
	}
}

func TestLoadRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "not ready", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(firesCSV))
	}))
	defer srv.Close()

	reg := layers.NewRegistry(nil)
	eng := engine.NewHeadless()
	rec := addVectorLayer(t, reg, eng, srv.URL)

	g := New(reg)
	g.RetryDelay = time.Millisecond
	g.Load(context.Background(), planet.Earth, rec)
	g.Wait()

	if calls.Load() != 3 {
		t.Errorf("fetch calls = %d, want 3", calls.Load())
	}
	fc := rec.Renderable.(engine.VectorRenderable).Features()
	if fc == nil || len(fc.Features) != 2 {
		t.Fatalf("features not applied after retry")
	}
}

func TestLoadGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	reg := layers.NewRegistry(nil)
	eng := engine.NewHeadless()
	rec := addVectorLayer(t, reg, eng, srv.URL)

	g := New(reg)
	g.RetryDelay = time.Millisecond
	g.MaxAttempts = 3
	g.Load(context.Background(), planet.Earth, rec)
	g.Wait()

	if calls.Load() != 3 {
		t.Errorf("fetch calls = %d, want 3", calls.Load())
	}
	if err := g.LastError(planet.Earth, rec.ID); err == nil {
		t.Error("no terminal error recorded after giving up")
	}
	if fc := rec.Renderable.(engine.VectorRenderable).Features(); fc != nil {
		t.Error("features applied despite failure")
	}
}

func TestLoadOutlivesCallerContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(firesCSV))
	}))
	defer srv.Close()

	reg := layers.NewRegistry(nil)
	eng := engine.NewHeadless()
	rec := addVectorLayer(t, reg, eng, srv.URL)

	g := New(reg)

	// The trigger is an HTTP handler whose context is cancelled as soon as
	// the response is written. The background load must not die with it.
	ctx, cancel := context.WithCancel(context.Background())
	g.Load(ctx, planet.Earth, rec)
	cancel()
	close(release)
	g.Wait()

	fc := rec.Renderable.(engine.VectorRenderable).Features()
	if fc == nil || len(fc.Features) != 2 {
		t.Fatalf("features = %v, want 2 after caller context cancelled", fc)
	}
	if err := g.LastError(planet.Earth, rec.ID); err != nil {
		t.Errorf("terminal error recorded for a successful load: %v", err)
	}
}

func TestConcurrentRebindAndLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(firesCSV))
	}))
	defer srv.Close()

	reg := layers.NewRegistry(nil)
	eng := engine.NewHeadless()
	rec := addVectorLayer(t, reg, eng, srv.URL)

	g := New(reg)

	// Rebind the renderable while loads complete. Run with -race: every
	// Renderable/Generation access must go through the registry lock.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			reg.DetachRenderable(rec)
			reg.BindRenderable(rec, eng.NewVectorLayer(engine.Style{}, true, rec.ZIndex))
		}
	}()
	for i := 0; i < 20; i++ {
		g.Load(context.Background(), planet.Earth, rec)
	}
	<-done
	g.Wait()
}

func TestStaleCompletionIsDropped(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(firesCSV))
	}))
	defer srv.Close()

	reg := layers.NewRegistry(nil)
	eng := engine.NewHeadless()
	rec := addVectorLayer(t, reg, eng, srv.URL)

	g := New(reg)
	g.Load(context.Background(), planet.Earth, rec)

	// Simulate a planet switch while the fetch is in flight: the old
	// renderable is disposed and the generation bumped.
	rec.Renderable.Dispose()
	fresh := eng.NewVectorLayer(engine.Style{}, true, rec.ZIndex)
	reg.BindRenderable(rec, fresh)

	close(release)
	g.Wait()

	if fc := fresh.Features(); fc != nil {
		t.Error("stale completion mutated the new renderable")
	}
}

func TestRemovedLayerCompletionIsDropped(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(firesCSV))
	}))
	defer srv.Close()

	reg := layers.NewRegistry(nil)
	eng := engine.NewHeadless()
	rec := addVectorLayer(t, reg, eng, srv.URL)
	vr := rec.Renderable.(engine.VectorRenderable)

	g := New(reg)
	g.Load(context.Background(), planet.Earth, rec)

	if err := reg.Remove(planet.Earth, rec.ID); err != nil {
		t.Fatal(err)
	}
	close(release)
	g.Wait()

	if fc := vr.Features(); fc != nil {
		t.Error("completion resurrected a removed layer")
	}
}

func TestParseGeoJSON(t *testing.T) {
	payload := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[151.2,-33.9]},"properties":{"name":"syd"}}
	]}`
	fc, err := Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(fc.Features))
	}
}

func TestParseCSVEdgeCases(t *testing.T) {
	// Missing coordinate columns yields an empty collection, not an error.
	fc, err := Parse("name,value\nfoo,1\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 0 {
		t.Errorf("features = %d, want 0", len(fc.Features))
	}

	// Ragged rows are tolerated.
	fc, err = Parse("latitude,longitude,extra\n1.5,2.5\n3.5,4.5,more,cols\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 2 {
		t.Errorf("features = %d, want 2", len(fc.Features))
	}
}
