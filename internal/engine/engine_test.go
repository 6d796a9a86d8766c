package engine

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

func TestHeadlessUnproject(t *testing.T) {
	e := NewHeadless()

	// Viewport center maps to the view center.
	pt := e.Unproject(512, 384)
	if pt[0] != 0 || pt[1] != 0 {
		t.Errorf("center unproject = %v, want [0 0]", pt)
	}

	// Right of center means east, up means north.
	pt = e.Unproject(612, 284)
	if pt[0] <= 0 || pt[1] <= 0 {
		t.Errorf("northeast unproject = %v, want positive lon/lat", pt)
	}

	// Latitude clamps at the poles.
	pt = e.Unproject(512, -1e6)
	if pt[1] != 90 {
		t.Errorf("clamped lat = %v, want 90", pt[1])
	}
}

func TestHeadlessLifecycleTracking(t *testing.T) {
	e := NewHeadless()
	tile := e.NewTileLayer("https://example.com/{z}/{x}/{y}.png", "EPSG:3857", true, 0)
	vec := e.NewVectorLayer(Style{Color: "#ff0000", Shape: "circle"}, false, 1)

	if e.TileLayerCount() != 1 || e.VectorLayerCount() != 1 {
		t.Fatalf("layer counts = %d/%d, want 1/1", e.TileLayerCount(), e.VectorLayerCount())
	}

	tile.SetSource("https://mars.example/{z}/{x}/{y}.png", "IAU:49900")
	ht := tile.(*HeadlessTileLayer)
	if ht.URLTemplate != "https://mars.example/{z}/{x}/{y}.png" || ht.SourceSets() != 1 {
		t.Errorf("SetSource not applied: %+v", ht)
	}

	vec.SetVisible(true)
	vec.SetZIndex(3)
	hv := vec.(*HeadlessVectorLayer)
	if !hv.Visible() || hv.ZIndex() != 3 {
		t.Errorf("vector state = visible %v z %d, want true/3", hv.Visible(), hv.ZIndex())
	}

	vec.Dispose()
	if !hv.Disposed() {
		t.Error("Dispose not recorded")
	}
	if hv.Features() != nil {
		t.Error("Dispose should release the feature source")
	}
}

func TestMarshalTile(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{10, 10})
	f.Properties["brightness"] = 330.5
	fc.Append(f)
	fc.Append(geojson.NewFeature(orb.Point{-120, -45}))

	// World tile at z0 contains both points.
	data, err := MarshalTile(fc, maptile.New(0, 0, 0), "fires")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("world tile is empty")
	}

	// A z4 tile over the north Atlantic contains neither.
	data, err = MarshalTile(fc, maptile.At(orb.Point{-40, 55}, 4), "fires")
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Errorf("expected empty tile, got %d bytes", len(data))
	}

	if data, _ := MarshalTile(nil, maptile.New(0, 0, 0), "fires"); data != nil {
		t.Error("nil collection should produce no tile")
	}
}
