package layers

import (
	"testing"

	"github.com/gazawayj/planetgis/internal/planet"
)

func ids(col []*Record) []string {
	out := make([]string, len(col))
	for i, rec := range col {
		out[i] = rec.ID
	}
	return out
}

func assertDenseZIndex(t *testing.T, col []*Record) {
	t.Helper()
	for i, rec := range col {
		if rec.ZIndex != i {
			t.Fatalf("layer %q at position %d has zIndex %d", rec.ID, i, rec.ZIndex)
		}
	}
}

func TestSeedCollections(t *testing.T) {
	r := NewRegistry(nil)

	earth := r.Get(planet.Earth)
	if len(earth) != 5 {
		t.Fatalf("earth layers = %d, want 5", len(earth))
	}
	if !earth[0].IsBasemap() || earth[0].ID != "earth-base" || !earth[0].Visible {
		t.Errorf("earth basemap wrong: %+v", earth[0])
	}
	assertDenseZIndex(t, earth)

	mars := r.Get(planet.Mars)
	if len(mars) != 1 || mars[0].ID != "mars-base" {
		t.Errorf("mars seed = %v", ids(mars))
	}

	moon := r.Get(planet.Moon)
	if len(moon) != 2 || moon[1].ID != "lroc" || moon[1].Visible {
		t.Errorf("moon seed = %v", ids(moon))
	}
}

func TestUpsertValidation(t *testing.T) {
	r := NewRegistry(nil)

	if _, err := r.Upsert(planet.Earth, Record{Kind: KindVector, SourceURL: "http://x/y.csv"}); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := r.Upsert(planet.Earth, Record{Name: "My Layer", Kind: KindVector}); err == nil {
		t.Error("vector layer without source accepted")
	}

	rec, err := r.Upsert(planet.Earth, Record{Name: "Quake Feed", Kind: KindVector, SourceURL: "http://x/y.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != "quake-feed" {
		t.Errorf("generated id = %q", rec.ID)
	}
	col := r.Get(planet.Earth)
	if col[len(col)-1].ID != "quake-feed" {
		t.Errorf("new layer not at top: %v", ids(col))
	}
	assertDenseZIndex(t, col)
}

func TestInsertDuplicateFails(t *testing.T) {
	r := NewRegistry(nil)
	if _, err := r.Insert(planet.Earth, Record{ID: "fires", Name: "Dup", Kind: KindOverlay}); err == nil {
		t.Error("duplicate id insert accepted")
	}
	// The generated id must collide too, not just an explicit one.
	if _, err := r.Insert(planet.Earth, Record{Name: "Fires", Kind: KindOverlay}); err == nil {
		t.Error("duplicate generated id insert accepted")
	}
}

func TestUpsertKeepsKind(t *testing.T) {
	r := NewRegistry(nil)
	rec, err := r.Upsert(planet.Earth, Record{Name: "Quake Feed", Kind: KindVector, SourceURL: "http://x/y.csv"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Upsert(planet.Earth, Record{ID: rec.ID, Name: "Quake Feed", Kind: KindRaster, SourceURL: "http://x/y.csv"}); err == nil {
		t.Error("kind change accepted on replace")
	}

	got, err := r.Upsert(planet.Earth, Record{ID: rec.ID, Name: "Quake Feed v2", Kind: KindVector, SourceURL: "http://x/y.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindVector {
		t.Errorf("kind = %q, want %q", got.Kind, KindVector)
	}
	if got.Name != "Quake Feed v2" {
		t.Errorf("name = %q, replace did not apply", got.Name)
	}
}

func TestReorderReindexes(t *testing.T) {
	r := NewRegistry(nil)
	before := ids(r.Get(planet.Earth))

	for from := 0; from < len(before); from++ {
		for to := 0; to < len(before); to++ {
			if from == to {
				continue
			}
			rr := NewRegistry(nil)
			rr.Get(planet.Earth)
			if err := rr.Reorder(planet.Earth, from, to); err != nil {
				t.Fatalf("reorder %d->%d: %v", from, to, err)
			}
			col := rr.Get(planet.Earth)
			assertDenseZIndex(t, col)
			seen := map[string]bool{}
			for _, id := range ids(col) {
				if seen[id] {
					t.Fatalf("reorder %d->%d duplicated %q", from, to, id)
				}
				seen[id] = true
			}
			if len(seen) != len(before) {
				t.Fatalf("reorder %d->%d lost layers: %v", from, to, ids(col))
			}
		}
	}

	if err := r.Reorder(planet.Earth, 0, 99); err == nil {
		t.Error("out of range reorder accepted")
	}
}

func TestReorderByIDList(t *testing.T) {
	r := NewRegistry(nil)
	col := r.Get(planet.Earth)

	want := []string{"precip", "earth-base", "temp", "fires", "clouds"}
	if err := r.ReorderByIDList(planet.Earth, want); err != nil {
		t.Fatal(err)
	}
	col = r.Get(planet.Earth)
	got := ids(col)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	assertDenseZIndex(t, col)

	if err := r.ReorderByIDList(planet.Earth, []string{"fires"}); err == nil {
		t.Error("short id list accepted")
	}
	if err := r.ReorderByIDList(planet.Earth, []string{"a", "b", "c", "d", "e"}); err == nil {
		t.Error("unknown ids accepted")
	}
}

func TestSetVisibleIdempotent(t *testing.T) {
	r := NewRegistry(nil)
	r.Get(planet.Earth)

	for i := 0; i < 2; i++ {
		rec, err := r.SetVisible(planet.Earth, "fires", true)
		if err != nil {
			t.Fatal(err)
		}
		if !rec.Visible {
			t.Fatalf("pass %d: visible = false", i)
		}
	}

	if _, err := r.SetVisible(planet.Earth, "nope", true); err == nil {
		t.Error("unknown layer accepted")
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry(nil)
	r.Get(planet.Earth)

	if err := r.Remove(planet.Earth, "earth-base"); err == nil {
		t.Error("basemap removal accepted")
	}
	if err := r.Remove(planet.Earth, "clouds"); err != nil {
		t.Fatal(err)
	}
	col := r.Get(planet.Earth)
	if len(col) != 4 {
		t.Fatalf("layers after remove = %d, want 4", len(col))
	}
	assertDenseZIndex(t, col)
	if err := r.Remove(planet.Earth, "clouds"); err == nil {
		t.Error("double remove accepted")
	}
}

func TestPlanetIsolation(t *testing.T) {
	r := NewRegistry(nil)
	earthBefore := ids(r.Get(planet.Earth))

	if _, err := r.Upsert(planet.Mars, Record{Name: "Dust Storms", Kind: KindVector, SourceURL: "http://x/dust.csv"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Reorder(planet.Mars, 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove(planet.Mars, "dust-storms"); err != nil {
		t.Fatal(err)
	}

	earthAfter := r.Get(planet.Earth)
	if len(earthAfter) != len(earthBefore) {
		t.Fatalf("earth length changed: %d -> %d", len(earthBefore), len(earthAfter))
	}
	for i, rec := range earthAfter {
		if rec.ID != earthBefore[i] {
			t.Errorf("earth order changed at %d: %q -> %q", i, earthBefore[i], rec.ID)
		}
	}
	if !earthAfter[0].Visible {
		t.Error("earth basemap visibility changed")
	}
}

func TestBusPublishes(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	r := NewRegistry(bus)
	r.Get(planet.Earth)
	if _, err := r.SetVisible(planet.Earth, "fires", true); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-ch:
		if ev.Planet != planet.Earth || ev.Action != "updated" || ev.ID != "fires" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("no event published")
	}

	// Idempotent toggles publish nothing.
	if _, err := r.SetVisible(planet.Earth, "fires", true); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-ch:
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}
