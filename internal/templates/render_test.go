package templates

import (
	"strings"
	"testing"
)

func TestRenderEmbeddedFragments(t *testing.T) {
	r, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, err := r.Render("empty-state", map[string]string{
		"Title": "No layers", "Message": "Nothing here",
	})
	if err != nil {
		t.Fatalf("Render empty-state: %v", err)
	}
	if !strings.Contains(out, "No layers") || !strings.Contains(out, "Nothing here") {
		t.Errorf("empty-state output missing content: %q", out)
	}

	out, err = r.Render("layer-card", map[string]any{
		"Planet": "earth", "ID": "fires", "Name": "Active Fires",
		"Kind": "vector", "Visible": true, "ZIndex": 1, "Basemap": false,
	})
	if err != nil {
		t.Fatalf("Render layer-card: %v", err)
	}
	if !strings.Contains(out, `id="layer-fires"`) {
		t.Errorf("layer-card missing element id: %q", out)
	}
	if !strings.Contains(out, "checked") {
		t.Errorf("visible layer card not checked: %q", out)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Render("no-such-fragment", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
