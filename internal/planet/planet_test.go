package planet

import "testing"

func TestProfileConstants(t *testing.T) {
	tests := []struct {
		planet   Planet
		gravity  float64
		lonLabel string
		latLabel string
	}{
		{Earth, 9.81, "Longitude", "Latitude"},
		{Moon, 1.62, "Selenographic Longitude", "Selenographic Latitude"},
		{Mars, 3.71, "Ares Longitude", "Ares Latitude"},
	}
	for _, tt := range tests {
		p := ProfileOf(tt.planet)
		if p.Gravity != tt.gravity {
			t.Errorf("%s gravity = %v, want %v", tt.planet, p.Gravity, tt.gravity)
		}
		if p.LongitudeLabel != tt.lonLabel || p.LatitudeLabel != tt.latLabel {
			t.Errorf("%s labels = %q/%q, want %q/%q",
				tt.planet, p.LongitudeLabel, p.LatitudeLabel, tt.lonLabel, tt.latLabel)
		}
	}
}

func TestProfileTotality(t *testing.T) {
	for _, p := range All() {
		prof := ProfileOf(p)
		if prof.BasemapURL == "" {
			t.Errorf("%s has no basemap URL", p)
		}
		if prof.ProjectionID == "" {
			t.Errorf("%s has no projection", p)
		}
		if !Valid(p) {
			t.Errorf("Valid(%s) = false", p)
		}
	}
	if Valid("pluto") {
		t.Error("Valid(pluto) = true, want false")
	}
}

func TestSeedOverlaysOrder(t *testing.T) {
	earth := SeedOverlays(Earth)
	if len(earth) != 4 {
		t.Fatalf("earth overlays = %d, want 4", len(earth))
	}
	if earth[0].ID != "fires" || earth[3].ID != "precip" {
		t.Errorf("earth overlay order wrong: %v", earth)
	}
	if got := SeedOverlays(Mars); len(got) != 0 {
		t.Errorf("mars overlays = %v, want none", got)
	}
}
