// Package planet defines the closed set of supported planetary bodies and
// their static catalog profiles: basemap imagery, projection, axis labels,
// and default view parameters.
package planet

import (
	"time"

	"github.com/paulmach/orb"
)

// Planet identifies a planetary body. The set is closed; adding a body means
// adding a catalog entry here.
type Planet string

const (
	Earth Planet = "earth"
	Mars  Planet = "mars"
	Moon  Planet = "moon"
)

// All returns every supported planet in catalog order.
func All() []Planet {
	return []Planet{Earth, Mars, Moon}
}

// Valid reports whether p names a cataloged planet.
func Valid(p Planet) bool {
	_, ok := profiles[p]
	return ok
}

// Profile is the immutable per-planet configuration. Profiles are built at
// init and never mutated.
type Profile struct {
	BasemapURL     string        `json:"basemapUrl" doc:"XYZ tile URL template for the basemap"`
	Gravity        float64       `json:"gravity" doc:"Surface gravity in m/s²" example:"9.81"`
	LongitudeLabel string        `json:"longitudeLabel" doc:"Display label for the longitude axis"`
	LatitudeLabel  string        `json:"latitudeLabel" doc:"Display label for the latitude axis"`
	DefaultCenter  orb.Point     `json:"defaultCenter" doc:"Default view center as [lon, lat]"`
	DefaultZoom    float64       `json:"defaultZoom" doc:"Default view zoom level"`
	ProjectionID   string        `json:"projectionId" doc:"Named projection for this body" example:"EPSG:3857"`
	MaxZoom        int           `json:"maxZoom" doc:"Maximum basemap zoom level"`
	FlyToZoom      float64       `json:"flyToZoom" doc:"Zoom used when flying to a named location"`
	FlyToDuration  time.Duration `json:"-"`
}

var profiles = map[Planet]Profile{
	Earth: {
		BasemapURL:     "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Gravity:        9.81,
		LongitudeLabel: "Longitude",
		LatitudeLabel:  "Latitude",
		DefaultCenter:  orb.Point{0, 0},
		DefaultZoom:    2,
		ProjectionID:   "EPSG:3857",
		MaxZoom:        19,
		FlyToZoom:      10,
		FlyToDuration:  2200 * time.Millisecond,
	},
	Mars: {
		BasemapURL:     "https://mars-gis.netlify.app/tiles/{z}/{x}/{y}.png",
		Gravity:        3.71,
		LongitudeLabel: "Ares Longitude",
		LatitudeLabel:  "Ares Latitude",
		DefaultCenter:  orb.Point{0, 0},
		DefaultZoom:    2,
		ProjectionID:   "IAU:49900",
		MaxZoom:        12,
		FlyToZoom:      3,
		FlyToDuration:  1400 * time.Millisecond,
	},
	Moon: {
		BasemapURL:     "https://moon-gis.netlify.app/tiles/{z}/{x}/{y}.png",
		Gravity:        1.62,
		LongitudeLabel: "Selenographic Longitude",
		LatitudeLabel:  "Selenographic Latitude",
		DefaultCenter:  orb.Point{0, 0},
		DefaultZoom:    2,
		ProjectionID:   "IAU:30100",
		MaxZoom:        12,
		FlyToZoom:      3,
		FlyToDuration:  1400 * time.Millisecond,
	},
}

// ProfileOf returns the catalog profile for p. The lookup is total for the
// three cataloged planets; an unknown value returns the zero Profile.
func ProfileOf(p Planet) Profile {
	return profiles[p]
}

// OverlayDef describes a statically cataloged overlay layer seeded into a
// planet's default collection.
type OverlayDef struct {
	ID          string
	Name        string
	Description string
}

var seedOverlays = map[Planet][]OverlayDef{
	Earth: {
		{ID: "fires", Name: "Active Fires", Description: "MODIS thermal anomalies (24hr)"},
		{ID: "clouds", Name: "Cloud Fraction", Description: "Daily cloud cover percentage"},
		{ID: "temp", Name: "Land Surface Temp", Description: "MODIS/Terra daily surface temperature"},
		{ID: "precip", Name: "Global Precipitation", Description: "GPM Near Real-Time rain/snow rates"},
	},
	Mars: nil,
	Moon: {
		{ID: "lroc", Name: "LROC Details", Description: "High-res lunar imagery"},
	},
}

// SeedOverlays returns the statically defined overlays for p, ordered bottom
// to top above the basemap.
func SeedOverlays(p Planet) []OverlayDef {
	return seedOverlays[p]
}

// BasemapName returns the display name for a planet's basemap layer.
func BasemapName(p Planet) string {
	switch p {
	case Mars:
		return "Mars Basemap"
	case Moon:
		return "Moon Basemap"
	default:
		return "Earth Basemap"
	}
}

// BasemapDescription returns the display description for a planet's basemap.
func BasemapDescription(p Planet) string {
	switch p {
	case Mars:
		return "Global Mars reference"
	case Moon:
		return "Global lunar reference"
	default:
		return "Global surface imagery"
	}
}
