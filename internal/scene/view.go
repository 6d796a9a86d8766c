package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/gazawayj/planetgis/internal/geoformat"
	"github.com/gazawayj/planetgis/internal/planet"
)

// pointerThrottle bounds how often pointer moves update the coordinate
// readout.
const pointerThrottle = 50 * time.Millisecond

// Coordinator tracks the current planet and view readouts (pointer
// coordinate, zoom) and orchestrates planet switches.
type Coordinator struct {
	mu        sync.Mutex
	lifecycle *Lifecycle

	current     planet.Planet
	lonText     string
	latText     string
	zoomText    string
	lastPointer time.Time

	now func() time.Time // test hook
}

// NewCoordinator creates a coordinator over the lifecycle. No planet is
// current until SetPlanet.
func NewCoordinator(lifecycle *Lifecycle) *Coordinator {
	return &Coordinator{
		lifecycle: lifecycle,
		lonText:   "0.00° W / 0.00° E",
		latText:   "0.00° N",
		zoomText:  "2.0",
		now:       time.Now,
	}
}

// Current returns the current planet, or empty before the first SetPlanet.
func (c *Coordinator) Current() planet.Planet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Profile returns the current planet's catalog profile.
func (c *Coordinator) Profile() planet.Profile {
	return planet.ProfileOf(c.Current())
}

// SetPlanet switches the view to p. A no-op when p is already current.
func (c *Coordinator) SetPlanet(ctx context.Context, p planet.Planet) error {
	c.mu.Lock()
	if c.current == p {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.lifecycle.ActivatePlanet(ctx, p); err != nil {
		return err
	}

	c.mu.Lock()
	c.current = p
	c.zoomText = fmt.Sprintf("%.1f", planet.ProfileOf(p).DefaultZoom)
	c.mu.Unlock()
	return nil
}

// FlyTo animates the view to a location on the current planet using the
// profile's fly-to preset.
func (c *Coordinator) FlyTo(lon, lat float64) {
	profile := c.Profile()
	c.lifecycle.eng.AnimateView(orb.Point{lon, lat}, profile.FlyToZoom, profile.FlyToDuration)
}

// OnPointerMove converts a screen coordinate to the geographic readout,
// throttled so rapid pointer events do not thrash the display state.
func (c *Coordinator) OnPointerMove(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	if t.Sub(c.lastPointer) < pointerThrottle {
		return
	}
	c.lastPointer = t

	pt := c.lifecycle.eng.Unproject(x, y)
	c.lonText = geoformat.FormatLongitude(pt[0])
	c.latText = geoformat.FormatLatitude(pt[1])
}

// Coordinates returns the formatted pointer longitude and latitude.
func (c *Coordinator) Coordinates() (lon, lat string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lonText, c.latText
}

// ZoomDisplay returns the formatted zoom level, refreshed from the engine.
func (c *Coordinator) ZoomDisplay() string {
	z := c.lifecycle.eng.Zoom()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoomText = fmt.Sprintf("%.1f", z)
	return c.zoomText
}
