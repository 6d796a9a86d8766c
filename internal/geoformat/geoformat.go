// Package geoformat formats geographic coordinates for display.
//
// Longitude uses the dual-direction planetary convention: every longitude is
// reported as a west/east pair on the [0,360) circle, because Mars and Moon
// cartography count degrees west and degrees east from the prime meridian
// rather than signed hemispheres.
package geoformat

import "fmt"

// FormatLongitude returns a west/east pair string such as
// "45.00° W / 315.00° E" for -45.
func FormatLongitude(value float64) string {
	var west, east float64
	if value < 0 {
		west = -value
	} else {
		west = 360 - value
	}
	if value >= 0 {
		east = value
	} else {
		east = 360 + value
	}
	return fmt.Sprintf("%.2f° W / %.2f° E", west, east)
}

// FormatLatitude returns a hemisphere-suffixed string such as "30.00° S".
func FormatLatitude(value float64) string {
	if value >= 0 {
		return fmt.Sprintf("%.2f° N", value)
	}
	return fmt.Sprintf("%.2f° S", -value)
}
