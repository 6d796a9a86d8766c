package engine

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// MarshalTile renders the features intersecting a tile as a gzipped MVT
// layer. Returns nil for empty tiles.
func MarshalTile(fc *geojson.FeatureCollection, tile maptile.Tile, layerName string) ([]byte, error) {
	if fc == nil || len(fc.Features) == 0 {
		return nil, nil
	}

	tileBound := tile.Bound()
	clipped := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		if !geometryIntersectsBound(f.Geometry, tileBound) {
			continue
		}
		// Clip/ProjectToTile mutate geometry in place, so work on a clone.
		geom := orb.Clone(f.Geometry)
		if geom == nil {
			continue
		}
		clone := geojson.NewFeature(geom)
		for k, v := range f.Properties {
			clone.Properties[k] = v
		}
		clipped.Append(clone)
	}
	if len(clipped.Features) == 0 {
		return nil, nil
	}

	layer := mvt.NewLayer(layerName, clipped)
	if eps := simplifyEpsilon(tile.Z); eps > 0 {
		layer.Simplify(simplify.DouglasPeucker(eps))
	}
	layer.Clip(tileBound)
	layer.ProjectToTile(tile)
	layer.RemoveEmpty(0.5, 0.5)
	if len(layer.Features) == 0 {
		return nil, nil
	}

	return mvt.MarshalGzipped(mvt.Layers{layer})
}

// geometryIntersectsBound checks geometry/bound intersection beyond the quick
// bounding-box rejection, so point layers do not leak into neighboring tiles.
func geometryIntersectsBound(geom orb.Geometry, bound orb.Bound) bool {
	if geom == nil || !geom.Bound().Intersects(bound) {
		return false
	}

	switch g := geom.(type) {
	case orb.Point:
		return bound.Contains(g)
	case orb.MultiPoint:
		for _, p := range g {
			if bound.Contains(p) {
				return true
			}
		}
		return false
	case orb.Polygon:
		for _, ring := range g {
			for _, p := range ring {
				if bound.Contains(p) {
					return true
				}
			}
		}
		return planar.PolygonContains(g, bound.Center())
	case orb.MultiPolygon:
		for _, poly := range g {
			if geometryIntersectsBound(poly, bound) {
				return true
			}
		}
		return false
	default:
		// Lines and anything else: trust the bounding-box check.
		return true
	}
}

// simplifyEpsilon returns the simplification tolerance for a zoom level.
// Higher zoom keeps more detail.
func simplifyEpsilon(zoom maptile.Zoom) float64 {
	switch {
	case zoom >= 14:
		return 0
	case zoom >= 10:
		return 0.00001
	case zoom >= 6:
		return 0.0001
	case zoom >= 4:
		return 0.0005
	default:
		return 0.001
	}
}
