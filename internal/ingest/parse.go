package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Parse converts a CSV or GeoJSON payload into a feature collection. CSV rows
// lacking numeric latitude/longitude are skipped, not fatal; a payload with
// zero valid rows yields an empty collection.
func Parse(text string) (*geojson.FeatureCollection, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		return geojson.UnmarshalFeatureCollection([]byte(trimmed))
	}
	return parseCSV(trimmed), nil
}

// parseCSV reads header-keyed rows into point features. Column detection
// accepts the common latitude/longitude spellings; ragged and malformed rows
// are tolerated per row.
func parseCSV(text string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return fc
	}

	idxLat, idxLon := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return fc
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // malformed row, skip
		}
		if idxLat >= len(row) || idxLon >= len(row) {
			continue
		}

		lat, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		if err1 != nil || err2 != nil {
			continue
		}

		f := geojson.NewFeature(orb.Point{lon, lat})
		for i, h := range header {
			if i < len(row) {
				f.Properties[h] = row[i]
			}
		}
		fc.Append(f)
	}
	return fc
}
