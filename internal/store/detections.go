package store

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const detectionsSchema = `
CREATE TABLE IF NOT EXISTS detections (
	layer_id    VARCHAR NOT NULL,
	latitude    DOUBLE NOT NULL,
	longitude   DOUBLE NOT NULL,
	brightness  DOUBLE,
	acquired    VARCHAR,
	ingested_at TIMESTAMP NOT NULL
)`

// Detections archives ingested point features. Implements ingest.Archiver.
type Detections struct {
	db *sql.DB
}

// NewDetections creates a detection archive over db.
func NewDetections(db *sql.DB) *Detections {
	return &Detections{db: db}
}

// ArchiveDetections appends every point feature of fc to the detections
// table, tagged with the layer it was ingested for.
func (d *Detections) ArchiveDetections(ctx context.Context, layerID string, fc *geojson.FeatureCollection) error {
	if d.db == nil || fc == nil {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO detections (layer_id, latitude, longitude, brightness, acquired, ingested_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		var brightness any
		if b, ok := propFloat(f.Properties, "brightness", "bright_ti4"); ok {
			brightness = b
		}
		acquired := propString(f.Properties, "acq_date", "acquired")

		if _, err := stmt.ExecContext(ctx, layerID, pt[1], pt[0], brightness, acquired, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func propFloat(props geojson.Properties, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := props[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func propString(props geojson.Properties, keys ...string) string {
	for _, k := range keys {
		if s, ok := props[k].(string); ok {
			return s
		}
	}
	return ""
}

// Detection is one archived fire detection row.
type Detection struct {
	LayerID    string    `json:"layerId" doc:"Layer the detection was ingested for"`
	Latitude   float64   `json:"latitude" doc:"Latitude in degrees"`
	Longitude  float64   `json:"longitude" doc:"Longitude in degrees"`
	Brightness *float64  `json:"brightness,omitempty" doc:"Sensor brightness, if reported"`
	Acquired   string    `json:"acquired,omitempty" doc:"Acquisition date from the feed"`
	IngestedAt time.Time `json:"ingestedAt" doc:"When the row was archived"`
}

// LayerCount is the archive size for one layer.
type LayerCount struct {
	LayerID string `json:"layerId" doc:"Layer ID"`
	Count   int64  `json:"count" doc:"Archived detections"`
}

// Recent returns the newest archived detections, optionally filtered to one
// layer. Limit is clamped to 1..1000.
func (d *Detections) Recent(ctx context.Context, layerID string, limit int) ([]Detection, error) {
	if d.db == nil {
		return nil, nil
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	query := "SELECT layer_id, latitude, longitude, brightness, acquired, ingested_at FROM detections"
	args := []any{}
	if layerID != "" {
		query += " WHERE layer_id = ?"
		args = append(args, layerID)
	}
	query += " ORDER BY ingested_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Detection
	for rows.Next() {
		var det Detection
		var brightness sql.NullFloat64
		var acquired sql.NullString
		if err := rows.Scan(&det.LayerID, &det.Latitude, &det.Longitude, &brightness, &acquired, &det.IngestedAt); err != nil {
			return nil, err
		}
		if brightness.Valid {
			b := brightness.Float64
			det.Brightness = &b
		}
		det.Acquired = acquired.String
		out = append(out, det)
	}
	return out, rows.Err()
}

// CountByLayer returns archive sizes grouped by layer.
func (d *Detections) CountByLayer(ctx context.Context) ([]LayerCount, error) {
	if d.db == nil {
		return nil, nil
	}
	rows, err := d.db.QueryContext(ctx,
		"SELECT layer_id, COUNT(*) FROM detections GROUP BY layer_id ORDER BY layer_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LayerCount
	for rows.Next() {
		var lc LayerCount
		if err := rows.Scan(&lc.LayerID, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}
