// api/model/geojson.go
package model

import "encoding/json"

// Feature is the GeoJSON rendering of a single place. The geometry blob
// passes through exactly as stored.
type Feature struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// FeatureCollection is the bulk GeoJSON rendering of a place list.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps places as a GeoJSON FeatureCollection,
// with each place's data blob as the feature properties.
func NewFeatureCollection(places []*Place) *FeatureCollection {
	features := make([]Feature, 0, len(places))
	for _, place := range places {
		features = append(features, Feature{
			Type:       "Feature",
			ID:         place.ID,
			Geometry:   place.Geometry,
			Properties: place.Data,
		})
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}
