// api/model/place.go
package model

import (
	"encoding/json"
	"time"
)

// Place is a submitted thing with geographic information, to which
// submissions such as comments or surveys can be attached. Geometry is
// carried as an opaque GeoJSON blob; this service stores and returns
// it without interpreting it.
type Place struct {
	ID            string          `json:"id"`
	DataSetID     string          `json:"dataset_id"`
	DataSetSlug   string          `json:"dataset_slug"`
	OwnerUsername string          `json:"owner_username"`
	SubmitterID   string          `json:"submitter_id,omitempty"`
	Geometry      json.RawMessage `json:"geometry"`
	Data          json.RawMessage `json:"data"`
	Visible       bool            `json:"visible"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Place) Kind() string    { return "place" }
func (p *Place) Key() string     { return p.ID }
func (p *Place) IsVisible() bool { return p.Visible }

func (p *Place) IdentifyingAttributes() map[string]string {
	return map[string]string{
		"owner_username": p.OwnerUsername,
		"dataset_slug":   p.DataSetSlug,
		"place_id":       p.ID,
	}
}

// AffectedPaths names every cached view a place mutation can make
// stale: the place itself, the dataset's place list, the dataset
// summary (place counts), and the activity feed.
func (p *Place) AffectedPaths() []string {
	return []string{
		PlacePath(p.OwnerUsername, p.DataSetSlug, p.ID),
		PlaceListPath(p.OwnerUsername, p.DataSetSlug),
		DataSetPath(p.OwnerUsername, p.DataSetSlug),
		ActionListPath(p.OwnerUsername, p.DataSetSlug),
	}
}
