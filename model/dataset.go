// api/model/dataset.go
package model

import "time"

// DataSet is a named collection of places owned by one user and
// intended for a coherent purpose, e.g. display on a single map. It is
// the unit permissions and client credentials attach to.
type DataSet struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	DisplayName   string    `json:"display_name"`
	OwnerID       string    `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Permissions []PermissionRule `json:"permissions,omitempty"`
	Keys        []ApiKey         `json:"keys,omitempty"`
	Origins     []Origin         `json:"origins,omitempty"`
	Groups      []Group          `json:"groups,omitempty"`
	Webhooks    []Webhook        `json:"webhooks,omitempty"`
}

func (d *DataSet) Kind() string { return "dataset" }
func (d *DataSet) Key() string  { return d.ID }

func (d *DataSet) IdentifyingAttributes() map[string]string {
	return map[string]string{
		"owner_username": d.OwnerUsername,
		"dataset_slug":   d.Slug,
	}
}

func (d *DataSet) AffectedPaths() []string {
	return []string{
		DataSetPath(d.OwnerUsername, d.Slug),
		DataSetListPath(d.OwnerUsername),
	}
}

// GroupNamed returns the named group on this dataset, or nil.
func (d *DataSet) GroupNamed(name string) *Group {
	for i := range d.Groups {
		if d.Groups[i].Name == name {
			return &d.Groups[i]
		}
	}
	return nil
}

// KeyValued returns the API key with the given key string, or nil.
func (d *DataSet) KeyValued(value string) *ApiKey {
	for i := range d.Keys {
		if d.Keys[i].Key == value {
			return &d.Keys[i]
		}
	}
	return nil
}

// OriginMatching returns the first trusted origin matching the given
// request origin, or nil.
func (d *DataSet) OriginMatching(origin string) *Origin {
	for i := range d.Origins {
		if d.Origins[i].Matches(origin) {
			return &d.Origins[i]
		}
	}
	return nil
}
