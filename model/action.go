// api/model/action.go
package model

import "time"

// Action records what happened to a submitted thing and when; it backs
// the dataset activity feed.
type Action struct {
	ID            string    `json:"id"`
	ActionType    string    `json:"action"` // "create" or "update"
	ThingKind     string    `json:"thing_kind"`
	ThingID       string    `json:"thing_id"`
	OwnerUsername string    `json:"owner_username"`
	DataSetSlug   string    `json:"dataset_slug"`
	CreatedAt     time.Time `json:"created_at"`
}

func (a *Action) Kind() string { return "action" }
func (a *Action) Key() string  { return a.ID }

func (a *Action) IdentifyingAttributes() map[string]string {
	return map[string]string{
		"owner_username": a.OwnerUsername,
		"dataset_slug":   a.DataSetSlug,
	}
}

func (a *Action) AffectedPaths() []string {
	return []string{
		ActionListPath(a.OwnerUsername, a.DataSetSlug),
	}
}
