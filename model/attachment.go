// api/model/attachment.go
package model

import "time"

// Attachment is a file attached to a place or submission. The blob
// itself lives in external storage; only its URL is recorded here.
type Attachment struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	FileURL       string    `json:"file"`
	OwnerUsername string    `json:"owner_username"`
	DataSetSlug   string    `json:"dataset_slug"`
	PlaceID       string    `json:"place_id"`
	SetName       string    `json:"submission_set_name,omitempty"`
	SubmissionID  string    `json:"submission_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (a *Attachment) Kind() string { return "attachment" }
func (a *Attachment) Key() string  { return a.ID }

func (a *Attachment) IdentifyingAttributes() map[string]string {
	attrs := map[string]string{
		"owner_username": a.OwnerUsername,
		"dataset_slug":   a.DataSetSlug,
		"place_id":       a.PlaceID,
		"attachment_id":  a.ID,
	}
	if a.SubmissionID != "" {
		attrs["submission_set_name"] = a.SetName
		attrs["submission_id"] = a.SubmissionID
	}
	return attrs
}

func (a *Attachment) AffectedPaths() []string {
	paths := []string{
		AttachmentListPath(a.OwnerUsername, a.DataSetSlug, a.PlaceID),
		PlacePath(a.OwnerUsername, a.DataSetSlug, a.PlaceID),
		PlaceListPath(a.OwnerUsername, a.DataSetSlug),
	}
	if a.SubmissionID != "" {
		paths = append(paths,
			SubmissionPath(a.OwnerUsername, a.DataSetSlug, a.PlaceID, a.SetName, a.SubmissionID),
			SubmissionListPath(a.OwnerUsername, a.DataSetSlug, a.PlaceID, a.SetName),
		)
	}
	return paths
}
