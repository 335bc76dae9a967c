// api/model/submission.go
package model

import (
	"encoding/json"
	"time"
)

// AllSubmissionsSet is the reserved set name addressing every
// submission set at once in list URLs.
const AllSubmissionsSet = "submissions"

// Submission is the simplest flavor of submitted thing. It belongs to
// a named set on a place (comments, votes, surveys, ...).
type Submission struct {
	ID            string          `json:"id"`
	SetName       string          `json:"set_name"`
	PlaceID       string          `json:"place_id"`
	DataSetID     string          `json:"dataset_id"`
	DataSetSlug   string          `json:"dataset_slug"`
	OwnerUsername string          `json:"owner_username"`
	SubmitterID   string          `json:"submitter_id,omitempty"`
	Data          json.RawMessage `json:"data"`
	Visible       bool            `json:"visible"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (s *Submission) Kind() string    { return "submission" }
func (s *Submission) Key() string     { return s.ID }
func (s *Submission) IsVisible() bool { return s.Visible }

func (s *Submission) IdentifyingAttributes() map[string]string {
	return map[string]string{
		"owner_username":      s.OwnerUsername,
		"dataset_slug":        s.DataSetSlug,
		"place_id":            s.PlaceID,
		"submission_set_name": s.SetName,
		"submission_id":       s.ID,
	}
}

// AffectedPaths fans out to the submission itself, its set on the
// place, the all-sets aggregate, the dataset-wide set lists, the
// parent place (set summaries are serialized with it), the place list,
// and the activity feed.
func (s *Submission) AffectedPaths() []string {
	return []string{
		SubmissionPath(s.OwnerUsername, s.DataSetSlug, s.PlaceID, s.SetName, s.ID),
		SubmissionListPath(s.OwnerUsername, s.DataSetSlug, s.PlaceID, s.SetName),
		SubmissionListPath(s.OwnerUsername, s.DataSetSlug, s.PlaceID, AllSubmissionsSet),
		DataSetSubmissionListPath(s.OwnerUsername, s.DataSetSlug, s.SetName),
		DataSetSubmissionListPath(s.OwnerUsername, s.DataSetSlug, AllSubmissionsSet),
		PlacePath(s.OwnerUsername, s.DataSetSlug, s.PlaceID),
		PlaceListPath(s.OwnerUsername, s.DataSetSlug),
		ActionListPath(s.OwnerUsername, s.DataSetSlug),
	}
}
