// api/model/webhook.go
package model

import "time"

// Webhook is an outbound notification target registered on a dataset.
// When the named event fires on the named submission set, the
// serialized resource is POSTed to the URL.
type Webhook struct {
	ID            string    `json:"id"`
	DataSetID     string    `json:"dataset_id"`
	SubmissionSet string    `json:"submission_set"` // "places" or a submission set name
	Event         string    `json:"event"`          // currently only "add"
	URL           string    `json:"url"`
	CreatedAt     time.Time `json:"created_at"`
}
