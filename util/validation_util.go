// api/util/validation_util.go

package util

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/mapcanvas/atlas/api/model"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-_]*$`)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateDataSet(dataset model.DataSet) error {
	if dataset.Slug == "" {
		return fmt.Errorf("dataset slug cannot be empty")
	}
	if !slugPattern.MatchString(dataset.Slug) {
		return fmt.Errorf("dataset slug must contain only lowercase letters, digits, hyphens and underscores")
	}
	if dataset.DisplayName == "" {
		return fmt.Errorf("dataset display name cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidatePlace(place model.Place) error {
	if len(place.Geometry) == 0 {
		return fmt.Errorf("place geometry cannot be empty")
	}
	var geometry struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(place.Geometry, &geometry); err != nil {
		return fmt.Errorf("place geometry must be valid GeoJSON: %w", err)
	}
	if geometry.Type == "" {
		return fmt.Errorf("place geometry must have a type")
	}
	if len(geometry.Coordinates) == 0 {
		return fmt.Errorf("place geometry must have coordinates")
	}
	if len(place.Data) > 0 && !json.Valid(place.Data) {
		return fmt.Errorf("place data must be a valid JSON object")
	}
	return nil
}

func (v *ValidationUtil) ValidateSubmission(submission model.Submission) error {
	if submission.SetName == "" {
		return fmt.Errorf("submission set name cannot be empty")
	}
	if submission.SetName == model.AllSubmissionsSet {
		return fmt.Errorf("submission set name %q is reserved", model.AllSubmissionsSet)
	}
	if len(submission.Data) > 0 && !json.Valid(submission.Data) {
		return fmt.Errorf("submission data must be a valid JSON object")
	}
	return nil
}

func (v *ValidationUtil) ValidateUser(user model.User) error {
	if user.Username == "" {
		return fmt.Errorf("user username cannot be empty")
	}
	if user.Email == "" {
		return fmt.Errorf("user email cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateWebhook(webhook model.Webhook) error {
	if webhook.URL == "" {
		return fmt.Errorf("webhook URL cannot be empty")
	}
	if webhook.SubmissionSet == "" {
		return fmt.Errorf("webhook submission set cannot be empty")
	}
	if webhook.Event == "" {
		return fmt.Errorf("webhook event cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateAttachment(attachment model.Attachment) error {
	if attachment.Name == "" {
		return fmt.Errorf("attachment name cannot be empty")
	}
	if attachment.FileURL == "" {
		return fmt.Errorf("attachment file URL cannot be empty")
	}
	return nil
}
