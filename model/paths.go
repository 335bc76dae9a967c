// api/model/paths.go
package model

import "fmt"

// APIRoot is the path prefix all owner-scoped resources live under.
const APIRoot = "/api/v2"

// Canonical resource paths. Response cache metakeys are derived from
// these, so every entity that can invalidate a view must build the
// exact same string the router serves it under.

func UserPath(owner string) string {
	return fmt.Sprintf("%s/%s", APIRoot, owner)
}

func DataSetListPath(owner string) string {
	return fmt.Sprintf("%s/%s/datasets", APIRoot, owner)
}

func DataSetPath(owner, slug string) string {
	return fmt.Sprintf("%s/%s/datasets/%s", APIRoot, owner, slug)
}

func PlaceListPath(owner, slug string) string {
	return fmt.Sprintf("%s/%s/datasets/%s/places", APIRoot, owner, slug)
}

func PlacePath(owner, slug, placeID string) string {
	return fmt.Sprintf("%s/%s/datasets/%s/places/%s", APIRoot, owner, slug, placeID)
}

func SubmissionListPath(owner, slug, placeID, setName string) string {
	return fmt.Sprintf("%s/%s/datasets/%s/places/%s/%s", APIRoot, owner, slug, placeID, setName)
}

func SubmissionPath(owner, slug, placeID, setName, submissionID string) string {
	return fmt.Sprintf("%s/%s/datasets/%s/places/%s/%s/%s", APIRoot, owner, slug, placeID, setName, submissionID)
}

func DataSetSubmissionListPath(owner, slug, setName string) string {
	return fmt.Sprintf("%s/%s/datasets/%s/%s", APIRoot, owner, slug, setName)
}

func ActionListPath(owner, slug string) string {
	return fmt.Sprintf("%s/%s/datasets/%s/actions", APIRoot, owner, slug)
}

func AttachmentListPath(owner, slug, thingID string) string {
	return fmt.Sprintf("%s/%s/datasets/%s/places/%s/attachments", APIRoot, owner, slug, thingID)
}
