// api/model/paths_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionAffectedPathFanout(t *testing.T) {
	s := &Submission{
		ID:            "s1",
		SetName:       "comments",
		PlaceID:       "p1",
		DataSetSlug:   "park",
		OwnerUsername: "demo",
	}

	paths := s.AffectedPaths()

	// A submission mutation must reach past its own set: the all-sets
	// aggregates and the parent place (whose serialization summarizes its
	// sets) go stale too.
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/places/p1/comments/s1")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/places/p1/comments")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/places/p1/submissions")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/comments")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/submissions")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/places/p1")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/places")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/actions")
}

func TestPlaceAffectedPathFanout(t *testing.T) {
	p := &Place{
		ID:            "p1",
		DataSetSlug:   "park",
		OwnerUsername: "demo",
	}

	paths := p.AffectedPaths()

	assert.Contains(t, paths, "/api/v2/demo/datasets/park/places/p1")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/places")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park")
	assert.Contains(t, paths, "/api/v2/demo/datasets/park/actions")
}

func TestAttachmentAffectedPathsDependOnParent(t *testing.T) {
	placeLevel := &Attachment{ID: "a1", OwnerUsername: "demo", DataSetSlug: "park", PlaceID: "p1"}
	assert.NotContains(t, placeLevel.AffectedPaths(),
		"/api/v2/demo/datasets/park/places/p1/comments")

	submissionLevel := &Attachment{
		ID: "a1", OwnerUsername: "demo", DataSetSlug: "park",
		PlaceID: "p1", SetName: "comments", SubmissionID: "s1",
	}
	assert.Contains(t, submissionLevel.AffectedPaths(),
		"/api/v2/demo/datasets/park/places/p1/comments")
	assert.Contains(t, submissionLevel.AffectedPaths(),
		"/api/v2/demo/datasets/park/places/p1/comments/s1")
}
