// api/model/events.go
package model

// Mutation event topics published by the storage layer. Payloads are
// the mutated entities themselves.
const (
	EventDataSetCreated = "dataset.created"
	EventDataSetUpdated = "dataset.updated"
	EventDataSetDeleted = "dataset.deleted"

	EventPlaceCreated = "place.created"
	EventPlaceUpdated = "place.updated"
	EventPlaceDeleted = "place.deleted"

	EventSubmissionCreated = "submission.created"
	EventSubmissionUpdated = "submission.updated"
	EventSubmissionDeleted = "submission.deleted"

	EventAttachmentCreated = "attachment.created"
	EventAttachmentUpdated = "attachment.updated"

	EventActionCreated = "action.created"

	// EventDataSetCloneRequested asks the background task runner to
	// deep-copy a dataset's places and submissions. The runner is an
	// external collaborator; this service only performs the shallow
	// clone synchronously.
	EventDataSetCloneRequested = "dataset.clone_requested"
)

// MutationEvents lists every topic whose payload can invalidate cached
// responses.
var MutationEvents = []string{
	EventDataSetCreated, EventDataSetUpdated, EventDataSetDeleted,
	EventPlaceCreated, EventPlaceUpdated, EventPlaceDeleted,
	EventSubmissionCreated, EventSubmissionUpdated, EventSubmissionDeleted,
	EventAttachmentCreated, EventAttachmentUpdated,
	EventActionCreated,
}
