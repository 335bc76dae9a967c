// api/service/submission_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/dao"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/util"
)

// ISubmissionService defines the interface for submission operations
type ISubmissionService interface {
	CreateSubmission(ctx context.Context, submission model.Submission, dataset *model.DataSet) (*model.Submission, error)
	UpdateSubmission(ctx context.Context, submission model.Submission, dataset *model.DataSet) (*model.Submission, error)
	DeleteSubmission(ctx context.Context, ownerUsername, slug, placeID, setName, submissionID string) error
	GetSubmission(ctx context.Context, ownerUsername, slug, placeID, setName, submissionID string, includeInvisible bool) (*model.Submission, error)
	ListSubmissions(ctx context.Context, ownerUsername, slug, placeID, setName string, includeInvisible bool, limit, offset int) ([]*model.Submission, error)
	ListDataSetSubmissions(ctx context.Context, ownerUsername, slug, setName string, includeInvisible bool, limit, offset int) ([]*model.Submission, error)
}

// SubmissionService handles business logic for submission operations
type SubmissionService struct {
	submissionDAO   *dao.SubmissionDAO
	placeDAO        *dao.PlaceDAO
	actionDAO       *dao.ActionDAO
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ ISubmissionService = &SubmissionService{}

// NewSubmissionService creates a new instance of SubmissionService
func NewSubmissionService(submissionDAO *dao.SubmissionDAO, placeDAO *dao.PlaceDAO, actionDAO *dao.ActionDAO, validationUtil *util.ValidationUtil, notificationSvc *util.NotificationService, eventBus *util.EventBus) *SubmissionService {
	return &SubmissionService{
		submissionDAO:   submissionDAO,
		placeDAO:        placeDAO,
		actionDAO:       actionDAO,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}
}

// CreateSubmission creates a submission in a named set on a place,
// records it on the activity feed, and delivers matching webhooks.
func (s *SubmissionService) CreateSubmission(ctx context.Context, submission model.Submission, dataset *model.DataSet) (*model.Submission, error) {
	if err := s.validationUtil.ValidateSubmission(submission); err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrInvalidSubmissionData, err)
	}

	// The parent place must exist and be addressable by the same URL
	// the submission was posted under.
	if _, err := s.placeDAO.GetPlace(ctx, submission.OwnerUsername, submission.DataSetSlug, submission.PlaceID, true); err != nil {
		return nil, err
	}

	submissionID, err := s.submissionDAO.CreateSubmission(ctx, submission)
	if err != nil {
		logger.Error("Error creating submission",
			zap.Error(err),
			zap.String("placeID", submission.PlaceID),
			zap.String("setName", submission.SetName))
		return nil, err
	}
	submission.ID = submissionID

	created, err := s.submissionDAO.GetSubmission(ctx, submission.OwnerUsername, submission.DataSetSlug, submission.PlaceID, submission.SetName, submissionID, true)
	if err != nil {
		return nil, err
	}

	s.recordAction(ctx, "create", created)
	s.deliverWebhooks(dataset, created.SetName, "add", created)

	logger.Info("Submission created successfully",
		zap.String("submissionID", submissionID),
		zap.String("setName", submission.SetName))
	return created, nil
}

// UpdateSubmission handles updates to an existing submission
func (s *SubmissionService) UpdateSubmission(ctx context.Context, submission model.Submission, dataset *model.DataSet) (*model.Submission, error) {
	if err := s.validationUtil.ValidateSubmission(submission); err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrInvalidSubmissionData, err)
	}

	updatedSubmission, err := s.submissionDAO.UpdateSubmission(ctx, submission)
	if err != nil {
		logger.Error("Error updating submission", zap.Error(err), zap.String("submissionID", submission.ID))
		return nil, err
	}

	s.recordAction(ctx, "update", updatedSubmission)
	s.deliverWebhooks(dataset, updatedSubmission.SetName, "update", updatedSubmission)

	logger.Info("Submission updated successfully", zap.String("submissionID", submission.ID))
	return updatedSubmission, nil
}

// DeleteSubmission handles the deletion of a submission
func (s *SubmissionService) DeleteSubmission(ctx context.Context, ownerUsername, slug, placeID, setName, submissionID string) error {
	err := s.submissionDAO.DeleteSubmission(ctx, ownerUsername, slug, placeID, setName, submissionID)
	if err != nil {
		logger.Error("Error deleting submission", zap.Error(err), zap.String("submissionID", submissionID))
		return err
	}

	logger.Info("Submission deleted successfully", zap.String("submissionID", submissionID))
	return nil
}

// GetSubmission retrieves a submission by its ID
func (s *SubmissionService) GetSubmission(ctx context.Context, ownerUsername, slug, placeID, setName, submissionID string, includeInvisible bool) (*model.Submission, error) {
	return s.submissionDAO.GetSubmission(ctx, ownerUsername, slug, placeID, setName, submissionID, includeInvisible)
}

// ListSubmissions lists a place's submissions in one set, or every set
// under the reserved all-sets name.
func (s *SubmissionService) ListSubmissions(ctx context.Context, ownerUsername, slug, placeID, setName string, includeInvisible bool, limit, offset int) ([]*model.Submission, error) {
	submissions, err := s.submissionDAO.ListSubmissions(ctx, ownerUsername, slug, placeID, setName, includeInvisible, limit, offset)
	if err != nil {
		logger.Error("Error listing submissions",
			zap.Error(err),
			zap.String("placeID", placeID),
			zap.String("setName", setName))
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, nil
}

// ListDataSetSubmissions lists submissions across every place in the
// dataset.
func (s *SubmissionService) ListDataSetSubmissions(ctx context.Context, ownerUsername, slug, setName string, includeInvisible bool, limit, offset int) ([]*model.Submission, error) {
	submissions, err := s.submissionDAO.ListDataSetSubmissions(ctx, ownerUsername, slug, setName, includeInvisible, limit, offset)
	if err != nil {
		logger.Error("Error listing dataset submissions",
			zap.Error(err),
			zap.String("owner", ownerUsername),
			zap.String("slug", slug),
			zap.String("setName", setName))
		return nil, fmt.Errorf("failed to list dataset submissions: %w", err)
	}

	return submissions, nil
}

func (s *SubmissionService) recordAction(ctx context.Context, actionType string, submission *model.Submission) {
	if silentMutations(ctx) {
		return
	}
	action := model.Action{
		ActionType:    actionType,
		ThingKind:     submission.Kind(),
		ThingID:       submission.ID,
		OwnerUsername: submission.OwnerUsername,
		DataSetSlug:   submission.DataSetSlug,
	}
	if _, err := s.actionDAO.CreateAction(ctx, action); err != nil {
		logger.Error("Failed to record submission action",
			zap.Error(err),
			zap.String("submissionID", submission.ID))
	}
}

// deliverWebhooks runs detached from the request: webhook targets are
// external and must not hold up the response.
func (s *SubmissionService) deliverWebhooks(dataset *model.DataSet, submissionSet, event string, submission *model.Submission) {
	if dataset == nil || len(dataset.Webhooks) == 0 {
		return
	}
	payload, err := json.Marshal(submission)
	if err != nil {
		logger.Error("Failed to serialize submission for webhooks", zap.Error(err))
		return
	}
	go s.notificationSvc.DeliverWebhooks(context.Background(), dataset.Webhooks, submissionSet, event, payload)
}
