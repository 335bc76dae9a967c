// api/service/place_service.go
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

// PlacesSet is the webhook "submission set" name addressing the places
// of a dataset themselves.
const PlacesSet = "places"

// IPlaceService defines the interface for place operations
type IPlaceService interface {
	CreatePlace(ctx context.Context, place model.Place, dataset *model.DataSet) (*model.Place, error)
	UpdatePlace(ctx context.Context, place model.Place, dataset *model.DataSet) (*model.Place, error)
	DeletePlace(ctx context.Context, ownerUsername, slug, placeID string) error
	GetPlace(ctx context.Context, ownerUsername, slug, placeID string, includeInvisible bool) (*model.Place, error)
	ListPlaces(ctx context.Context, ownerUsername, slug string, includeInvisible bool, limit, offset int) ([]*model.Place, error)
}

// PlaceService handles business logic for place operations
type PlaceService struct {
	placeDAO        *dao.PlaceDAO
	actionDAO       *dao.ActionDAO
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IPlaceService = &PlaceService{}

// NewPlaceService creates a new instance of PlaceService
func NewPlaceService(placeDAO *dao.PlaceDAO, actionDAO *dao.ActionDAO, validationUtil *util.ValidationUtil, notificationSvc *util.NotificationService, eventBus *util.EventBus) *PlaceService {
	return &PlaceService{
		placeDAO:        placeDAO,
		actionDAO:       actionDAO,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}
}

// CreatePlace creates a place, records it on the activity feed, and
// delivers matching webhooks.
func (s *PlaceService) CreatePlace(ctx context.Context, place model.Place, dataset *model.DataSet) (*model.Place, error) {
	if err := s.validationUtil.ValidatePlace(place); err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrInvalidPlaceData, err)
	}

	placeID, err := s.placeDAO.CreatePlace(ctx, place)
	if err != nil {
		logger.Error("Error creating place",
			zap.Error(err),
			zap.String("dataset", place.DataSetSlug))
		return nil, err
	}
	place.ID = placeID

	created, err := s.placeDAO.GetPlace(ctx, place.OwnerUsername, place.DataSetSlug, placeID, true)
	if err != nil {
		return nil, err
	}

	s.recordAction(ctx, "create", created)
	s.deliverWebhooks(dataset, PlacesSet, "add", created)

	logger.Info("Place created successfully",
		zap.String("placeID", placeID),
		zap.String("dataset", place.DataSetSlug))
	return created, nil
}

// UpdatePlace handles updates to an existing place
func (s *PlaceService) UpdatePlace(ctx context.Context, place model.Place, dataset *model.DataSet) (*model.Place, error) {
	if err := s.validationUtil.ValidatePlace(place); err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrInvalidPlaceData, err)
	}

	updatedPlace, err := s.placeDAO.UpdatePlace(ctx, place)
	if err != nil {
		logger.Error("Error updating place", zap.Error(err), zap.String("placeID", place.ID))
		return nil, err
	}

	s.recordAction(ctx, "update", updatedPlace)
	s.deliverWebhooks(dataset, PlacesSet, "update", updatedPlace)

	logger.Info("Place updated successfully", zap.String("placeID", place.ID))
	return updatedPlace, nil
}

// DeletePlace handles the deletion of a place
func (s *PlaceService) DeletePlace(ctx context.Context, ownerUsername, slug, placeID string) error {
	err := s.placeDAO.DeletePlace(ctx, ownerUsername, slug, placeID)
	if err != nil {
		logger.Error("Error deleting place", zap.Error(err), zap.String("placeID", placeID))
		return err
	}

	logger.Info("Place deleted successfully", zap.String("placeID", placeID))
	return nil
}

// GetPlace retrieves a place by its ID
func (s *PlaceService) GetPlace(ctx context.Context, ownerUsername, slug, placeID string, includeInvisible bool) (*model.Place, error) {
	place, err := s.placeDAO.GetPlace(ctx, ownerUsername, slug, placeID, includeInvisible)
	if err != nil {
		return nil, err
	}
	return place, nil
}

// ListPlaces retrieves a dataset's places with pagination
func (s *PlaceService) ListPlaces(ctx context.Context, ownerUsername, slug string, includeInvisible bool, limit, offset int) ([]*model.Place, error) {
	places, err := s.placeDAO.ListPlaces(ctx, ownerUsername, slug, includeInvisible, limit, offset)
	if err != nil {
		logger.Error("Error listing places",
			zap.Error(err),
			zap.String("owner", ownerUsername),
			zap.String("slug", slug))
		return nil, fmt.Errorf("failed to list places: %w", err)
	}

	return places, nil
}

func (s *PlaceService) recordAction(ctx context.Context, actionType string, place *model.Place) {
	if silentMutations(ctx) {
		return
	}
	action := model.Action{
		ActionType:    actionType,
		ThingKind:     place.Kind(),
		ThingID:       place.ID,
		OwnerUsername: place.OwnerUsername,
		DataSetSlug:   place.DataSetSlug,
	}
	if _, err := s.actionDAO.CreateAction(ctx, action); err != nil {
		logger.Error("Failed to record place action",
			zap.Error(err),
			zap.String("placeID", place.ID))
	}
}

// deliverWebhooks runs detached from the request: webhook targets are
// external and must not hold up the response.
func (s *PlaceService) deliverWebhooks(dataset *model.DataSet, submissionSet, event string, place *model.Place) {
	if dataset == nil || len(dataset.Webhooks) == 0 {
		return
	}
	payload, err := json.Marshal(place)
	if err != nil {
		logger.Error("Failed to serialize place for webhooks", zap.Error(err))
		return
	}
	go s.notificationSvc.DeliverWebhooks(context.Background(), dataset.Webhooks, submissionSet, event, payload)
}
