// api/service/dataset_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/dao"
	"github.com/mapcanvas/atlas/api/db"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/util"
)

// IDataSetService defines the interface for dataset operations
type IDataSetService interface {
	CreateDataSet(ctx context.Context, dataset model.DataSet) (*model.DataSet, error)
	UpdateDataSet(ctx context.Context, previous *model.DataSet, dataset model.DataSet) (*model.DataSet, error)
	DeleteDataSet(ctx context.Context, ownerUsername, slug string) error
	GetDataSet(ctx context.Context, ownerUsername, slug string) (*model.DataSet, error)
	ListDataSets(ctx context.Context, ownerUsername string, limit, offset int) ([]*model.DataSet, error)
	CloneDataSet(ctx context.Context, source *model.DataSet) (*model.DataSet, error)
}

// DataSetService handles business logic for dataset operations
type DataSetService struct {
	datasetDAO     *dao.DataSetDAO
	clientDAO      *dao.ClientDAO
	validationUtil *util.ValidationUtil
	cacheService   *util.CacheService
	eventBus       *util.EventBus
}

var _ IDataSetService = &DataSetService{}

// NewDataSetService creates a new instance of DataSetService
func NewDataSetService(datasetDAO *dao.DataSetDAO, clientDAO *dao.ClientDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, eventBus *util.EventBus) *DataSetService {
	service := &DataSetService{
		datasetDAO:     datasetDAO,
		clientDAO:      clientDAO,
		validationUtil: validationUtil,
		cacheService:   cacheService,
		eventBus:       eventBus,
	}

	// The object cache holds the prefetched dataset every request loads;
	// any dataset mutation makes it stale.
	eventBus.Subscribe(model.EventDataSetUpdated, service.handleDataSetChanged)
	eventBus.Subscribe(model.EventDataSetDeleted, service.handleDataSetChanged)

	return service
}

func (s *DataSetService) handleDataSetChanged(ctx context.Context, event util.Event) error {
	dataset, ok := event.Payload.(*model.DataSet)
	if !ok {
		return fmt.Errorf("unexpected payload for %s: %T", event.Type, event.Payload)
	}
	if err := s.cacheService.DeleteDataSet(ctx, dataset.OwnerUsername, dataset.Slug); err != nil {
		logger.Warn("Failed to drop dataset from object cache",
			zap.Error(err),
			zap.String("owner", dataset.OwnerUsername),
			zap.String("slug", dataset.Slug))
	}
	return nil
}

// CreateDataSet creates a dataset and provisions its first API key so
// the owner can start submitting immediately.
func (s *DataSetService) CreateDataSet(ctx context.Context, dataset model.DataSet) (*model.DataSet, error) {
	if err := s.validationUtil.ValidateDataSet(dataset); err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrInvalidDataSetData, err)
	}

	datasetID, err := s.datasetDAO.CreateDataSet(ctx, dataset)
	if err != nil {
		logger.Error("Error creating dataset",
			zap.Error(err),
			zap.String("owner", dataset.OwnerUsername),
			zap.String("slug", dataset.Slug))
		return nil, err
	}
	dataset.ID = datasetID

	keyID, err := s.clientDAO.CreateApiKey(ctx, &dataset, model.ApiKey{DataSetID: datasetID})
	if err != nil {
		logger.Error("Failed to provision API key for new dataset",
			zap.Error(err),
			zap.String("datasetID", datasetID))
	} else {
		logger.Info("Provisioned API key for new dataset",
			zap.String("datasetID", datasetID),
			zap.String("keyID", keyID))
	}

	created, err := s.datasetDAO.GetDataSet(ctx, dataset.OwnerUsername, dataset.Slug)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetDataSet(ctx, *created); err != nil {
		logger.Warn("Failed to cache dataset", zap.Error(err), zap.String("datasetID", datasetID))
	}

	logger.Info("Dataset created successfully",
		zap.String("datasetID", datasetID),
		zap.String("owner", dataset.OwnerUsername))
	return created, nil
}

// UpdateDataSet handles updates to an existing dataset. previous is
// the dataset as it was addressed by this request; when the update
// renames the slug, the updated entity can no longer name the views
// cached under the old path, so the pre-update state is published too
// and the bus subscribers drop both the old-path tracked sets and the
// old object-cache entry.
func (s *DataSetService) UpdateDataSet(ctx context.Context, previous *model.DataSet, dataset model.DataSet) (*model.DataSet, error) {
	if err := s.validationUtil.ValidateDataSet(dataset); err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrInvalidDataSetData, err)
	}

	updatedDataSet, err := s.datasetDAO.UpdateDataSet(ctx, dataset)
	if err != nil {
		logger.Error("Error updating dataset", zap.Error(err), zap.String("datasetID", dataset.ID))
		return nil, err
	}

	if previous != nil && previous.Slug != updatedDataSet.Slug {
		s.eventBus.Publish(ctx, model.EventDataSetUpdated, previous)
	}

	if err := s.cacheService.SetDataSet(ctx, *updatedDataSet); err != nil {
		logger.Warn("Failed to update dataset in cache", zap.Error(err), zap.String("datasetID", dataset.ID))
	}

	logger.Info("Dataset updated successfully", zap.String("datasetID", dataset.ID))
	return updatedDataSet, nil
}

// DeleteDataSet handles the deletion of a dataset
func (s *DataSetService) DeleteDataSet(ctx context.Context, ownerUsername, slug string) error {
	err := s.datasetDAO.DeleteDataSet(ctx, ownerUsername, slug)
	if err != nil {
		logger.Error("Error deleting dataset",
			zap.Error(err),
			zap.String("owner", ownerUsername),
			zap.String("slug", slug))
		return err
	}

	logger.Info("Dataset deleted successfully",
		zap.String("owner", ownerUsername),
		zap.String("slug", slug))
	return nil
}

// GetDataSet retrieves a dataset with its access control collaborators
// prefetched, preferring the object cache.
func (s *DataSetService) GetDataSet(ctx context.Context, ownerUsername, slug string) (*model.DataSet, error) {
	cachedDataSet, err := s.cacheService.GetDataSet(ctx, ownerUsername, slug)
	if err == nil && cachedDataSet != nil {
		return cachedDataSet, nil
	}

	dataset, err := s.datasetDAO.GetDataSet(ctx, ownerUsername, slug)
	if err != nil {
		if errors.Is(err, atlas_errors.ErrDataSetNotFound) {
			return nil, atlas_errors.ErrDataSetNotFound
		}
		logger.Error("Error retrieving dataset",
			zap.Error(err),
			zap.String("owner", ownerUsername),
			zap.String("slug", slug))
		return nil, atlas_errors.ErrInternalServer
	}

	if err := s.cacheService.SetDataSet(ctx, *dataset); err != nil {
		logger.Warn("Failed to cache dataset", zap.Error(err), zap.String("datasetID", dataset.ID))
	}

	return dataset, nil
}

// ListDataSets retrieves an owner's datasets with pagination
func (s *DataSetService) ListDataSets(ctx context.Context, ownerUsername string, limit, offset int) ([]*model.DataSet, error) {
	datasets, err := s.datasetDAO.ListDataSets(ctx, ownerUsername, limit, offset)
	if err != nil {
		logger.Error("Error listing datasets",
			zap.Error(err),
			zap.String("owner", ownerUsername))
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	return datasets, nil
}

// CloneDataSet creates a shallow copy of a dataset under the same
// owner: metadata, permission rules, and webhooks are copied
// synchronously with a fresh API key, then the deep copy of places and
// submissions is requested from the background task runner. The slug
// is uniquified so repeated clones never collide.
func (s *DataSetService) CloneDataSet(ctx context.Context, source *model.DataSet) (*model.DataSet, error) {
	lockName := fmt.Sprintf("dataset-clone:%s/%s", source.OwnerUsername, source.Slug)
	locked, err := db.LockResource(ctx, lockName, 30*time.Second)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, atlas_errors.ErrDataSetConflict
	}
	defer func() {
		if err := db.UnlockResource(ctx, lockName); err != nil {
			logger.Warn("Failed to release clone lock", zap.Error(err), zap.String("lock", lockName))
		}
	}()

	slug, err := s.uniqueSlug(ctx, source.OwnerUsername, source.Slug)
	if err != nil {
		return nil, err
	}

	clone := model.DataSet{
		Slug:          slug,
		DisplayName:   source.DisplayName,
		OwnerID:       source.OwnerID,
		OwnerUsername: source.OwnerUsername,
		Permissions:   source.Permissions,
		Webhooks:      source.Webhooks,
	}

	created, err := s.CreateDataSet(ctx, clone)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, model.EventDataSetCloneRequested, map[string]string{
		"source_id":  source.ID,
		"dataset_id": created.ID,
	})

	logger.Info("Dataset clone requested",
		zap.String("sourceID", source.ID),
		zap.String("cloneID", created.ID))
	return created, nil
}

func (s *DataSetService) uniqueSlug(ctx context.Context, ownerUsername, base string) (string, error) {
	slug := base
	for i := 2; ; i++ {
		_, err := s.datasetDAO.GetDataSet(ctx, ownerUsername, slug)
		if errors.Is(err, atlas_errors.ErrDataSetNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
