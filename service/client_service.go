// api/service/client_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/dao"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
)

// IClientService manages the client credentials attached to a dataset:
// API keys, trusted origins, and submitter groups.
type IClientService interface {
	CreateApiKey(ctx context.Context, dataset *model.DataSet, key model.ApiKey) (string, error)
	DeleteApiKey(ctx context.Context, dataset *model.DataSet, keyID string) error
	CreateOrigin(ctx context.Context, dataset *model.DataSet, origin model.Origin) (string, error)
	DeleteOrigin(ctx context.Context, dataset *model.DataSet, originID string) error
	CreateGroup(ctx context.Context, dataset *model.DataSet, group model.Group) (string, error)
	DeleteGroup(ctx context.Context, dataset *model.DataSet, groupID string) error
	AddGroupMember(ctx context.Context, dataset *model.DataSet, groupID, userID string) error
	RemoveGroupMember(ctx context.Context, dataset *model.DataSet, groupID, userID string) error
}

type ClientService struct {
	clientDAO *dao.ClientDAO
}

var _ IClientService = &ClientService{}

func NewClientService(clientDAO *dao.ClientDAO) *ClientService {
	return &ClientService{clientDAO: clientDAO}
}

func (s *ClientService) CreateApiKey(ctx context.Context, dataset *model.DataSet, key model.ApiKey) (string, error) {
	keyID, err := s.clientDAO.CreateApiKey(ctx, dataset, key)
	if err != nil {
		logger.Error("Error creating API key", zap.Error(err), zap.String("datasetID", dataset.ID))
		return "", err
	}
	return keyID, nil
}

func (s *ClientService) DeleteApiKey(ctx context.Context, dataset *model.DataSet, keyID string) error {
	return s.clientDAO.DeleteApiKey(ctx, dataset, keyID)
}

func (s *ClientService) CreateOrigin(ctx context.Context, dataset *model.DataSet, origin model.Origin) (string, error) {
	originID, err := s.clientDAO.CreateOrigin(ctx, dataset, origin)
	if err != nil {
		logger.Error("Error creating trusted origin", zap.Error(err), zap.String("datasetID", dataset.ID))
		return "", err
	}
	return originID, nil
}

func (s *ClientService) DeleteOrigin(ctx context.Context, dataset *model.DataSet, originID string) error {
	return s.clientDAO.DeleteOrigin(ctx, dataset, originID)
}

func (s *ClientService) CreateGroup(ctx context.Context, dataset *model.DataSet, group model.Group) (string, error) {
	groupID, err := s.clientDAO.CreateGroup(ctx, dataset, group)
	if err != nil {
		logger.Error("Error creating group", zap.Error(err), zap.String("datasetID", dataset.ID))
		return "", err
	}
	return groupID, nil
}

func (s *ClientService) DeleteGroup(ctx context.Context, dataset *model.DataSet, groupID string) error {
	return s.clientDAO.DeleteGroup(ctx, dataset, groupID)
}

func (s *ClientService) AddGroupMember(ctx context.Context, dataset *model.DataSet, groupID, userID string) error {
	return s.clientDAO.AddGroupMember(ctx, dataset, groupID, userID)
}

func (s *ClientService) RemoveGroupMember(ctx context.Context, dataset *model.DataSet, groupID, userID string) error {
	return s.clientDAO.RemoveGroupMember(ctx, dataset, groupID, userID)
}
