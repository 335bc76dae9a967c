// api/service/action_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/dao"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
)

// IActionService defines the interface for the dataset activity feed
type IActionService interface {
	ListActions(ctx context.Context, ownerUsername, slug string, limit, offset int) ([]*model.Action, error)
}

type ActionService struct {
	actionDAO *dao.ActionDAO
}

var _ IActionService = &ActionService{}

func NewActionService(actionDAO *dao.ActionDAO) *ActionService {
	return &ActionService{actionDAO: actionDAO}
}

func (s *ActionService) ListActions(ctx context.Context, ownerUsername, slug string, limit, offset int) ([]*model.Action, error) {
	actions, err := s.actionDAO.ListActions(ctx, ownerUsername, slug, limit, offset)
	if err != nil {
		logger.Error("Error listing actions",
			zap.Error(err),
			zap.String("owner", ownerUsername),
			zap.String("slug", slug))
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return actions, nil
}
