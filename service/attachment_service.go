// api/service/attachment_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/dao"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/util"
)

// IAttachmentService defines the interface for attachment operations
type IAttachmentService interface {
	CreateAttachment(ctx context.Context, attachment model.Attachment) (*model.Attachment, error)
	GetAttachment(ctx context.Context, ownerUsername, slug, placeID, attachmentID string) (*model.Attachment, error)
	ListAttachments(ctx context.Context, ownerUsername, slug, placeID, submissionID string) ([]*model.Attachment, error)
}

// AttachmentService handles business logic for attachment operations
type AttachmentService struct {
	attachmentDAO  *dao.AttachmentDAO
	validationUtil *util.ValidationUtil
}

var _ IAttachmentService = &AttachmentService{}

// NewAttachmentService creates a new instance of AttachmentService
func NewAttachmentService(attachmentDAO *dao.AttachmentDAO, validationUtil *util.ValidationUtil) *AttachmentService {
	return &AttachmentService{
		attachmentDAO:  attachmentDAO,
		validationUtil: validationUtil,
	}
}

func (s *AttachmentService) CreateAttachment(ctx context.Context, attachment model.Attachment) (*model.Attachment, error) {
	if err := s.validationUtil.ValidateAttachment(attachment); err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrInvalidAttachmentData, err)
	}

	attachmentID, err := s.attachmentDAO.CreateAttachment(ctx, attachment)
	if err != nil {
		logger.Error("Error creating attachment",
			zap.Error(err),
			zap.String("placeID", attachment.PlaceID))
		return nil, err
	}

	return s.attachmentDAO.GetAttachment(ctx, attachment.OwnerUsername, attachment.DataSetSlug, attachment.PlaceID, attachmentID)
}

func (s *AttachmentService) GetAttachment(ctx context.Context, ownerUsername, slug, placeID, attachmentID string) (*model.Attachment, error) {
	return s.attachmentDAO.GetAttachment(ctx, ownerUsername, slug, placeID, attachmentID)
}

func (s *AttachmentService) ListAttachments(ctx context.Context, ownerUsername, slug, placeID, submissionID string) ([]*model.Attachment, error) {
	attachments, err := s.attachmentDAO.ListAttachments(ctx, ownerUsername, slug, placeID, submissionID)
	if err != nil {
		logger.Error("Error listing attachments",
			zap.Error(err),
			zap.String("placeID", placeID))
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}
