// api/dao/attachment_dao.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/audit"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/util"
)

type AttachmentDAO struct {
	Driver       neo4j.Driver
	EventBus     *util.EventBus
	AuditService audit.Service
}

func NewAttachmentDAO(driver neo4j.Driver, eventBus *util.EventBus, auditService audit.Service) *AttachmentDAO {
	return &AttachmentDAO{Driver: driver, EventBus: eventBus, AuditService: auditService}
}

// CreateAttachment attaches a file record to a place, or to a
// submission when the attachment carries a submission ID.
func (dao *AttachmentDAO) CreateAttachment(ctx context.Context, attachment model.Attachment) (string, error) {
	start := time.Now()
	logger.Info("Creating attachment",
		zap.String("placeID", attachment.PlaceID),
		zap.String("submissionID", attachment.SubmissionID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if attachment.ID == "" {
		attachment.ID = uuid.New().String()
	}
	attachment.CreatedAt = time.Now()
	attachment.UpdatedAt = attachment.CreatedAt

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		var query string
		params := map[string]interface{}{
			"id": attachment.ID,
			"props": map[string]interface{}{
				"name":          attachment.Name,
				"fileURL":       attachment.FileURL,
				"ownerUsername": attachment.OwnerUsername,
				"datasetSlug":   attachment.DataSetSlug,
				"placeID":       attachment.PlaceID,
				"setName":       attachment.SetName,
				"submissionID":  attachment.SubmissionID,
				"createdAt":     attachment.CreatedAt.Format(time.RFC3339),
				"updatedAt":     attachment.UpdatedAt.Format(time.RFC3339),
			},
		}

		if attachment.SubmissionID != "" {
			query = `
            MATCH (s:Submission {id: $thingID})
            CREATE (a:Attachment {id: $id})
            SET a += $props
            CREATE (s)-[:HAS_ATTACHMENT]->(a)
            RETURN a.id as id
            `
			params["thingID"] = attachment.SubmissionID
		} else {
			query = `
            MATCH (p:Place {id: $thingID})
            CREATE (a:Attachment {id: $id})
            SET a += $props
            CREATE (p)-[:HAS_ATTACHMENT]->(a)
            RETURN a.id as id
            `
			params["thingID"] = attachment.PlaceID
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		if attachment.SubmissionID != "" {
			return nil, atlas_errors.ErrSubmissionNotFound
		}
		return nil, atlas_errors.ErrPlaceNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create attachment",
			zap.Error(err),
			zap.String("placeID", attachment.PlaceID),
			zap.Duration("duration", duration))
		return "", err
	}

	attachmentID := fmt.Sprintf("%v", result)
	logger.Info("Attachment created successfully",
		zap.String("attachmentID", attachmentID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventAttachmentCreated, &attachment)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "CREATE_ATTACHMENT",
		ThingKind:     "attachment",
		ThingID:       attachmentID,
		OwnerUsername: attachment.OwnerUsername,
		DataSetSlug:   attachment.DataSetSlug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return attachmentID, nil
}

func (dao *AttachmentDAO) GetAttachment(ctx context.Context, ownerUsername, slug, placeID, attachmentID string) (*model.Attachment, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (a:Attachment {id: $id, ownerUsername: $owner, datasetSlug: $slug, placeID: $placeID})
    RETURN a
    `
	result, err := session.Run(query, map[string]interface{}{
		"id":      attachmentID,
		"owner":   ownerUsername,
		"slug":    slug,
		"placeID": placeID,
	})
	if err != nil {
		return nil, atlas_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToAttachment(node), nil
	}

	return nil, atlas_errors.ErrAttachmentNotFound
}

// ListAttachments lists the attachments on a place, or on one of its
// submissions when submissionID is set.
func (dao *AttachmentDAO) ListAttachments(ctx context.Context, ownerUsername, slug, placeID, submissionID string) ([]*model.Attachment, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (a:Attachment {ownerUsername: $owner, datasetSlug: $slug, placeID: $placeID})
    WHERE a.submissionID = $submissionID OR ($submissionID = '' AND (a.submissionID IS NULL OR a.submissionID = ''))
    RETURN a
    ORDER BY a.createdAt DESC
    `
	result, err := session.Run(query, map[string]interface{}{
		"owner":        ownerUsername,
		"slug":         slug,
		"placeID":      placeID,
		"submissionID": submissionID,
	})
	if err != nil {
		logger.Error("Failed to execute list attachments query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var attachments []*model.Attachment
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		attachments = append(attachments, mapNodeToAttachment(node))
	}

	return attachments, nil
}

// Helper function to map Neo4j Node to Attachment struct
func mapNodeToAttachment(node neo4j.Node) *model.Attachment {
	props := node.Props
	return &model.Attachment{
		ID:            stringProp(props, "id"),
		Name:          stringProp(props, "name"),
		FileURL:       stringProp(props, "fileURL"),
		OwnerUsername: stringProp(props, "ownerUsername"),
		DataSetSlug:   stringProp(props, "datasetSlug"),
		PlaceID:       stringProp(props, "placeID"),
		SetName:       stringProp(props, "setName"),
		SubmissionID:  stringProp(props, "submissionID"),
		CreatedAt:     timeProp(props, "createdAt"),
		UpdatedAt:     timeProp(props, "updatedAt"),
	}
}
