// api/dao/submission_dao.go
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

type SubmissionDAO struct {
	Driver       neo4j.Driver
	EventBus     *util.EventBus
	AuditService audit.Service
}

func NewSubmissionDAO(driver neo4j.Driver, eventBus *util.EventBus, auditService audit.Service) *SubmissionDAO {
	dao := &SubmissionDAO{Driver: driver, EventBus: eventBus, AuditService: auditService}
	// Ensure unique constraint on Submission ID
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Submission", zap.Error(err))
	}
	return dao
}

func (dao *SubmissionDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_submission_id IF NOT EXISTS
        FOR (s:Submission) REQUIRE s.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	return err
}

func (dao *SubmissionDAO) CreateSubmission(ctx context.Context, submission model.Submission) (string, error) {
	start := time.Now()
	logger.Info("Creating new submission",
		zap.String("placeID", submission.PlaceID),
		zap.String("setName", submission.SetName))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if submission.ID == "" {
		submission.ID = uuid.New().String()
	}
	submission.CreatedAt = time.Now()
	submission.UpdatedAt = submission.CreatedAt

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:Place {id: $placeID})
        CREATE (s:Submission {id: $id})
        SET s += $props
        CREATE (p)-[:HAS_SUBMISSION]->(s)
        RETURN s.id as id
        `

		params := map[string]interface{}{
			"placeID": submission.PlaceID,
			"id":      submission.ID,
			"props": map[string]interface{}{
				"setName":       submission.SetName,
				"placeID":       submission.PlaceID,
				"datasetID":     submission.DataSetID,
				"datasetSlug":   submission.DataSetSlug,
				"ownerUsername": submission.OwnerUsername,
				"submitterID":   submission.SubmitterID,
				"data":          string(submission.Data),
				"visible":       submission.Visible,
				"createdAt":     submission.CreatedAt.Format(time.RFC3339),
				"updatedAt":     submission.UpdatedAt.Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, atlas_errors.ErrPlaceNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create submission",
			zap.Error(err),
			zap.String("placeID", submission.PlaceID),
			zap.Duration("duration", duration))
		return "", err
	}

	submissionID := fmt.Sprintf("%v", result)
	logger.Info("Submission created successfully",
		zap.String("submissionID", submissionID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventSubmissionCreated, &submission)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "CREATE_SUBMISSION",
		ThingKind:     "submission",
		ThingID:       submissionID,
		OwnerUsername: submission.OwnerUsername,
		DataSetSlug:   submission.DataSetSlug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return submissionID, nil
}

// GetSubmission retrieves a submission by ID within a place's set. The
// reserved all-sets name matches a submission in any set.
func (dao *SubmissionDAO) GetSubmission(ctx context.Context, ownerUsername, slug, placeID, setName, submissionID string, includeInvisible bool) (*model.Submission, error) {
	start := time.Now()
	logger.Debug("Retrieving submission", zap.String("submissionID", submissionID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (s:Submission {id: $id, ownerUsername: $owner, datasetSlug: $slug, placeID: $placeID})
    WHERE (s.setName = $setName OR $anySet)
      AND (s.visible OR $includeInvisible)
    RETURN s
    `
	result, err := session.Run(query, map[string]interface{}{
		"id":               submissionID,
		"owner":            ownerUsername,
		"slug":             slug,
		"placeID":          placeID,
		"setName":          setName,
		"anySet":           setName == model.AllSubmissionsSet,
		"includeInvisible": includeInvisible,
	})
	if err != nil {
		logger.Error("Failed to execute get submission query",
			zap.Error(err),
			zap.String("submissionID", submissionID),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToSubmission(node), nil
	}

	logger.Debug("Submission not found",
		zap.String("submissionID", submissionID),
		zap.Duration("duration", time.Since(start)))
	return nil, atlas_errors.ErrSubmissionNotFound
}

// ListSubmissions lists a place's submissions in one set, or across
// every set when given the reserved all-sets name.
func (dao *SubmissionDAO) ListSubmissions(ctx context.Context, ownerUsername, slug, placeID, setName string, includeInvisible bool, limit, offset int) ([]*model.Submission, error) {
	start := time.Now()
	logger.Debug("Listing submissions",
		zap.String("placeID", placeID),
		zap.String("setName", setName))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (s:Submission {ownerUsername: $owner, datasetSlug: $slug, placeID: $placeID})
    WHERE (s.setName = $setName OR $anySet)
      AND (s.visible OR $includeInvisible)
    RETURN s
    ORDER BY s.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"owner":            ownerUsername,
		"slug":             slug,
		"placeID":          placeID,
		"setName":          setName,
		"anySet":           setName == model.AllSubmissionsSet,
		"includeInvisible": includeInvisible,
		"limit":            limit,
		"offset":           offset,
	})
	if err != nil {
		logger.Error("Failed to execute list submissions query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var submissions []*model.Submission
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		submissions = append(submissions, mapNodeToSubmission(node))
	}

	logger.Debug("Submissions listed successfully",
		zap.Int("count", len(submissions)),
		zap.Duration("duration", time.Since(start)))

	return submissions, nil
}

// ListDataSetSubmissions lists submissions across every place in the
// dataset.
func (dao *SubmissionDAO) ListDataSetSubmissions(ctx context.Context, ownerUsername, slug, setName string, includeInvisible bool, limit, offset int) ([]*model.Submission, error) {
	start := time.Now()
	logger.Debug("Listing dataset submissions",
		zap.String("owner", ownerUsername),
		zap.String("slug", slug),
		zap.String("setName", setName))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (s:Submission {ownerUsername: $owner, datasetSlug: $slug})
    WHERE (s.setName = $setName OR $anySet)
      AND (s.visible OR $includeInvisible)
    RETURN s
    ORDER BY s.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"owner":            ownerUsername,
		"slug":             slug,
		"setName":          setName,
		"anySet":           setName == model.AllSubmissionsSet,
		"includeInvisible": includeInvisible,
		"limit":            limit,
		"offset":           offset,
	})
	if err != nil {
		logger.Error("Failed to execute list dataset submissions query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var submissions []*model.Submission
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		submissions = append(submissions, mapNodeToSubmission(node))
	}

	return submissions, nil
}

func (dao *SubmissionDAO) UpdateSubmission(ctx context.Context, submission model.Submission) (*model.Submission, error) {
	start := time.Now()
	logger.Info("Updating submission", zap.String("submissionID", submission.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	var updatedSubmission *model.Submission
	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (s:Submission {id: $id})
        SET s += $props
        RETURN s
        `

		params := map[string]interface{}{
			"id": submission.ID,
			"props": map[string]interface{}{
				"data":      string(submission.Data),
				"visible":   submission.Visible,
				"updatedAt": time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			updatedSubmission = mapNodeToSubmission(node)
			return nil, nil
		}

		return nil, atlas_errors.ErrSubmissionNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update submission",
			zap.Error(err),
			zap.String("submissionID", submission.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	logger.Info("Submission updated successfully",
		zap.String("submissionID", submission.ID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventSubmissionUpdated, updatedSubmission)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "UPDATE_SUBMISSION",
		ThingKind:     "submission",
		ThingID:       submission.ID,
		OwnerUsername: updatedSubmission.OwnerUsername,
		DataSetSlug:   updatedSubmission.DataSetSlug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedSubmission, nil
}

func (dao *SubmissionDAO) DeleteSubmission(ctx context.Context, ownerUsername, slug, placeID, setName, submissionID string) error {
	start := time.Now()
	logger.Info("Deleting submission", zap.String("submissionID", submissionID))

	submission, err := dao.GetSubmission(ctx, ownerUsername, slug, placeID, setName, submissionID, true)
	if err != nil {
		return err
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (s:Submission {id: $id})
        OPTIONAL MATCH (s)-[*1..1]->(n)
        DETACH DELETE n, s
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": submissionID})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if _, err := result.Consume(); err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete submission",
			zap.Error(err),
			zap.String("submissionID", submissionID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Submission deleted successfully",
		zap.String("submissionID", submissionID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventSubmissionDeleted, submission)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "DELETE_SUBMISSION",
		ThingKind:     "submission",
		ThingID:       submissionID,
		OwnerUsername: ownerUsername,
		DataSetSlug:   slug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

// Helper function to map Neo4j Node to Submission struct
func mapNodeToSubmission(node neo4j.Node) *model.Submission {
	props := node.Props
	return &model.Submission{
		ID:            stringProp(props, "id"),
		SetName:       stringProp(props, "setName"),
		PlaceID:       stringProp(props, "placeID"),
		DataSetID:     stringProp(props, "datasetID"),
		DataSetSlug:   stringProp(props, "datasetSlug"),
		OwnerUsername: stringProp(props, "ownerUsername"),
		SubmitterID:   stringProp(props, "submitterID"),
		Data:          []byte(stringProp(props, "data")),
		Visible:       boolProp(props, "visible"),
		CreatedAt:     timeProp(props, "createdAt"),
		UpdatedAt:     timeProp(props, "updatedAt"),
	}
}
