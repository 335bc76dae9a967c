// api/dao/action_dao.go
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

// ActionDAO records the dataset activity feed.
type ActionDAO struct {
	Driver       neo4j.Driver
	EventBus     *util.EventBus
	AuditService audit.Service
}

func NewActionDAO(driver neo4j.Driver, eventBus *util.EventBus, auditService audit.Service) *ActionDAO {
	return &ActionDAO{Driver: driver, EventBus: eventBus, AuditService: auditService}
}

func (dao *ActionDAO) CreateAction(ctx context.Context, action model.Action) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	action.CreatedAt = time.Now()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:DataSet {ownerUsername: $owner, slug: $slug})
        CREATE (a:Action {id: $id})
        SET a += $props
        CREATE (d)-[:LOGGED]->(a)
        RETURN a.id as id
        `

		params := map[string]interface{}{
			"owner": action.OwnerUsername,
			"slug":  action.DataSetSlug,
			"id":    action.ID,
			"props": map[string]interface{}{
				"actionType":    action.ActionType,
				"thingKind":     action.ThingKind,
				"thingID":       action.ThingID,
				"ownerUsername": action.OwnerUsername,
				"datasetSlug":   action.DataSetSlug,
				"createdAt":     action.CreatedAt.Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, atlas_errors.ErrDataSetNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create action",
			zap.Error(err),
			zap.String("dataset", action.DataSetSlug),
			zap.Duration("duration", duration))
		return "", err
	}

	actionID := fmt.Sprintf("%v", result)
	logger.Debug("Action recorded",
		zap.String("actionID", actionID),
		zap.String("actionType", action.ActionType),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventActionCreated, &action)

	return actionID, nil
}

func (dao *ActionDAO) ListActions(ctx context.Context, ownerUsername, slug string, limit, offset int) ([]*model.Action, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (a:Action {ownerUsername: $owner, datasetSlug: $slug})
    RETURN a
    ORDER BY a.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"owner":  ownerUsername,
		"slug":   slug,
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		logger.Error("Failed to execute list actions query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var actions []*model.Action
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		actions = append(actions, mapNodeToAction(node))
	}

	return actions, nil
}

// Helper function to map Neo4j Node to Action struct
func mapNodeToAction(node neo4j.Node) *model.Action {
	props := node.Props
	return &model.Action{
		ID:            stringProp(props, "id"),
		ActionType:    stringProp(props, "actionType"),
		ThingKind:     stringProp(props, "thingKind"),
		ThingID:       stringProp(props, "thingID"),
		OwnerUsername: stringProp(props, "ownerUsername"),
		DataSetSlug:   stringProp(props, "datasetSlug"),
		CreatedAt:     timeProp(props, "createdAt"),
	}
}
