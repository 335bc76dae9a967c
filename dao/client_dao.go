// api/dao/client_dao.go
package dao

import (
	"context"
	"encoding/json"
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

// ClientDAO manages the client credentials attached to a dataset: API
// keys, trusted origins, and submitter groups. Every mutation is
// published as a dataset update because credentials travel with the
// dataset's cached representation.
type ClientDAO struct {
	Driver       neo4j.Driver
	EventBus     *util.EventBus
	AuditService audit.Service
}

func NewClientDAO(driver neo4j.Driver, eventBus *util.EventBus, auditService audit.Service) *ClientDAO {
	return &ClientDAO{Driver: driver, EventBus: eventBus, AuditService: auditService}
}

func (dao *ClientDAO) CreateApiKey(ctx context.Context, dataset *model.DataSet, key model.ApiKey) (string, error) {
	start := time.Now()
	logger.Info("Creating API key", zap.String("datasetID", dataset.ID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if key.ID == "" {
		key.ID = uuid.New().String()
	}
	if key.Key == "" {
		key.Key = uuid.New().String()
	}

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:DataSet {id: $datasetID})
        CREATE (k:ApiKey {id: $id})
        SET k += $props
        CREATE (d)-[:HAS_KEY]->(k)
        RETURN k.id
        `

		permissionsJSON, _ := json.Marshal(key.Permissions)

		params := map[string]interface{}{
			"datasetID": dataset.ID,
			"id":        key.ID,
			"props": map[string]interface{}{
				"key":         key.Key,
				"permissions": string(permissionsJSON),
				"createdAt":   time.Now().Format(time.RFC3339),
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
		logger.Error("Failed to create API key",
			zap.Error(err),
			zap.String("datasetID", dataset.ID),
			zap.Duration("duration", duration))
		return "", err
	}

	logger.Info("API key created successfully",
		zap.String("keyID", key.ID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventDataSetUpdated, dataset)
	dao.logClientChange(ctx, "CREATE_API_KEY", "apikey", key.ID, dataset)

	return key.ID, nil
}

func (dao *ClientDAO) DeleteApiKey(ctx context.Context, dataset *model.DataSet, keyID string) error {
	return dao.deleteCredential(ctx, dataset, "ApiKey", "HAS_KEY", keyID, "DELETE_API_KEY", "apikey")
}

func (dao *ClientDAO) CreateOrigin(ctx context.Context, dataset *model.DataSet, origin model.Origin) (string, error) {
	start := time.Now()
	logger.Info("Creating trusted origin",
		zap.String("datasetID", dataset.ID),
		zap.String("pattern", origin.Pattern))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if origin.ID == "" {
		origin.ID = uuid.New().String()
	}

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:DataSet {id: $datasetID})
        CREATE (o:Origin {id: $id})
        SET o += $props
        CREATE (d)-[:TRUSTS]->(o)
        RETURN o.id
        `

		permissionsJSON, _ := json.Marshal(origin.Permissions)

		params := map[string]interface{}{
			"datasetID": dataset.ID,
			"id":        origin.ID,
			"props": map[string]interface{}{
				"pattern":     origin.Pattern,
				"permissions": string(permissionsJSON),
				"createdAt":   time.Now().Format(time.RFC3339),
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
		logger.Error("Failed to create trusted origin",
			zap.Error(err),
			zap.String("datasetID", dataset.ID),
			zap.Duration("duration", duration))
		return "", err
	}

	logger.Info("Trusted origin created successfully",
		zap.String("originID", origin.ID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventDataSetUpdated, dataset)
	dao.logClientChange(ctx, "CREATE_ORIGIN", "origin", origin.ID, dataset)

	return origin.ID, nil
}

func (dao *ClientDAO) DeleteOrigin(ctx context.Context, dataset *model.DataSet, originID string) error {
	return dao.deleteCredential(ctx, dataset, "Origin", "TRUSTS", originID, "DELETE_ORIGIN", "origin")
}

func (dao *ClientDAO) CreateGroup(ctx context.Context, dataset *model.DataSet, group model.Group) (string, error) {
	start := time.Now()
	logger.Info("Creating group",
		zap.String("datasetID", dataset.ID),
		zap.String("name", group.Name))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:DataSet {id: $datasetID})
        CREATE (g:Group {id: $id})
        SET g += $props
        CREATE (d)-[:HAS_GROUP]->(g)
        RETURN g.id
        `

		permissionsJSON, _ := json.Marshal(group.Permissions)

		params := map[string]interface{}{
			"datasetID": dataset.ID,
			"id":        group.ID,
			"props": map[string]interface{}{
				"name":        group.Name,
				"permissions": string(permissionsJSON),
				"createdAt":   time.Now().Format(time.RFC3339),
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
		logger.Error("Failed to create group",
			zap.Error(err),
			zap.String("datasetID", dataset.ID),
			zap.Duration("duration", duration))
		return "", err
	}

	logger.Info("Group created successfully",
		zap.String("groupID", group.ID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventDataSetUpdated, dataset)
	dao.logClientChange(ctx, "CREATE_GROUP", "group", group.ID, dataset)

	return group.ID, nil
}

func (dao *ClientDAO) DeleteGroup(ctx context.Context, dataset *model.DataSet, groupID string) error {
	return dao.deleteCredential(ctx, dataset, "Group", "HAS_GROUP", groupID, "DELETE_GROUP", "group")
}

// AddGroupMember puts a user into a dataset group. Group membership
// partitions the response cache, so this invalidates the dataset's
// cached views like any other dataset change.
func (dao *ClientDAO) AddGroupMember(ctx context.Context, dataset *model.DataSet, groupID, userID string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:DataSet {id: $datasetID})-[:HAS_GROUP]->(g:Group {id: $groupID})
        MATCH (u:User {id: $userID})
        MERGE (u)-[:MEMBER_OF]->(g)
        RETURN g.id
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"datasetID": dataset.ID,
			"groupID":   groupID,
			"userID":    userID,
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return nil, nil
		}
		return nil, atlas_errors.ErrDataSetNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to add group member",
			zap.Error(err),
			zap.String("groupID", groupID),
			zap.String("userID", userID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Group member added",
		zap.String("groupID", groupID),
		zap.String("userID", userID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventDataSetUpdated, dataset)
	dao.logClientChange(ctx, "ADD_GROUP_MEMBER", "group", groupID, dataset)

	return nil
}

func (dao *ClientDAO) RemoveGroupMember(ctx context.Context, dataset *model.DataSet, groupID, userID string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:User {id: $userID})-[r:MEMBER_OF]->(g:Group {id: $groupID})<-[:HAS_GROUP]-(d:DataSet {id: $datasetID})
        DELETE r
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"datasetID": dataset.ID,
			"groupID":   groupID,
			"userID":    userID,
		})
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
		logger.Error("Failed to remove group member",
			zap.Error(err),
			zap.String("groupID", groupID),
			zap.String("userID", userID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Group member removed",
		zap.String("groupID", groupID),
		zap.String("userID", userID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventDataSetUpdated, dataset)
	dao.logClientChange(ctx, "REMOVE_GROUP_MEMBER", "group", groupID, dataset)

	return nil
}

func (dao *ClientDAO) deleteCredential(ctx context.Context, dataset *model.DataSet, label, rel, id, action, kind string) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:DataSet {id: $datasetID})-[:` + rel + `]->(c:` + label + ` {id: $id})
        DETACH DELETE c
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"datasetID": dataset.ID,
			"id":        id,
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		summary, err := result.Consume()
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, atlas_errors.ErrDataSetNotFound
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete client credential",
			zap.Error(err),
			zap.String("kind", kind),
			zap.String("id", id),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Client credential deleted",
		zap.String("kind", kind),
		zap.String("id", id),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventDataSetUpdated, dataset)
	dao.logClientChange(ctx, action, kind, id, dataset)

	return nil
}

func (dao *ClientDAO) logClientChange(ctx context.Context, action, kind, id string, dataset *model.DataSet) {
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        action,
		ThingKind:     kind,
		ThingID:       id,
		OwnerUsername: dataset.OwnerUsername,
		DataSetSlug:   dataset.Slug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
}
