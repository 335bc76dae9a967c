// api/dao/dataset_dao.go
package dao

import (
	"context"
	"encoding/json"
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

type DataSetDAO struct {
	Driver       neo4j.Driver
	EventBus     *util.EventBus
	AuditService audit.Service
}

func NewDataSetDAO(driver neo4j.Driver, eventBus *util.EventBus, auditService audit.Service) *DataSetDAO {
	dao := &DataSetDAO{Driver: driver, EventBus: eventBus, AuditService: auditService}
	// Ensure unique constraint on DataSet ID
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for DataSet", zap.Error(err))
	}
	return dao
}

func (dao *DataSetDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on DataSet ID")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_dataset_id IF NOT EXISTS
        FOR (d:DataSet) REQUIRE d.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on DataSet ID", zap.Error(err))
		return err
	}

	logger.Info("Successfully ensured unique constraint on DataSet ID")
	return nil
}

// CreateDataSet creates a dataset node owned by the given user. Slugs
// are unique per owner; a duplicate is a conflict, not an upsert.
func (dao *DataSetDAO) CreateDataSet(ctx context.Context, dataset model.DataSet) (string, error) {
	start := time.Now()
	logger.Info("Creating new dataset",
		zap.String("owner", dataset.OwnerUsername),
		zap.String("slug", dataset.Slug))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if dataset.ID == "" {
		dataset.ID = uuid.New().String()
	}
	dataset.CreatedAt = time.Now()
	dataset.UpdatedAt = dataset.CreatedAt

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		existing, err := transaction.Run(`
        MATCH (d:DataSet {ownerUsername: $owner, slug: $slug})
        RETURN d.id
        `, map[string]interface{}{
			"owner": dataset.OwnerUsername,
			"slug":  dataset.Slug,
		})
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}
		if existing.Next() {
			return nil, atlas_errors.ErrDataSetConflict
		}

		query := `
        MATCH (u:User {id: $ownerID})
        CREATE (d:DataSet {id: $id})
        SET d += $props
        CREATE (u)-[:OWNS]->(d)
        RETURN d.id as id
        `

		permissionsJSON, _ := json.Marshal(dataset.Permissions)
		webhooksJSON, _ := json.Marshal(dataset.Webhooks)

		params := map[string]interface{}{
			"ownerID": dataset.OwnerID,
			"id":      dataset.ID,
			"props": map[string]interface{}{
				"slug":          dataset.Slug,
				"displayName":   dataset.DisplayName,
				"ownerID":       dataset.OwnerID,
				"ownerUsername": dataset.OwnerUsername,
				"permissions":   string(permissionsJSON),
				"webhooks":      string(webhooksJSON),
				"createdAt":     dataset.CreatedAt.Format(time.RFC3339),
				"updatedAt":     dataset.UpdatedAt.Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, atlas_errors.ErrUserNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create dataset",
			zap.Error(err),
			zap.String("slug", dataset.Slug),
			zap.Duration("duration", duration))
		return "", err
	}

	datasetID := fmt.Sprintf("%v", result)
	logger.Info("Dataset created successfully",
		zap.String("datasetID", datasetID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventDataSetCreated, &dataset)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "CREATE_DATASET",
		ThingKind:     "dataset",
		ThingID:       datasetID,
		OwnerUsername: dataset.OwnerUsername,
		DataSetSlug:   dataset.Slug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return datasetID, nil
}

// GetDataSet retrieves a dataset with its permission rules, API keys,
// trusted origins, and groups (including member IDs) prefetched. This
// is the shape access control needs on every request.
func (dao *DataSetDAO) GetDataSet(ctx context.Context, ownerUsername, slug string) (*model.DataSet, error) {
	start := time.Now()
	logger.Debug("Retrieving dataset",
		zap.String("owner", ownerUsername),
		zap.String("slug", slug))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (d:DataSet {ownerUsername: $owner, slug: $slug})
    OPTIONAL MATCH (d)-[:HAS_GROUP]->(g:Group)
    OPTIONAL MATCH (g)<-[:MEMBER_OF]-(m:User)
    WITH d, g, collect(m.id) as memberIDs
    WITH d, collect({group: g, members: memberIDs}) as groups
    OPTIONAL MATCH (d)-[:HAS_KEY]->(k:ApiKey)
    WITH d, groups, collect(k) as keys
    OPTIONAL MATCH (d)-[:TRUSTS]->(o:Origin)
    RETURN d, groups, keys, collect(o) as origins
    `
	result, err := session.Run(query, map[string]interface{}{
		"owner": ownerUsername,
		"slug":  slug,
	})
	if err != nil {
		logger.Error("Failed to execute get dataset query",
			zap.Error(err),
			zap.String("slug", slug),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	if result.Next() {
		record := result.Record()
		dataset := mapNodeToDataSet(record.Values[0].(neo4j.Node))
		dataset.Groups = mapGroups(record.Values[1], dataset.ID)
		dataset.Keys = mapApiKeys(record.Values[2], dataset.ID)
		dataset.Origins = mapOrigins(record.Values[3], dataset.ID)
		return dataset, nil
	}

	logger.Debug("Dataset not found",
		zap.String("owner", ownerUsername),
		zap.String("slug", slug),
		zap.Duration("duration", time.Since(start)))
	return nil, atlas_errors.ErrDataSetNotFound
}

func (dao *DataSetDAO) GetDataSetByID(ctx context.Context, datasetID string) (*model.DataSet, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.Run(`
    MATCH (d:DataSet {id: $id})
    RETURN d.ownerUsername, d.slug
    `, map[string]interface{}{"id": datasetID})
	if err != nil {
		return nil, atlas_errors.ErrDatabaseOperation
	}

	if result.Next() {
		record := result.Record()
		owner, _ := record.Values[0].(string)
		slug, _ := record.Values[1].(string)
		return dao.GetDataSet(ctx, owner, slug)
	}

	return nil, atlas_errors.ErrDataSetNotFound
}

func (dao *DataSetDAO) ListDataSets(ctx context.Context, ownerUsername string, limit, offset int) ([]*model.DataSet, error) {
	start := time.Now()
	logger.Debug("Listing datasets",
		zap.String("owner", ownerUsername),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (d:DataSet {ownerUsername: $owner})
    RETURN d
    ORDER BY d.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"owner":  ownerUsername,
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		logger.Error("Failed to execute list datasets query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var datasets []*model.DataSet
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		datasets = append(datasets, mapNodeToDataSet(node))
	}

	return datasets, nil
}

func (dao *DataSetDAO) UpdateDataSet(ctx context.Context, dataset model.DataSet) (*model.DataSet, error) {
	start := time.Now()
	logger.Info("Updating dataset", zap.String("datasetID", dataset.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	var updatedDataSet *model.DataSet
	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:DataSet {id: $id})
        SET d += $props
        RETURN d
        `

		permissionsJSON, _ := json.Marshal(dataset.Permissions)
		webhooksJSON, _ := json.Marshal(dataset.Webhooks)

		params := map[string]interface{}{
			"id": dataset.ID,
			"props": map[string]interface{}{
				"slug":        dataset.Slug,
				"displayName": dataset.DisplayName,
				"permissions": string(permissionsJSON),
				"webhooks":    string(webhooksJSON),
				"updatedAt":   time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			updatedDataSet = mapNodeToDataSet(node)
			return nil, nil
		}

		return nil, atlas_errors.ErrDataSetNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update dataset",
			zap.Error(err),
			zap.String("datasetID", dataset.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	logger.Info("Dataset updated successfully",
		zap.String("datasetID", dataset.ID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventDataSetUpdated, updatedDataSet)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "UPDATE_DATASET",
		ThingKind:     "dataset",
		ThingID:       dataset.ID,
		OwnerUsername: updatedDataSet.OwnerUsername,
		DataSetSlug:   updatedDataSet.Slug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedDataSet, nil
}

// DeleteDataSet removes the dataset and everything hanging off it:
// keys, origins, groups, places, submissions, attachments, actions.
func (dao *DataSetDAO) DeleteDataSet(ctx context.Context, ownerUsername, slug string) error {
	start := time.Now()
	logger.Info("Deleting dataset",
		zap.String("owner", ownerUsername),
		zap.String("slug", slug))

	dataset, err := dao.GetDataSet(ctx, ownerUsername, slug)
	if err != nil {
		return err
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:DataSet {id: $id})
        OPTIONAL MATCH (d)-[*1..3]->(n)
        DETACH DELETE n, d
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": dataset.ID})
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
		logger.Error("Failed to delete dataset",
			zap.Error(err),
			zap.String("slug", slug),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Dataset deleted successfully",
		zap.String("datasetID", dataset.ID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventDataSetDeleted, dataset)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "DELETE_DATASET",
		ThingKind:     "dataset",
		ThingID:       dataset.ID,
		OwnerUsername: ownerUsername,
		DataSetSlug:   slug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

// Mapping helpers

func mapNodeToDataSet(node neo4j.Node) *model.DataSet {
	props := node.Props
	dataset := &model.DataSet{
		ID:            stringProp(props, "id"),
		Slug:          stringProp(props, "slug"),
		DisplayName:   stringProp(props, "displayName"),
		OwnerID:       stringProp(props, "ownerID"),
		OwnerUsername: stringProp(props, "ownerUsername"),
		CreatedAt:     timeProp(props, "createdAt"),
		UpdatedAt:     timeProp(props, "updatedAt"),
	}

	if raw := stringProp(props, "permissions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &dataset.Permissions); err != nil {
			logger.Error("Failed to unmarshal dataset permissions",
				zap.Error(err), zap.String("datasetID", dataset.ID))
		}
	}
	if raw := stringProp(props, "webhooks"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &dataset.Webhooks); err != nil {
			logger.Error("Failed to unmarshal dataset webhooks",
				zap.Error(err), zap.String("datasetID", dataset.ID))
		}
	}

	return dataset
}

func mapApiKeys(value interface{}, datasetID string) []model.ApiKey {
	nodes, ok := value.([]interface{})
	if !ok {
		return nil
	}

	var keys []model.ApiKey
	for _, entry := range nodes {
		node, ok := entry.(neo4j.Node)
		if !ok {
			continue
		}
		props := node.Props
		key := model.ApiKey{
			ID:        stringProp(props, "id"),
			Key:       stringProp(props, "key"),
			DataSetID: datasetID,
			CreatedAt: timeProp(props, "createdAt"),
		}
		if raw := stringProp(props, "permissions"); raw != "" {
			json.Unmarshal([]byte(raw), &key.Permissions)
		}
		keys = append(keys, key)
	}
	return keys
}

func mapOrigins(value interface{}, datasetID string) []model.Origin {
	nodes, ok := value.([]interface{})
	if !ok {
		return nil
	}

	var origins []model.Origin
	for _, entry := range nodes {
		node, ok := entry.(neo4j.Node)
		if !ok {
			continue
		}
		props := node.Props
		origin := model.Origin{
			ID:        stringProp(props, "id"),
			Pattern:   stringProp(props, "pattern"),
			DataSetID: datasetID,
			CreatedAt: timeProp(props, "createdAt"),
		}
		if raw := stringProp(props, "permissions"); raw != "" {
			json.Unmarshal([]byte(raw), &origin.Permissions)
		}
		origins = append(origins, origin)
	}
	return origins
}

func mapGroups(value interface{}, datasetID string) []model.Group {
	entries, ok := value.([]interface{})
	if !ok {
		return nil
	}

	var groups []model.Group
	for _, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		node, ok := fields["group"].(neo4j.Node)
		if !ok {
			continue
		}
		props := node.Props
		group := model.Group{
			ID:        stringProp(props, "id"),
			Name:      stringProp(props, "name"),
			DataSetID: datasetID,
		}
		if raw := stringProp(props, "permissions"); raw != "" {
			json.Unmarshal([]byte(raw), &group.Permissions)
		}
		if members, ok := fields["members"].([]interface{}); ok {
			for _, member := range members {
				if id, ok := member.(string); ok {
					group.SubmitterIDs = append(group.SubmitterIDs, id)
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}
