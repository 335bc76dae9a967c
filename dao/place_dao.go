// api/dao/place_dao.go
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

type PlaceDAO struct {
	Driver       neo4j.Driver
	EventBus     *util.EventBus
	AuditService audit.Service
}

func NewPlaceDAO(driver neo4j.Driver, eventBus *util.EventBus, auditService audit.Service) *PlaceDAO {
	dao := &PlaceDAO{Driver: driver, EventBus: eventBus, AuditService: auditService}
	// Ensure unique constraint on Place ID
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Place", zap.Error(err))
	}
	return dao
}

func (dao *PlaceDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_place_id IF NOT EXISTS
        FOR (p:Place) REQUIRE p.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	return err
}

func (dao *PlaceDAO) CreatePlace(ctx context.Context, place model.Place) (string, error) {
	start := time.Now()
	logger.Info("Creating new place",
		zap.String("owner", place.OwnerUsername),
		zap.String("dataset", place.DataSetSlug))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if place.ID == "" {
		place.ID = uuid.New().String()
	}
	place.CreatedAt = time.Now()
	place.UpdatedAt = place.CreatedAt

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:DataSet {id: $datasetID})
        CREATE (p:Place {id: $id})
        SET p += $props
        CREATE (d)-[:CONTAINS]->(p)
        RETURN p.id as id
        `

		params := map[string]interface{}{
			"datasetID": place.DataSetID,
			"id":        place.ID,
			"props": map[string]interface{}{
				"datasetID":     place.DataSetID,
				"datasetSlug":   place.DataSetSlug,
				"ownerUsername": place.OwnerUsername,
				"submitterID":   place.SubmitterID,
				"geometry":      string(place.Geometry),
				"data":          string(place.Data),
				"visible":       place.Visible,
				"createdAt":     place.CreatedAt.Format(time.RFC3339),
				"updatedAt":     place.UpdatedAt.Format(time.RFC3339),
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
		logger.Error("Failed to create place",
			zap.Error(err),
			zap.String("dataset", place.DataSetSlug),
			zap.Duration("duration", duration))
		return "", err
	}

	placeID := fmt.Sprintf("%v", result)
	logger.Info("Place created successfully",
		zap.String("placeID", placeID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventPlaceCreated, &place)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "CREATE_PLACE",
		ThingKind:     "place",
		ThingID:       placeID,
		OwnerUsername: place.OwnerUsername,
		DataSetSlug:   place.DataSetSlug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return placeID, nil
}

// GetPlace retrieves a place within a dataset. Invisible places are
// only returned when includeInvisible is set; to everyone else they do
// not exist.
func (dao *PlaceDAO) GetPlace(ctx context.Context, ownerUsername, slug, placeID string, includeInvisible bool) (*model.Place, error) {
	start := time.Now()
	logger.Debug("Retrieving place", zap.String("placeID", placeID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:Place {id: $id, ownerUsername: $owner, datasetSlug: $slug})
    WHERE p.visible OR $includeInvisible
    RETURN p
    `
	result, err := session.Run(query, map[string]interface{}{
		"id":               placeID,
		"owner":            ownerUsername,
		"slug":             slug,
		"includeInvisible": includeInvisible,
	})
	if err != nil {
		logger.Error("Failed to execute get place query",
			zap.Error(err),
			zap.String("placeID", placeID),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToPlace(node), nil
	}

	logger.Debug("Place not found",
		zap.String("placeID", placeID),
		zap.Duration("duration", time.Since(start)))
	return nil, atlas_errors.ErrPlaceNotFound
}

func (dao *PlaceDAO) ListPlaces(ctx context.Context, ownerUsername, slug string, includeInvisible bool, limit, offset int) ([]*model.Place, error) {
	start := time.Now()
	logger.Debug("Listing places",
		zap.String("owner", ownerUsername),
		zap.String("slug", slug),
		zap.Bool("includeInvisible", includeInvisible))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:Place {ownerUsername: $owner, datasetSlug: $slug})
    WHERE p.visible OR $includeInvisible
    RETURN p
    ORDER BY p.createdAt DESC
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"owner":            ownerUsername,
		"slug":             slug,
		"includeInvisible": includeInvisible,
		"limit":            limit,
		"offset":           offset,
	})
	if err != nil {
		logger.Error("Failed to execute list places query",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return nil, atlas_errors.ErrDatabaseOperation
	}

	var places []*model.Place
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		places = append(places, mapNodeToPlace(node))
	}

	logger.Debug("Places listed successfully",
		zap.Int("count", len(places)),
		zap.Duration("duration", time.Since(start)))

	return places, nil
}

func (dao *PlaceDAO) UpdatePlace(ctx context.Context, place model.Place) (*model.Place, error) {
	start := time.Now()
	logger.Info("Updating place", zap.String("placeID", place.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	var updatedPlace *model.Place
	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:Place {id: $id})
        SET p += $props
        RETURN p
        `

		params := map[string]interface{}{
			"id": place.ID,
			"props": map[string]interface{}{
				"geometry":  string(place.Geometry),
				"data":      string(place.Data),
				"visible":   place.Visible,
				"updatedAt": time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, atlas_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			updatedPlace = mapNodeToPlace(node)
			return nil, nil
		}

		return nil, atlas_errors.ErrPlaceNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update place",
			zap.Error(err),
			zap.String("placeID", place.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	logger.Info("Place updated successfully",
		zap.String("placeID", place.ID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventPlaceUpdated, updatedPlace)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "UPDATE_PLACE",
		ThingKind:     "place",
		ThingID:       place.ID,
		OwnerUsername: updatedPlace.OwnerUsername,
		DataSetSlug:   updatedPlace.DataSetSlug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedPlace, nil
}

// DeletePlace removes the place along with its submissions and
// attachments.
func (dao *PlaceDAO) DeletePlace(ctx context.Context, ownerUsername, slug, placeID string) error {
	start := time.Now()
	logger.Info("Deleting place", zap.String("placeID", placeID))

	place, err := dao.GetPlace(ctx, ownerUsername, slug, placeID, true)
	if err != nil {
		return err
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:Place {id: $id})
        OPTIONAL MATCH (p)-[*1..2]->(n)
        DETACH DELETE n, p
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": placeID})
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
		logger.Error("Failed to delete place",
			zap.Error(err),
			zap.String("placeID", placeID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Place deleted successfully",
		zap.String("placeID", placeID),
		zap.Duration("duration", duration))

	dao.EventBus.Publish(ctx, model.EventPlaceDeleted, place)

	// Audit trail
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		Username:      requestingUsername(ctx),
		Action:        "DELETE_PLACE",
		ThingKind:     "place",
		ThingID:       placeID,
		OwnerUsername: ownerUsername,
		DataSetSlug:   slug,
	}
	if err := dao.AuditService.LogChange(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

// Helper function to map Neo4j Node to Place struct
func mapNodeToPlace(node neo4j.Node) *model.Place {
	props := node.Props
	return &model.Place{
		ID:            stringProp(props, "id"),
		DataSetID:     stringProp(props, "datasetID"),
		DataSetSlug:   stringProp(props, "datasetSlug"),
		OwnerUsername: stringProp(props, "ownerUsername"),
		SubmitterID:   stringProp(props, "submitterID"),
		Geometry:      []byte(stringProp(props, "geometry")),
		Data:          []byte(stringProp(props, "data")),
		Visible:       boolProp(props, "visible"),
		CreatedAt:     timeProp(props, "createdAt"),
		UpdatedAt:     timeProp(props, "updatedAt"),
	}
}
