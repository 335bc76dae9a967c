// api/controller/dataset_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mapcanvas/atlas/api/auth"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	"github.com/mapcanvas/atlas/api/middleware"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/service"
	"github.com/mapcanvas/atlas/api/util"
	helper_util "github.com/mapcanvas/atlas/api/util/helper"
)

// CloneHeader names the dataset slug to clone instead of creating an
// empty dataset.
const CloneHeader = "X-Atlas-Clone"

// DataSetController handles HTTP requests for dataset operations
type DataSetController struct {
	datasetService service.IDataSetService
}

// NewDataSetController creates a new instance of DataSetController
func NewDataSetController(datasetService service.IDataSetService) *DataSetController {
	return &DataSetController{datasetService: datasetService}
}

// RegisterRoutes registers the dataset list and detail endpoints.
// Lifecycle operations require the owner; the detail view is open to
// anyone the permission policy lets through.
func (dc *DataSetController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/:owner_username/datasets", middleware.OwnerOnly(), dc.ListDataSets)
	r.POST("/:owner_username/datasets", middleware.OwnerOnly(), dc.CreateDataSet)
	r.GET("/:owner_username/datasets/:dataset_slug", dc.GetDataSet)
	r.PUT("/:owner_username/datasets/:dataset_slug", middleware.OwnerOnly(), dc.UpdateDataSet)
	r.DELETE("/:owner_username/datasets/:dataset_slug", middleware.OwnerOnly(), dc.DeleteDataSet)
}

// ListDataSets serves an owner's datasets with pagination.
func (dc *DataSetController) ListDataSets(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	datasets, err := dc.datasetService.ListDataSets(c.Request.Context(), c.Param("owner_username"), limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list datasets", err)
		return
	}

	c.JSON(http.StatusOK, datasets)
}

type createDataSetRequest struct {
	Slug        string                 `json:"slug" binding:"required"`
	DisplayName string                 `json:"display_name"`
	Permissions []model.PermissionRule `json:"permissions"`
	Webhooks    []model.Webhook        `json:"webhooks"`
}

// CreateDataSet creates a dataset for the owner in the path. When the
// clone header is present its value names an existing dataset of the
// same owner to copy instead; the deep copy runs in the background and
// the response is the accepted shallow clone.
func (dc *DataSetController) CreateDataSet(c *gin.Context) {
	owner := c.Param("owner_username")

	sourceSlug := c.GetHeader(CloneHeader)
	if sourceSlug == "" {
		sourceSlug = c.Query("clone")
	}
	if sourceSlug != "" {
		dc.cloneDataSet(c, owner, sourceSlug)
		return
	}

	var req createDataSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid dataset data", err)
		return
	}

	created, err := dc.datasetService.CreateDataSet(c.Request.Context(), model.DataSet{
		Slug:          req.Slug,
		DisplayName:   req.DisplayName,
		OwnerUsername: owner,
		Permissions:   req.Permissions,
		Webhooks:      req.Webhooks,
	})
	if err != nil {
		dc.respondWithDataSetError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (dc *DataSetController) cloneDataSet(c *gin.Context, owner, sourceSlug string) {
	source, err := dc.datasetService.GetDataSet(c.Request.Context(), owner, sourceSlug)
	if err != nil {
		if errors.Is(err, atlas_errors.ErrDataSetNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Source dataset not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to load source dataset", err)
		}
		return
	}

	clone, err := dc.datasetService.CloneDataSet(c.Request.Context(), source)
	if err != nil {
		dc.respondWithDataSetError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, clone)
}

// GetDataSet serves the dataset the gate already prefetched. The
// attached credentials are only serialized for the owner.
func (dc *DataSetController) GetDataSet(c *gin.Context) {
	rc := auth.GetRequestContext(c)
	dataset := rc.Dataset

	sub := rc.Subject()
	if sub != nil && (sub.User.IsAdmin || sub.IsOwnerOf(dataset)) {
		c.JSON(http.StatusOK, dataset)
		return
	}

	public := *dataset
	public.Permissions = nil
	public.Keys = nil
	public.Origins = nil
	public.Groups = nil
	public.Webhooks = nil
	c.JSON(http.StatusOK, &public)
}

// UpdateDataSet handles updates to dataset metadata, permission rules,
// and webhooks.
func (dc *DataSetController) UpdateDataSet(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	var req createDataSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid dataset data", err)
		return
	}

	dataset := *rc.Dataset
	if req.Slug != "" {
		dataset.Slug = req.Slug
	}
	dataset.DisplayName = req.DisplayName
	dataset.Permissions = req.Permissions
	dataset.Webhooks = req.Webhooks

	updated, err := dc.datasetService.UpdateDataSet(c.Request.Context(), rc.Dataset, dataset)
	if err != nil {
		dc.respondWithDataSetError(c, err)
		return
	}

	// A renamed dataset lives at a new URL; point clients there.
	if updated.Slug != rc.Dataset.Slug {
		c.Header("Location", model.DataSetPath(updated.OwnerUsername, updated.Slug))
		c.JSON(http.StatusMovedPermanently, updated)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteDataSet removes a dataset and everything under it.
func (dc *DataSetController) DeleteDataSet(c *gin.Context) {
	err := dc.datasetService.DeleteDataSet(c.Request.Context(), c.Param("owner_username"), c.Param("dataset_slug"))
	if err != nil {
		dc.respondWithDataSetError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (dc *DataSetController) respondWithDataSetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, atlas_errors.ErrDataSetNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Dataset not found", err)
	case errors.Is(err, atlas_errors.ErrUserNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Owner not found", err)
	case errors.Is(err, atlas_errors.ErrDataSetConflict):
		util.RespondWithError(c, http.StatusConflict, "Dataset already exists", err)
	case errors.Is(err, atlas_errors.ErrInvalidDataSetData):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid dataset data", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Dataset operation failed", err)
	}
}
