// api/controller/client_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mapcanvas/atlas/api/auth"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/service"
	"github.com/mapcanvas/atlas/api/util"
)

// ClientController manages the client credentials attached to a
// dataset: API keys, trusted origins, and submitter groups. Every
// endpoint here requires the dataset owner.
type ClientController struct {
	clientService service.IClientService
}

// NewClientController creates a new instance of ClientController
func NewClientController(clientService service.IClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// ListKeys serves the dataset's API keys from the prefetched dataset.
func (cc *ClientController) ListKeys(c *gin.Context) {
	c.JSON(http.StatusOK, auth.GetRequestContext(c).Dataset.Keys)
}

type createKeyRequest struct {
	Permissions []model.PermissionRule `json:"permissions"`
}

// CreateKey provisions a new API key; the key string is generated
// server side.
func (cc *ClientController) CreateKey(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	// An empty body is fine; anything unparseable is not.
	var req createKeyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid key data", err)
			return
		}
	}

	keyID, err := cc.clientService.CreateApiKey(c.Request.Context(), rc.Dataset, model.ApiKey{
		DataSetID:   rc.Dataset.ID,
		Permissions: req.Permissions,
	})
	if err != nil {
		cc.respondWithClientError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": keyID})
}

// DeleteKey revokes an API key.
func (cc *ClientController) DeleteKey(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	if err := cc.clientService.DeleteApiKey(c.Request.Context(), rc.Dataset, c.Param("resource_id")); err != nil {
		cc.respondWithClientError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListOrigins serves the dataset's trusted origins.
func (cc *ClientController) ListOrigins(c *gin.Context) {
	c.JSON(http.StatusOK, auth.GetRequestContext(c).Dataset.Origins)
}

type createOriginRequest struct {
	Pattern     string                 `json:"pattern" binding:"required"`
	Permissions []model.PermissionRule `json:"permissions"`
}

// CreateOrigin trusts a new web origin pattern.
func (cc *ClientController) CreateOrigin(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	var req createOriginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid origin data", err)
		return
	}

	originID, err := cc.clientService.CreateOrigin(c.Request.Context(), rc.Dataset, model.Origin{
		Pattern:     req.Pattern,
		DataSetID:   rc.Dataset.ID,
		Permissions: req.Permissions,
	})
	if err != nil {
		cc.respondWithClientError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": originID})
}

// DeleteOrigin withdraws trust from an origin.
func (cc *ClientController) DeleteOrigin(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	if err := cc.clientService.DeleteOrigin(c.Request.Context(), rc.Dataset, c.Param("resource_id")); err != nil {
		cc.respondWithClientError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListGroups serves the dataset's submitter groups.
func (cc *ClientController) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, auth.GetRequestContext(c).Dataset.Groups)
}

type createGroupRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Permissions []model.PermissionRule `json:"permissions"`
}

// CreateGroup creates a named submitter group.
func (cc *ClientController) CreateGroup(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid group data", err)
		return
	}

	groupID, err := cc.clientService.CreateGroup(c.Request.Context(), rc.Dataset, model.Group{
		Name:        req.Name,
		DataSetID:   rc.Dataset.ID,
		Permissions: req.Permissions,
	})
	if err != nil {
		cc.respondWithClientError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": groupID})
}

// DeleteGroup removes a group and its memberships.
func (cc *ClientController) DeleteGroup(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	if err := cc.clientService.DeleteGroup(c.Request.Context(), rc.Dataset, c.Param("resource_id")); err != nil {
		cc.respondWithClientError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListGroupMembers serves a group's member ids from the prefetched
// dataset.
func (cc *ClientController) ListGroupMembers(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	groupID := c.Param("resource_id")
	for i := range rc.Dataset.Groups {
		if rc.Dataset.Groups[i].ID == groupID {
			c.JSON(http.StatusOK, gin.H{"submitter_ids": rc.Dataset.Groups[i].SubmitterIDs})
			return
		}
	}

	util.RespondWithError(c, http.StatusNotFound, "Group not found", atlas_errors.ErrDatabaseOperation)
}

// AddGroupMember adds a user to a group. Adding a member twice is a
// no-op.
func (cc *ClientController) AddGroupMember(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	err := cc.clientService.AddGroupMember(c.Request.Context(), rc.Dataset,
		c.Param("resource_id"), c.Param("subresource_id"))
	if err != nil {
		cc.respondWithClientError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveGroupMember removes a user from a group.
func (cc *ClientController) RemoveGroupMember(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	err := cc.clientService.RemoveGroupMember(c.Request.Context(), rc.Dataset,
		c.Param("resource_id"), c.Param("subresource_id"))
	if err != nil {
		cc.respondWithClientError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (cc *ClientController) respondWithClientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, atlas_errors.ErrUserNotFound):
		util.RespondWithError(c, http.StatusNotFound, "User not found", err)
	case errors.Is(err, atlas_errors.ErrDataSetNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Dataset not found", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Credential operation failed", err)
	}
}
