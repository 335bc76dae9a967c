// api/controller/resource_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mapcanvas/atlas/api/auth"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	"github.com/mapcanvas/atlas/api/service"
	"github.com/mapcanvas/atlas/api/util"
)

// ResourceController routes requests inside a dataset. Everything below
// a dataset slug is registered on generic segment parameters and
// dispatched here by segment value: gin's routing tree cannot hold a
// literal segment (places, actions, keys, ...) beside a parameter
// (a submission set name) at the same level, and submission sets are
// user-named.
type ResourceController struct {
	places      *PlaceController
	submissions *SubmissionController
	attachments *AttachmentController
	actions     *ActionController
	clients     *ClientController
}

// NewResourceController creates a new instance of ResourceController
func NewResourceController(places *PlaceController, submissions *SubmissionController, attachments *AttachmentController, actions *ActionController, clients *ClientController) *ResourceController {
	return &ResourceController{
		places:      places,
		submissions: submissions,
		attachments: attachments,
		actions:     actions,
		clients:     clients,
	}
}

// RegisterRoutes registers the dataset resource tree.
func (ctrl *ResourceController) RegisterRoutes(r *gin.RouterGroup) {
	base := "/:owner_username/datasets/:dataset_slug"

	r.GET(base+"/:resource", ctrl.List)
	r.POST(base+"/:resource", ctrl.Create)
	r.GET(base+"/:resource/:resource_id", ctrl.Get)
	r.PUT(base+"/:resource/:resource_id", ctrl.Update)
	r.DELETE(base+"/:resource/:resource_id", ctrl.Delete)
	r.GET(base+"/:resource/:resource_id/:subresource", ctrl.ListSub)
	r.POST(base+"/:resource/:resource_id/:subresource", ctrl.CreateSub)
	r.GET(base+"/:resource/:resource_id/:subresource/:subresource_id", ctrl.GetSub)
	r.PUT(base+"/:resource/:resource_id/:subresource/:subresource_id", ctrl.UpdateSub)
	r.DELETE(base+"/:resource/:resource_id/:subresource/:subresource_id", ctrl.DeleteSub)
}

// List serves GET on a dataset resource collection. An unrecognized
// segment is a dataset-scoped submission set list.
func (ctrl *ResourceController) List(c *gin.Context) {
	switch c.Param("resource") {
	case service.PlacesSet:
		ctrl.places.List(c)
	case "actions":
		ctrl.actions.List(c)
	case "keys":
		if requireOwner(c) {
			ctrl.clients.ListKeys(c)
		}
	case "origins":
		if requireOwner(c) {
			ctrl.clients.ListOrigins(c)
		}
	case "groups":
		if requireOwner(c) {
			ctrl.clients.ListGroups(c)
		}
	case "metadata":
		if requireOwner(c) {
			ctrl.metadata(c)
		}
	default:
		ctrl.submissions.ListForDataSet(c)
	}
}

// metadata serves the owner's administrative summary of the dataset:
// its identity plus the sizes of the collaborator collections.
func (ctrl *ResourceController) metadata(c *gin.Context) {
	dataset := auth.GetRequestContext(c).Dataset
	c.JSON(http.StatusOK, gin.H{
		"id":             dataset.ID,
		"slug":           dataset.Slug,
		"display_name":   dataset.DisplayName,
		"owner_username": dataset.OwnerUsername,
		"keys":           len(dataset.Keys),
		"origins":        len(dataset.Origins),
		"groups":         len(dataset.Groups),
		"permissions":    len(dataset.Permissions),
		"webhooks":       len(dataset.Webhooks),
	})
}

// Create serves POST on a dataset resource collection. Submissions can
// only be created under their place, so an unrecognized segment is not
// found here.
func (ctrl *ResourceController) Create(c *gin.Context) {
	switch c.Param("resource") {
	case service.PlacesSet:
		ctrl.places.Create(c)
	case "keys":
		if requireOwner(c) {
			ctrl.clients.CreateKey(c)
		}
	case "origins":
		if requireOwner(c) {
			ctrl.clients.CreateOrigin(c)
		}
	case "groups":
		if requireOwner(c) {
			ctrl.clients.CreateGroup(c)
		}
	default:
		respondNotFound(c)
	}
}

// Get serves GET on a single dataset resource. Only places have detail
// views at this level.
func (ctrl *ResourceController) Get(c *gin.Context) {
	switch c.Param("resource") {
	case service.PlacesSet:
		ctrl.places.Get(c)
	default:
		respondNotFound(c)
	}
}

// Update serves PUT on a single dataset resource.
func (ctrl *ResourceController) Update(c *gin.Context) {
	switch c.Param("resource") {
	case service.PlacesSet:
		ctrl.places.Update(c)
	default:
		respondNotFound(c)
	}
}

// Delete serves DELETE on a single dataset resource.
func (ctrl *ResourceController) Delete(c *gin.Context) {
	switch c.Param("resource") {
	case service.PlacesSet:
		ctrl.places.Delete(c)
	case "keys":
		if requireOwner(c) {
			ctrl.clients.DeleteKey(c)
		}
	case "origins":
		if requireOwner(c) {
			ctrl.clients.DeleteOrigin(c)
		}
	case "groups":
		if requireOwner(c) {
			ctrl.clients.DeleteGroup(c)
		}
	default:
		respondNotFound(c)
	}
}

// ListSub serves GET on a collection under a place (its attachments or
// one of its submission sets) or a group's member list.
func (ctrl *ResourceController) ListSub(c *gin.Context) {
	switch c.Param("resource") {
	case service.PlacesSet:
		if c.Param("subresource") == "attachments" {
			ctrl.attachments.List(c)
		} else {
			ctrl.submissions.List(c)
		}
	case "groups":
		if c.Param("subresource") == "submitters" && requireOwner(c) {
			ctrl.clients.ListGroupMembers(c)
		} else if c.Param("subresource") != "submitters" {
			respondNotFound(c)
		}
	default:
		respondNotFound(c)
	}
}

// CreateSub serves POST on a collection under a place.
func (ctrl *ResourceController) CreateSub(c *gin.Context) {
	if c.Param("resource") != service.PlacesSet {
		respondNotFound(c)
		return
	}
	if c.Param("subresource") == "attachments" {
		ctrl.attachments.Create(c)
		return
	}
	ctrl.submissions.Create(c)
}

// GetSub serves GET on a single attachment or submission.
func (ctrl *ResourceController) GetSub(c *gin.Context) {
	if c.Param("resource") != service.PlacesSet {
		respondNotFound(c)
		return
	}
	if c.Param("subresource") == "attachments" {
		ctrl.attachments.Get(c)
		return
	}
	ctrl.submissions.Get(c)
}

// UpdateSub serves PUT on a single submission, or adds a user to a
// group's submitters.
func (ctrl *ResourceController) UpdateSub(c *gin.Context) {
	switch c.Param("resource") {
	case service.PlacesSet:
		if c.Param("subresource") == "attachments" {
			respondNotFound(c)
			return
		}
		ctrl.submissions.Update(c)
	case "groups":
		if c.Param("subresource") == "submitters" && requireOwner(c) {
			ctrl.clients.AddGroupMember(c)
		} else if c.Param("subresource") != "submitters" {
			respondNotFound(c)
		}
	default:
		respondNotFound(c)
	}
}

// DeleteSub serves DELETE on a single submission, or removes a user
// from a group's submitters.
func (ctrl *ResourceController) DeleteSub(c *gin.Context) {
	switch c.Param("resource") {
	case service.PlacesSet:
		if c.Param("subresource") == "attachments" {
			respondNotFound(c)
			return
		}
		ctrl.submissions.Delete(c)
	case "groups":
		if c.Param("subresource") == "submitters" && requireOwner(c) {
			ctrl.clients.RemoveGroupMember(c)
		} else if c.Param("subresource") != "submitters" {
			respondNotFound(c)
		}
	default:
		respondNotFound(c)
	}
}

// requireOwner re-checks owner access for the credential-management
// branches, which share their routes with submitter-facing resources
// and so cannot sit behind the OwnerOnly middleware.
func requireOwner(c *gin.Context) bool {
	rc := auth.GetRequestContext(c)
	sub := rc.Subject()
	if sub == nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Authentication required", atlas_errors.ErrAuthenticationRejected)
		return false
	}
	if sub.User.IsAdmin || sub.IsOwnerOf(rc.Dataset) {
		return true
	}
	util.RespondWithError(c, http.StatusForbidden, "Owner access required", atlas_errors.ErrPermissionDenied)
	return false
}

func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
}
