// api/controller/action_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mapcanvas/atlas/api/service"
	"github.com/mapcanvas/atlas/api/util"
	helper_util "github.com/mapcanvas/atlas/api/util/helper"
)

// ActionController serves the dataset activity feed.
type ActionController struct {
	actionService service.IActionService
}

// NewActionController creates a new instance of ActionController
func NewActionController(actionService service.IActionService) *ActionController {
	return &ActionController{actionService: actionService}
}

// List serves a dataset's recent activity, newest first.
func (ac *ActionController) List(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	actions, err := ac.actionService.ListActions(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list actions", err)
		return
	}

	c.JSON(http.StatusOK, actions)
}
