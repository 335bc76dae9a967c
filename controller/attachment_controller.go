// api/controller/attachment_controller.go
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

// AttachmentController handles HTTP requests for place attachments.
type AttachmentController struct {
	attachmentService service.IAttachmentService
	verifier          *auth.Verifier
}

// NewAttachmentController creates a new instance of AttachmentController
func NewAttachmentController(attachmentService service.IAttachmentService, verifier *auth.Verifier) *AttachmentController {
	return &AttachmentController{attachmentService: attachmentService, verifier: verifier}
}

// List serves the attachments on a place.
func (ac *AttachmentController) List(c *gin.Context) {
	attachments, err := ac.attachmentService.ListAttachments(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), c.Param("resource_id"), "")
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list attachments", err)
		return
	}

	c.JSON(http.StatusOK, attachments)
}

type attachmentRequest struct {
	Name    string `json:"name"`
	FileURL string `json:"file" binding:"required"`
}

// Create records an attachment on a place. The file itself lives in
// external storage; only its URL is stored.
func (ac *AttachmentController) Create(c *gin.Context) {
	var req attachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid attachment data", err)
		return
	}

	created, err := ac.attachmentService.CreateAttachment(c.Request.Context(), model.Attachment{
		Name:          req.Name,
		FileURL:       req.FileURL,
		OwnerUsername: c.Param("owner_username"),
		DataSetSlug:   c.Param("dataset_slug"),
		PlaceID:       c.Param("resource_id"),
	})
	if err != nil {
		ac.respondWithAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get serves a single attachment, with the usual identity check against
// the path.
func (ac *AttachmentController) Get(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	attachment, err := ac.attachmentService.GetAttachment(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), c.Param("resource_id"), c.Param("subresource_id"))
	if err != nil {
		ac.respondWithAttachmentError(c, err)
		return
	}

	if err := ac.verifier.Verify(c.Request.Context(), attachment, rc.Claims, rc.IncludeInvisible, rc.Buffer); err != nil {
		ac.respondWithAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, attachment)
}

func (ac *AttachmentController) respondWithAttachmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, atlas_errors.ErrAttachmentNotFound),
		errors.Is(err, atlas_errors.ErrPlaceNotFound),
		errors.Is(err, atlas_errors.ErrIdentityMismatch),
		errors.Is(err, atlas_errors.ErrInvisibleNotRequested):
		util.RespondWithError(c, http.StatusNotFound, "Attachment not found", err)
	case errors.Is(err, atlas_errors.ErrInvalidAttachmentData):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid attachment data", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Attachment operation failed", err)
	}
}
