// api/controller/submission_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mapcanvas/atlas/api/auth"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/service"
	"github.com/mapcanvas/atlas/api/util"
	helper_util "github.com/mapcanvas/atlas/api/util/helper"
)

// SubmissionController handles HTTP requests for submission operations.
// Place-scoped routes carry the set name in the subresource segment;
// the dataset-scoped list carries it in the resource segment.
type SubmissionController struct {
	submissionService service.ISubmissionService
	verifier          *auth.Verifier
}

// NewSubmissionController creates a new instance of SubmissionController
func NewSubmissionController(submissionService service.ISubmissionService, verifier *auth.Verifier) *SubmissionController {
	return &SubmissionController{submissionService: submissionService, verifier: verifier}
}

// List serves one place's submissions in the named set, or every set
// under the reserved all-sets name.
func (sc *SubmissionController) List(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	submissions, err := sc.submissionService.ListSubmissions(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), c.Param("resource_id"), c.Param("subresource"),
		rc.IncludeInvisible, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list submissions", err)
		return
	}

	sc.respondWithList(c, submissions, rc.IncludePrivate)
}

// ListForDataSet serves submissions in the named set across every place
// in the dataset.
func (sc *SubmissionController) ListForDataSet(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	submissions, err := sc.submissionService.ListDataSetSubmissions(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), c.Param("resource"),
		rc.IncludeInvisible, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list submissions", err)
		return
	}

	sc.respondWithList(c, submissions, rc.IncludePrivate)
}

type submissionRequest struct {
	Data    json.RawMessage `json:"data"`
	Visible *bool           `json:"visible"`
}

// Create adds a submission to the named set on a place.
func (sc *SubmissionController) Create(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid submission data", err)
		return
	}

	submission := model.Submission{
		SetName:       c.Param("subresource"),
		PlaceID:       c.Param("resource_id"),
		DataSetID:     rc.Dataset.ID,
		DataSetSlug:   rc.Dataset.Slug,
		OwnerUsername: rc.Dataset.OwnerUsername,
		Data:          req.Data,
		Visible:       req.Visible == nil || *req.Visible,
	}
	if sub := rc.Subject(); sub != nil {
		submission.SubmitterID = sub.ID()
	}

	created, err := sc.submissionService.CreateSubmission(c.Request.Context(), submission, rc.Dataset)
	if err != nil {
		sc.respondWithSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get serves a single submission. The path-asserted identity is
// verified against the fetched submission; a mismatch reads as not
// found.
func (sc *SubmissionController) Get(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	submission, err := sc.fetchAndVerify(c)
	if err != nil {
		sc.respondWithSubmissionError(c, err)
		return
	}

	if !rc.IncludePrivate {
		submission.Data = model.StripPrivateAttributes(submission.Data)
	}

	c.JSON(http.StatusOK, submission)
}

// Update replaces a submission's data and visibility.
func (sc *SubmissionController) Update(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	submission, err := sc.fetchAndVerify(c)
	if err != nil {
		sc.respondWithSubmissionError(c, err)
		return
	}

	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid submission data", err)
		return
	}

	submission.Data = req.Data
	if req.Visible != nil {
		submission.Visible = *req.Visible
	}

	updated, err := sc.submissionService.UpdateSubmission(c.Request.Context(), *submission, rc.Dataset)
	if err != nil {
		sc.respondWithSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes a submission.
func (sc *SubmissionController) Delete(c *gin.Context) {
	if _, err := sc.fetchAndVerify(c); err != nil {
		sc.respondWithSubmissionError(c, err)
		return
	}

	err := sc.submissionService.DeleteSubmission(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), c.Param("resource_id"),
		c.Param("subresource"), c.Param("subresource_id"))
	if err != nil {
		sc.respondWithSubmissionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (sc *SubmissionController) fetchAndVerify(c *gin.Context) (*model.Submission, error) {
	rc := auth.GetRequestContext(c)

	submission, err := sc.submissionService.GetSubmission(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), c.Param("resource_id"),
		c.Param("subresource"), c.Param("subresource_id"), rc.IncludeInvisible)
	if err != nil {
		return nil, err
	}

	if err := sc.verifier.Verify(c.Request.Context(), submission, rc.Claims, rc.IncludeInvisible, rc.Buffer); err != nil {
		return nil, err
	}
	return submission, nil
}

func (sc *SubmissionController) respondWithList(c *gin.Context, submissions []*model.Submission, includePrivate bool) {
	if !includePrivate {
		for _, submission := range submissions {
			submission.Data = model.StripPrivateAttributes(submission.Data)
		}
	}
	c.JSON(http.StatusOK, submissions)
}

func (sc *SubmissionController) respondWithSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, atlas_errors.ErrSubmissionNotFound),
		errors.Is(err, atlas_errors.ErrPlaceNotFound),
		errors.Is(err, atlas_errors.ErrIdentityMismatch),
		errors.Is(err, atlas_errors.ErrInvisibleNotRequested):
		util.RespondWithError(c, http.StatusNotFound, "Submission not found", err)
	case errors.Is(err, atlas_errors.ErrInvalidSubmissionData):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid submission data", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Submission operation failed", err)
	}
}
