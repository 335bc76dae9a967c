// api/controller/place_controller.go
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

// PlaceController handles HTTP requests for place operations. It is
// dispatched to from the dataset resource routes.
type PlaceController struct {
	placeService      service.IPlaceService
	submissionService service.ISubmissionService
	verifier          *auth.Verifier
}

// NewPlaceController creates a new instance of PlaceController
func NewPlaceController(placeService service.IPlaceService, submissionService service.ISubmissionService, verifier *auth.Verifier) *PlaceController {
	return &PlaceController{placeService: placeService, submissionService: submissionService, verifier: verifier}
}

// List serves a dataset's places with pagination.
func (pc *PlaceController) List(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	places, err := pc.placeService.ListPlaces(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), rc.IncludeInvisible, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list places", err)
		return
	}

	if !rc.IncludePrivate {
		for _, place := range places {
			place.Data = model.StripPrivateAttributes(place.Data)
		}
	}

	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, model.NewFeatureCollection(places))
		return
	}

	c.JSON(http.StatusOK, places)
}

type placeRequest struct {
	Geometry json.RawMessage `json:"geometry"`
	Data     json.RawMessage `json:"data"`
	Visible  *bool           `json:"visible"`
}

// Create adds a place to the dataset. New places are visible unless the
// request says otherwise.
func (pc *PlaceController) Create(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid place data", err)
		return
	}

	place := model.Place{
		DataSetID:     rc.Dataset.ID,
		DataSetSlug:   rc.Dataset.Slug,
		OwnerUsername: rc.Dataset.OwnerUsername,
		Geometry:      req.Geometry,
		Data:          req.Data,
		Visible:       req.Visible == nil || *req.Visible,
	}
	if sub := rc.Subject(); sub != nil {
		place.SubmitterID = sub.ID()
	}

	created, err := pc.placeService.CreatePlace(c.Request.Context(), place, rc.Dataset)
	if err != nil {
		pc.respondWithPlaceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Get serves a single place. The path-asserted identity is verified
// against the fetched place; a mismatch reads as not found.
func (pc *PlaceController) Get(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	place, err := pc.fetchAndVerify(c)
	if err != nil {
		pc.respondWithPlaceError(c, err)
		return
	}

	if !rc.IncludePrivate {
		place.Data = model.StripPrivateAttributes(place.Data)
	}

	if rc.IncludeSubmissions {
		submissions, err := pc.submissionService.ListSubmissions(c.Request.Context(),
			place.OwnerUsername, place.DataSetSlug, place.ID, model.AllSubmissionsSet,
			rc.IncludeInvisible, helper_util.DefaultLimit, 0)
		if err != nil {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to list submissions", err)
			return
		}
		if !rc.IncludePrivate {
			for _, submission := range submissions {
				submission.Data = model.StripPrivateAttributes(submission.Data)
			}
		}
		c.JSON(http.StatusOK, placeWithSubmissions{Place: place, Submissions: submissions})
		return
	}

	c.JSON(http.StatusOK, place)
}

// placeWithSubmissions is the expanded detail rendering served when the
// owner asks for submissions inline.
type placeWithSubmissions struct {
	*model.Place
	Submissions []*model.Submission `json:"submissions"`
}

// Update replaces a place's geometry, data, and visibility.
func (pc *PlaceController) Update(c *gin.Context) {
	rc := auth.GetRequestContext(c)

	place, err := pc.fetchAndVerify(c)
	if err != nil {
		pc.respondWithPlaceError(c, err)
		return
	}

	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid place data", err)
		return
	}

	place.Geometry = req.Geometry
	place.Data = req.Data
	if req.Visible != nil {
		place.Visible = *req.Visible
	}

	updated, err := pc.placeService.UpdatePlace(c.Request.Context(), *place, rc.Dataset)
	if err != nil {
		pc.respondWithPlaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes a place and everything attached to it.
func (pc *PlaceController) Delete(c *gin.Context) {
	if _, err := pc.fetchAndVerify(c); err != nil {
		pc.respondWithPlaceError(c, err)
		return
	}

	err := pc.placeService.DeletePlace(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), c.Param("resource_id"))
	if err != nil {
		pc.respondWithPlaceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (pc *PlaceController) fetchAndVerify(c *gin.Context) (*model.Place, error) {
	rc := auth.GetRequestContext(c)

	place, err := pc.placeService.GetPlace(c.Request.Context(),
		c.Param("owner_username"), c.Param("dataset_slug"), c.Param("resource_id"), rc.IncludeInvisible)
	if err != nil {
		return nil, err
	}

	if err := pc.verifier.Verify(c.Request.Context(), place, rc.Claims, rc.IncludeInvisible, rc.Buffer); err != nil {
		return nil, err
	}
	return place, nil
}

func (pc *PlaceController) respondWithPlaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, atlas_errors.ErrPlaceNotFound),
		errors.Is(err, atlas_errors.ErrIdentityMismatch),
		errors.Is(err, atlas_errors.ErrInvisibleNotRequested):
		util.RespondWithError(c, http.StatusNotFound, "Place not found", err)
	case errors.Is(err, atlas_errors.ErrInvalidPlaceData):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid place data", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Place operation failed", err)
	}
}
