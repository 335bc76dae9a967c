// api/middleware/gate_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mapcanvas/atlas/api/model"
)

func paramContext(params gin.Params) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = params
	return c
}

func TestRouteIdentityPlaceDetail(t *testing.T) {
	c := paramContext(gin.Params{
		{Key: "owner_username", Value: "demo"},
		{Key: "dataset_slug", Value: "park"},
		{Key: "resource", Value: "places"},
		{Key: "resource_id", Value: "p1"},
	})

	claims, set := routeIdentity(c)
	assert.Equal(t, "places", set)
	assert.Equal(t, map[string]string{
		"owner_username": "demo",
		"dataset_slug":   "park",
		"place_id":       "p1",
	}, claims)
}

func TestRouteIdentitySubmissionDetail(t *testing.T) {
	c := paramContext(gin.Params{
		{Key: "owner_username", Value: "demo"},
		{Key: "dataset_slug", Value: "park"},
		{Key: "resource", Value: "places"},
		{Key: "resource_id", Value: "p1"},
		{Key: "subresource", Value: "comments"},
		{Key: "subresource_id", Value: "s1"},
	})

	claims, set := routeIdentity(c)
	assert.Equal(t, "comments", set)
	assert.Equal(t, "p1", claims["place_id"])
	assert.Equal(t, "comments", claims["submission_set_name"])
	assert.Equal(t, "s1", claims["submission_id"])
}

func TestRouteIdentityAttachment(t *testing.T) {
	c := paramContext(gin.Params{
		{Key: "owner_username", Value: "demo"},
		{Key: "dataset_slug", Value: "park"},
		{Key: "resource", Value: "places"},
		{Key: "resource_id", Value: "p1"},
		{Key: "subresource", Value: "attachments"},
		{Key: "subresource_id", Value: "a1"},
	})

	claims, set := routeIdentity(c)
	assert.Equal(t, "places", set)
	assert.Equal(t, "a1", claims["attachment_id"])
	assert.NotContains(t, claims, "submission_set_name")
}

func TestRouteIdentityDataSetScopedSet(t *testing.T) {
	c := paramContext(gin.Params{
		{Key: "owner_username", Value: "demo"},
		{Key: "dataset_slug", Value: "park"},
		{Key: "resource", Value: "comments"},
	})

	claims, set := routeIdentity(c)
	assert.Equal(t, "comments", set)
	assert.Equal(t, "comments", claims["submission_set_name"])
}

func TestRouteIdentityCredentialRoutesHaveNoSet(t *testing.T) {
	for _, resource := range []string{"actions", "keys", "origins", "groups", "metadata"} {
		c := paramContext(gin.Params{
			{Key: "owner_username", Value: "demo"},
			{Key: "dataset_slug", Value: "park"},
			{Key: "resource", Value: resource},
		})

		claims, set := routeIdentity(c)
		assert.Equal(t, "", set)
		assert.NotContains(t, claims, "submission_set_name")
	}
}

func TestRequiredAbilities(t *testing.T) {
	assert.Equal(t, []model.Ability{model.AbilityRead}, requiredAbilities(http.MethodGet, false, false))
	assert.Equal(t, []model.Ability{model.AbilityWrite}, requiredAbilities(http.MethodPost, false, false))
	assert.Equal(t,
		[]model.Ability{model.AbilityRead, model.AbilityReadPrivate, model.AbilityReadInvisible},
		requiredAbilities(http.MethodGet, true, true))
}
