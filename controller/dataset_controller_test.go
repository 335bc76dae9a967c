// api/controller/dataset_controller_test.go
package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/mapcanvas/atlas/api/auth"
	"github.com/mapcanvas/atlas/api/controller"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	mock_service "github.com/mapcanvas/atlas/api/test/service_mock"
)

// stubGate injects the request context the real gate would have
// resolved: the given subject plus the dataset whenever the route
// addresses one.
func stubGate(dataset *model.DataSet, user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := &auth.RequestContext{Principal: &auth.Principal{}}
		if user != nil {
			rc.Principal.Subject = &auth.Subject{User: user}
		}
		if c.Param("dataset_slug") != "" {
			rc.Dataset = dataset
		}
		auth.SetRequestContext(c, rc)
	}
}

func TestDataSetController(t *testing.T) {
	logger.InitLogger("../logging")
	defer logger.Sync()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := &model.User{ID: "u1", Username: "demo"}
	dataset := &model.DataSet{
		ID:            "d1",
		Slug:          "park",
		OwnerID:       "u1",
		OwnerUsername: "demo",
		Keys:          []model.ApiKey{{ID: "k1", Key: "secret", DataSetID: "d1"}},
	}

	mockDataSetService := mock_service.NewMockIDataSetService(ctrl)
	datasetController := controller.NewDataSetController(mockDataSetService)

	newRouter := func(user *model.User) *gin.Engine {
		router := gin.New()
		api := router.Group("/api/v2")
		api.Use(stubGate(dataset, user))
		datasetController.RegisterRoutes(api)
		return router
	}

	t.Run("ListDataSets_Success", func(t *testing.T) {
		mockDataSetService.EXPECT().
			ListDataSets(gomock.Any(), "demo", 100, 0).
			Return([]*model.DataSet{dataset}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v2/demo/datasets", nil)
		newRouter(owner).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ListDataSets_Forbidden_NotOwner", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v2/demo/datasets", nil)
		newRouter(&model.User{ID: "u2", Username: "visitor"}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("ListDataSets_Unauthorized_Anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v2/demo/datasets", nil)
		newRouter(nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("CreateDataSet_Success", func(t *testing.T) {
		mockDataSetService.EXPECT().
			CreateDataSet(gomock.Any(), gomock.Any()).
			Return(dataset, nil)

		body := strings.NewReader(`{"slug":"park","display_name":"Park Trees"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v2/demo/datasets", body)
		newRouter(owner).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("CreateDataSet_Failure_Conflict", func(t *testing.T) {
		mockDataSetService.EXPECT().
			CreateDataSet(gomock.Any(), gomock.Any()).
			Return(nil, atlas_errors.ErrDataSetConflict)

		body := strings.NewReader(`{"slug":"park"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v2/demo/datasets", body)
		newRouter(owner).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("CreateDataSet_Clone_Accepted", func(t *testing.T) {
		clone := &model.DataSet{ID: "d2", Slug: "park-2", OwnerID: "u1", OwnerUsername: "demo"}
		mockDataSetService.EXPECT().
			GetDataSet(gomock.Any(), "demo", "park").
			Return(dataset, nil)
		mockDataSetService.EXPECT().
			CloneDataSet(gomock.Any(), dataset).
			Return(clone, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v2/demo/datasets", nil)
		req.Header.Set(controller.CloneHeader, "park")
		newRouter(owner).ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("GetDataSet_OwnerSeesCredentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v2/demo/datasets/park", nil)
		newRouter(owner).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "secret")
	})

	t.Run("GetDataSet_StrangerSeesNoCredentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v2/demo/datasets/park", nil)
		newRouter(&model.User{ID: "u2", Username: "visitor"}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
	})

	t.Run("UpdateDataSet_RenameRedirects", func(t *testing.T) {
		renamed := &model.DataSet{ID: "d1", Slug: "park-renamed", OwnerID: "u1", OwnerUsername: "demo"}
		// The pre-rename dataset must flow into the service so the views
		// cached under the old slug can be invalidated.
		mockDataSetService.EXPECT().
			UpdateDataSet(gomock.Any(), dataset, gomock.Any()).
			Return(renamed, nil)

		body := strings.NewReader(`{"slug":"park-renamed"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v2/demo/datasets/park", body)
		newRouter(owner).ServeHTTP(w, req)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "/api/v2/demo/datasets/park-renamed", w.Header().Get("Location"))
	})

	t.Run("DeleteDataSet_Success", func(t *testing.T) {
		mockDataSetService.EXPECT().
			DeleteDataSet(gomock.Any(), "demo", "park").
			Return(nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/v2/demo/datasets/park", nil)
		newRouter(owner).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
