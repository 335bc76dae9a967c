// api/controller/user_controller_test.go
package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/mapcanvas/atlas/api/controller"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	mock_service "github.com/mapcanvas/atlas/api/test/service_mock"
)

func TestUserController(t *testing.T) {
	logger.InitLogger("../logging")
	defer logger.Sync()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserService := mock_service.NewMockIUserService(ctrl)
	userController := controller.NewUserController(mockUserService, nil, time.Hour)

	router := gin.New()
	userController.RegisterAuthRoutes(router.Group("/auth"))
	userController.RegisterRoutes(router.Group("/api/v2"))

	t.Run("CreateUser_Success", func(t *testing.T) {
		mockUserService.EXPECT().
			CreateUser(gomock.Any(), gomock.Any(), "hunter2").
			Return(&model.User{ID: "u1", Username: "demo"}, nil)

		body := strings.NewReader(`{"username":"demo","email":"demo@example.com","password":"hunter2"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/users", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("CreateUser_Failure_MissingPassword", func(t *testing.T) {
		body := strings.NewReader(`{"username":"demo"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/users", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CreateUser_Failure_Invalid", func(t *testing.T) {
		mockUserService.EXPECT().
			CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, atlas_errors.ErrInvalidUserData)

		body := strings.NewReader(`{"username":"Not A Slug","password":"hunter2"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/auth/users", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GetProfile_HidesEmailFromOthers", func(t *testing.T) {
		mockUserService.EXPECT().
			GetUserByUsername(gomock.Any(), "demo").
			Return(&model.User{ID: "u1", Username: "demo", Email: "demo@example.com"}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v2/demo", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "demo")
		assert.NotContains(t, w.Body.String(), "demo@example.com")
	})

	t.Run("GetProfile_Failure_NotFound", func(t *testing.T) {
		mockUserService.EXPECT().
			GetUserByUsername(gomock.Any(), "ghost").
			Return(nil, atlas_errors.ErrUserNotFound)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v2/ghost", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
