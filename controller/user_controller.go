// api/controller/user_controller.go
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/auth"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/service"
	"github.com/mapcanvas/atlas/api/util"
)

// UserController handles account management and session endpoints, plus
// the public owner profile view.
type UserController struct {
	userService service.IUserService
	sessions    *auth.RedisSessionStore
	sessionTTL  time.Duration
}

// NewUserController creates a new instance of UserController
func NewUserController(userService service.IUserService, sessions *auth.RedisSessionStore, sessionTTL time.Duration) *UserController {
	return &UserController{
		userService: userService,
		sessions:    sessions,
		sessionTTL:  sessionTTL,
	}
}

// RegisterAuthRoutes registers the account and session endpoints. These
// live outside the owner-scoped API tree and are never gated or cached.
func (uc *UserController) RegisterAuthRoutes(r *gin.RouterGroup) {
	r.POST("/users", uc.CreateUser)
	r.POST("/session", uc.Login)
	r.DELETE("/session", uc.Logout)
}

// RegisterRoutes registers the owner profile view on the gated tree.
func (uc *UserController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/:owner_username", uc.GetProfile)
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// CreateUser registers a new account.
func (uc *UserController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", err)
		return
	}

	user, err := uc.userService.CreateUser(c.Request.Context(), model.User{
		Username: req.Username,
		Email:    req.Email,
	}, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, atlas_errors.ErrInvalidUserData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", err)
		case errors.Is(err, atlas_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusConflict, "Username already taken", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create user", err)
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and opens a session. The token is returned
// in the body and set as a cookie for browser clients.
func (uc *UserController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid login data", err)
		return
	}

	user, err := uc.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials", err)
		return
	}

	token, err := uc.sessions.Open(c.Request.Context(), user.Username)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to open session", err)
		return
	}

	c.SetCookie(auth.SessionCookie, token, int(uc.sessionTTL.Seconds()), "/", "", false, true)

	logger.Info("Session opened", zap.String("username", user.Username))
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout closes the session named by the cookie. Closing an already
// closed session is a no-op.
func (uc *UserController) Logout(c *gin.Context) {
	token, err := c.Cookie(auth.SessionCookie)
	if err != nil || token == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := uc.sessions.Close(c.Request.Context(), token); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to close session", err)
		return
	}

	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// GetProfile serves an owner's public profile. The email address is
// only serialized for the account holder themselves.
func (uc *UserController) GetProfile(c *gin.Context) {
	username := c.Param("owner_username")

	user, err := uc.userService.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, atlas_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve user", err)
		}
		return
	}

	rc := auth.GetRequestContext(c)
	if sub := rc.Subject(); sub == nil || sub.Username() != user.Username {
		public := *user
		public.Email = ""
		public.Groups = nil
		c.JSON(http.StatusOK, &public)
		return
	}

	c.JSON(http.StatusOK, user)
}
