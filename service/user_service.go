// api/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/dao"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/util"
)

// IUserService defines the interface for user operations. It also
// serves subject authentication, so it satisfies the authenticators'
// user store contract.
type IUserService interface {
	CreateUser(ctx context.Context, user model.User, password string) (*model.User, error)
	UpdateUser(ctx context.Context, user model.User) (*model.User, error)
	DeleteUser(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error)
}

// UserService handles business logic for user operations
type UserService struct {
	userDAO        *dao.UserDAO
	validationUtil *util.ValidationUtil
	cacheService   *util.CacheService
}

var _ IUserService = &UserService{}

// NewUserService creates a new instance of UserService
func NewUserService(userDAO *dao.UserDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService) *UserService {
	return &UserService{
		userDAO:        userDAO,
		validationUtil: validationUtil,
		cacheService:   cacheService,
	}
}

func (s *UserService) CreateUser(ctx context.Context, user model.User, password string) (*model.User, error) {
	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrInvalidUserData, err)
	}

	userID, err := s.userDAO.CreateUser(ctx, user, password)
	if err != nil {
		logger.Error("Error creating user", zap.Error(err), zap.String("username", user.Username))
		return nil, err
	}

	return s.userDAO.GetUser(ctx, userID)
}

func (s *UserService) UpdateUser(ctx context.Context, user model.User) (*model.User, error) {
	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrInvalidUserData, err)
	}

	updatedUser, err := s.userDAO.UpdateUser(ctx, user)
	if err != nil {
		logger.Error("Error updating user", zap.Error(err), zap.String("userID", user.ID))
		return nil, err
	}

	if err := s.cacheService.DeleteUser(ctx, updatedUser.Username); err != nil {
		logger.Warn("Failed to drop user from cache", zap.Error(err), zap.String("username", updatedUser.Username))
	}

	return updatedUser, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.userDAO.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.userDAO.DeleteUser(ctx, userID); err != nil {
		logger.Error("Error deleting user", zap.Error(err), zap.String("userID", userID))
		return err
	}

	if err := s.cacheService.DeleteUser(ctx, user.Username); err != nil {
		logger.Warn("Failed to drop user from cache", zap.Error(err), zap.String("username", user.Username))
	}

	return nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.userDAO.GetUser(ctx, userID)
}

// GetUserByUsername retrieves a user preferring the object cache. The
// cached copy never carries the password hash; credential checks go
// through Authenticate.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	cachedUser, err := s.cacheService.GetUser(ctx, username)
	if err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	user, err := s.userDAO.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, atlas_errors.ErrUserNotFound) {
			return nil, atlas_errors.ErrUserNotFound
		}
		logger.Error("Error retrieving user", zap.Error(err), zap.String("username", username))
		return nil, atlas_errors.ErrInternalServer
	}

	if err := s.cacheService.SetUser(ctx, *user); err != nil {
		logger.Warn("Failed to cache user", zap.Error(err), zap.String("username", username))
	}

	return user, nil
}

// Authenticate verifies credentials against storage directly.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	return s.userDAO.Authenticate(ctx, username, password)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	users, err := s.userDAO.ListUsers(ctx, limit, offset)
	if err != nil {
		logger.Error("Error listing users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
