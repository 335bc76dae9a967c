// api/util/cache_service.go

package util

import (
	"context"

	"github.com/mapcanvas/atlas/api/db"
	"github.com/mapcanvas/atlas/api/model"
)

// CacheService is the object cache for frequently re-fetched domain
// entities. Distinct from the response cache: this holds deserialized
// objects for internal reuse (the dataset is loaded on every
// owner-scoped request), not rendered responses.
type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetDataSet(ctx context.Context, ownerUsername, slug string) (*model.DataSet, error) {
	return db.GetCachedDataSet(ctx, ownerUsername, slug)
}

func (c *CacheService) SetDataSet(ctx context.Context, dataset model.DataSet) error {
	return db.CacheDataSet(ctx, &dataset)
}

func (c *CacheService) DeleteDataSet(ctx context.Context, ownerUsername, slug string) error {
	return db.DeleteCachedDataSet(ctx, ownerUsername, slug)
}

func (c *CacheService) GetUser(ctx context.Context, username string) (*model.User, error) {
	return db.GetCachedUser(ctx, username)
}

func (c *CacheService) SetUser(ctx context.Context, user model.User) error {
	return db.CacheUser(ctx, &user)
}

func (c *CacheService) DeleteUser(ctx context.Context, username string) error {
	return db.DeleteCachedUser(ctx, username)
}
