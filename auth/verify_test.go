// api/auth/verify_test.go
package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mapcanvas/atlas/api/cache"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	"github.com/mapcanvas/atlas/api/model"
)

// memStore is a minimal in-memory cache.Store for verifier tests.
type memStore struct {
	attrs map[string]map[string]string
}

func newMemStore() *memStore {
	return &memStore{attrs: make(map[string]map[string]string)}
}

func (s *memStore) GetEntry(ctx context.Context, key string) (*cache.Entry, error) { return nil, nil }
func (s *memStore) SetEntry(ctx context.Context, key string, entry *cache.Entry, ttl time.Duration) error {
	return nil
}
func (s *memStore) IsTracked(ctx context.Context, metakey, key string) (bool, error) {
	return false, nil
}
func (s *memStore) TrackKey(ctx context.Context, metakey, key string, ttl time.Duration) error {
	return nil
}
func (s *memStore) DropTracked(ctx context.Context, metakeys ...string) error { return nil }

func (s *memStore) GetAttributes(ctx context.Context, key string) (map[string]string, error) {
	return s.attrs[key], nil
}

func (s *memStore) SetAttributes(ctx context.Context, key string, attrs map[string]string, ttl time.Duration) error {
	s.attrs[key] = attrs
	return nil
}

func (s *memStore) DeleteAttributes(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.attrs, key)
	}
	return nil
}

func testPlace() *model.Place {
	return &model.Place{
		ID:            "p1",
		DataSetSlug:   "park",
		OwnerUsername: "demo",
		Visible:       true,
	}
}

func placeClaims() map[string]string {
	return map[string]string{
		"owner_username": "demo",
		"dataset_slug":   "park",
		"place_id":       "p1",
	}
}

func TestVerifyAcceptsMatchingClaims(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	v := NewVerifier(engine.Instances())

	err := v.Verify(context.Background(), testPlace(), placeClaims(), false, nil)
	assert.NoError(t, err)
}

func TestVerifyRejectsMismatchedPath(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	v := NewVerifier(engine.Instances())

	// Valid place id reached under someone else's dataset segment.
	claims := placeClaims()
	claims["owner_username"] = "other"

	err := v.Verify(context.Background(), testPlace(), claims, false, nil)
	assert.ErrorIs(t, err, atlas_errors.ErrIdentityMismatch)
}

func TestVerifyUsesCachedAttributes(t *testing.T) {
	store := newMemStore()
	engine := cache.NewEngine(store, time.Minute)
	v := NewVerifier(engine.Instances())

	// The cached attributes are authoritative: if they disagree with the
	// path, the object is not served even when the object itself agrees.
	place := testPlace()
	store.attrs[cache.AttributeKey(place.Kind(), place.Key())] = map[string]string{
		"owner_username": "someone-else",
		"dataset_slug":   "park",
		"place_id":       "p1",
	}

	err := v.Verify(context.Background(), place, placeClaims(), false, nil)
	assert.ErrorIs(t, err, atlas_errors.ErrIdentityMismatch)
}

func TestVerifyInvisibleRequiresExplicitRequest(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	v := NewVerifier(engine.Instances())

	place := testPlace()
	place.Visible = false

	err := v.Verify(context.Background(), place, placeClaims(), false, nil)
	assert.ErrorIs(t, err, atlas_errors.ErrInvisibleNotRequested)

	err = v.Verify(context.Background(), place, placeClaims(), true, nil)
	assert.NoError(t, err)
}

func TestVerifyStagesBackfillOnBuffer(t *testing.T) {
	store := newMemStore()
	engine := cache.NewEngine(store, time.Minute)
	v := NewVerifier(engine.Instances())
	buf := engine.NewBuffer()

	place := testPlace()
	err := v.Verify(context.Background(), place, placeClaims(), false, buf)
	assert.NoError(t, err)

	// The attribute write is staged, not performed.
	key := cache.AttributeKey(place.Kind(), place.Key())
	assert.Empty(t, store.attrs[key])

	buf.Flush(context.Background())
	assert.Equal(t, "demo", store.attrs[key]["owner_username"])
}
