// api/middleware/cache_test.go
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mapcanvas/atlas/api/auth"
	"github.com/mapcanvas/atlas/api/cache"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/util"
)

func TestMain(m *testing.M) {
	logger.InitLogger("../logging")
	gin.SetMode(gin.TestMode)
	m.Run()
}

// memStore is an in-memory cache.Store for middleware tests.
type memStore struct {
	entries map[string]*cache.Entry
	tracked map[string]map[string]bool
	attrs   map[string]map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[string]*cache.Entry),
		tracked: make(map[string]map[string]bool),
		attrs:   make(map[string]map[string]string),
	}
}

func (s *memStore) GetEntry(ctx context.Context, key string) (*cache.Entry, error) {
	return s.entries[key], nil
}

func (s *memStore) SetEntry(ctx context.Context, key string, entry *cache.Entry, ttl time.Duration) error {
	s.entries[key] = entry
	return nil
}

func (s *memStore) IsTracked(ctx context.Context, metakey, key string) (bool, error) {
	return s.tracked[metakey][key], nil
}

func (s *memStore) TrackKey(ctx context.Context, metakey, key string, ttl time.Duration) error {
	if s.tracked[metakey] == nil {
		s.tracked[metakey] = make(map[string]bool)
	}
	s.tracked[metakey][key] = true
	return nil
}

func (s *memStore) DropTracked(ctx context.Context, metakeys ...string) error {
	for _, metakey := range metakeys {
		delete(s.tracked, metakey)
	}
	return nil
}

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

type invalidatableStub struct {
	paths []string
}

func (e *invalidatableStub) Kind() string            { return "place" }
func (e *invalidatableStub) Key() string             { return "p1" }
func (e *invalidatableStub) AffectedPaths() []string { return e.paths }

// cachedRouter builds a router with a stub gate that injects the group
// token returned by tokenFn, the response cache, and a counting handler.
func cachedRouter(engine *cache.Engine, tokenFn func() string, status int, handled *int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetRequestContext(c, &auth.RequestContext{
			Principal:  &auth.Principal{},
			GroupToken: tokenFn(),
			Buffer:     engine.NewBuffer(),
		})
	})
	r.Use(ResponseCache(engine))
	r.GET("/api/v2/:owner_username/datasets/:dataset_slug/:resource", func(c *gin.Context) {
		*handled++
		c.JSON(status, gin.H{"count": *handled})
	})
	r.POST("/api/v2/:owner_username/datasets/:dataset_slug/:resource", func(c *gin.Context) {
		*handled++
		c.JSON(http.StatusCreated, gin.H{"id": "p1"})
	})
	r.GET("/api/v2/:owner_username/datasets", func(c *gin.Context) {
		*handled++
		c.JSON(status, gin.H{"webhook_url": "https://hooks.internal/park"})
	})
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", target, nil)
	req.Header.Set("Accept", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestResponseCacheMissThenHit(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	handled := 0
	r := cachedRouter(engine, func() string { return "" }, http.StatusOK, &handled)

	first := get(r, "/api/v2/demo/datasets/park/places")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "no-cache", first.Header().Get("Cache-Control"))

	second := get(r, "/api/v2/demo/datasets/park/places")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "no-cache", second.Header().Get("Cache-Control"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, handled)
}

func TestResponseCachePartitionsByGroupToken(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	handled := 0
	token := ""
	r := cachedRouter(engine, func() string { return token }, http.StatusOK, &handled)

	get(r, "/api/v2/demo/datasets/park/places")
	token = "__owners__"
	owner := get(r, "/api/v2/demo/datasets/park/places")

	// The owner's view is never served from the anonymous entry.
	assert.Equal(t, "MISS", owner.Header().Get("X-Cache"))
	assert.Equal(t, 2, handled)
}

func TestResponseCacheIgnoresCacheBuster(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	handled := 0
	r := cachedRouter(engine, func() string { return "" }, http.StatusOK, &handled)

	get(r, "/api/v2/demo/datasets/park/places?_=1716563200000")
	second := get(r, "/api/v2/demo/datasets/park/places?_=1716563300000")

	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, handled)
}

func TestResponseCacheSkipsNonSuccesses(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	handled := 0
	r := cachedRouter(engine, func() string { return "" }, http.StatusNotFound, &handled)

	get(r, "/api/v2/demo/datasets/park/places")
	second := get(r, "/api/v2/demo/datasets/park/places")

	assert.Equal(t, "MISS", second.Header().Get("X-Cache"))
	assert.Equal(t, 2, handled)
}

func TestResponseCacheInvalidatedByMutationEvent(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	bus := util.NewEventBus()
	engine.Register(bus, "place.created")

	handled := 0
	r := cachedRouter(engine, func() string { return "" }, http.StatusOK, &handled)

	get(r, "/api/v2/demo/datasets/park/places")
	assert.Equal(t, "HIT", get(r, "/api/v2/demo/datasets/park/places").Header().Get("X-Cache"))

	bus.Publish(context.Background(), "place.created", &invalidatableStub{
		paths: []string{"/api/v2/demo/datasets/park/places"},
	})

	after := get(r, "/api/v2/demo/datasets/park/places")
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.Equal(t, 2, handled)
}

func TestResponseCacheSkipsOwnerOnlyCollections(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	handled := 0
	r := cachedRouter(engine, func() string { return "" }, http.StatusOK, &handled)

	// Credential collections are owner-gated inside the handler, after
	// this middleware would have staged the body. They must never be
	// cached, whoever asks.
	for _, target := range []string{
		"/api/v2/demo/datasets/park/keys",
		"/api/v2/demo/datasets/park/origins",
		"/api/v2/demo/datasets/park/groups",
		"/api/v2/demo/datasets/park/metadata",
	} {
		first := get(r, target)
		second := get(r, target)
		assert.Empty(t, first.Header().Get("X-Cache"), target)
		assert.Empty(t, second.Header().Get("X-Cache"), target)
	}
	assert.Equal(t, 8, handled)
}

func TestResponseCacheNeverLeaksOwnerViewToAnonymous(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	handled := 0
	token := "__owners__"
	r := cachedRouter(engine, func() string { return token }, http.StatusOK, &handled)

	// The dataset list serializes credentials and webhooks for its
	// owner. The owner's response must not seed an entry an anonymous
	// caller could be served.
	owner := get(r, "/api/v2/demo/datasets")
	assert.Equal(t, http.StatusOK, owner.Code)
	assert.Empty(t, owner.Header().Get("X-Cache"))

	token = ""
	anon := get(r, "/api/v2/demo/datasets")
	assert.NotEqual(t, "HIT", anon.Header().Get("X-Cache"))
	assert.Equal(t, 2, handled)
}

func TestResponseCacheNeverCachesWrites(t *testing.T) {
	engine := cache.NewEngine(newMemStore(), time.Minute)
	handled := 0
	r := cachedRouter(engine, func() string { return "" }, http.StatusOK, &handled)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v2/demo/datasets/park/places", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}
