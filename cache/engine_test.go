// api/cache/engine_test.go
package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/util"
)

func TestMain(m *testing.M) {
	logger.InitLogger("../logging")
	m.Run()
}

// fakeStore is an in-memory Store for tests.
type fakeStore struct {
	entries map[string]*Entry
	tracked map[string]map[string]bool
	attrs   map[string]map[string]string
	failing bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: make(map[string]*Entry),
		tracked: make(map[string]map[string]bool),
		attrs:   make(map[string]map[string]string),
	}
}

var errStoreDown = errors.New("store down")

func (s *fakeStore) GetEntry(ctx context.Context, key string) (*Entry, error) {
	if s.failing {
		return nil, errStoreDown
	}
	return s.entries[key], nil
}

func (s *fakeStore) SetEntry(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	if s.failing {
		return errStoreDown
	}
	s.entries[key] = entry
	return nil
}

func (s *fakeStore) IsTracked(ctx context.Context, metakey, key string) (bool, error) {
	if s.failing {
		return false, errStoreDown
	}
	return s.tracked[metakey][key], nil
}

func (s *fakeStore) TrackKey(ctx context.Context, metakey, key string, ttl time.Duration) error {
	if s.failing {
		return errStoreDown
	}
	if s.tracked[metakey] == nil {
		s.tracked[metakey] = make(map[string]bool)
	}
	s.tracked[metakey][key] = true
	return nil
}

func (s *fakeStore) DropTracked(ctx context.Context, metakeys ...string) error {
	if s.failing {
		return errStoreDown
	}
	for _, metakey := range metakeys {
		delete(s.tracked, metakey)
	}
	return nil
}

func (s *fakeStore) GetAttributes(ctx context.Context, key string) (map[string]string, error) {
	if s.failing {
		return nil, errStoreDown
	}
	return s.attrs[key], nil
}

func (s *fakeStore) SetAttributes(ctx context.Context, key string, attrs map[string]string, ttl time.Duration) error {
	if s.failing {
		return errStoreDown
	}
	s.attrs[key] = attrs
	return nil
}

func (s *fakeStore) DeleteAttributes(ctx context.Context, keys ...string) error {
	if s.failing {
		return errStoreDown
	}
	for _, key := range keys {
		delete(s.attrs, key)
	}
	return nil
}

// testEntity is a minimal Invalidatable for engine tests.
type testEntity struct {
	kind  string
	id    string
	paths []string
}

func (e *testEntity) Kind() string            { return e.kind }
func (e *testEntity) Key() string             { return e.id }
func (e *testEntity) AffectedPaths() []string { return e.paths }

func (e *testEntity) IdentifyingAttributes() map[string]string {
	return map[string]string{"id": e.id}
}

func TestLookupServesOnlyTrackedKeys(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store, time.Minute)

	key := ResponseKey("/api/v2/demo/datasets/park/places", "application/json", "", "")
	metakey := Metakey("/api/v2/demo/datasets/park/places")
	entry := &Entry{Status: 200, Headers: map[string]string{"Content-Type": "application/json"}, Body: []byte(`[]`)}

	// An entry present in the store but absent from the tracked set must
	// never be served: it can no longer be invalidated.
	require.NoError(t, store.SetEntry(ctx, key, entry, time.Minute))
	assert.Nil(t, engine.Lookup(ctx, key, metakey))

	require.NoError(t, store.TrackKey(ctx, metakey, key, time.Minute))
	got := engine.Lookup(ctx, key, metakey)
	require.NotNil(t, got)
	assert.Equal(t, entry.Body, got.Body)
}

func TestLookupTreatsStoreFailureAsMiss(t *testing.T) {
	store := newFakeStore()
	store.failing = true
	engine := NewEngine(store, time.Minute)

	assert.Nil(t, engine.Lookup(context.Background(), "key", "metakey"))
}

func TestInvalidateDropsWholeTrackedSets(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store, time.Minute)

	metakey := Metakey("/api/v2/demo/datasets/park/places")
	otherMetakey := Metakey("/api/v2/demo/datasets/garden/places")
	require.NoError(t, store.TrackKey(ctx, metakey, "key-a", time.Minute))
	require.NoError(t, store.TrackKey(ctx, metakey, "key-b", time.Minute))
	require.NoError(t, store.TrackKey(ctx, otherMetakey, "key-c", time.Minute))

	ent := &testEntity{kind: "place", id: "p1", paths: []string{"/api/v2/demo/datasets/park/places"}}
	require.NoError(t, store.SetAttributes(ctx, AttributeKey("place", "p1"), map[string]string{"id": "p1"}, time.Minute))

	engine.Invalidate(ctx, ent)

	tracked, err := store.IsTracked(ctx, metakey, "key-a")
	require.NoError(t, err)
	assert.False(t, tracked)
	tracked, err = store.IsTracked(ctx, metakey, "key-b")
	require.NoError(t, err)
	assert.False(t, tracked)

	// Unrelated sets survive; the entity's cached attributes do not.
	tracked, err = store.IsTracked(ctx, otherMetakey, "key-c")
	require.NoError(t, err)
	assert.True(t, tracked)
	attrs, err := store.GetAttributes(ctx, AttributeKey("place", "p1"))
	require.NoError(t, err)
	assert.Empty(t, attrs)

	// Invalidating again is harmless.
	engine.Invalidate(ctx, ent)
}

func TestRegisterInvalidatesOnPublishedMutations(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store, time.Minute)
	bus := util.NewEventBus()
	engine.Register(bus, "place.created")

	metakey := Metakey("/api/v2/demo/datasets/park/places")
	require.NoError(t, store.TrackKey(ctx, metakey, "key-a", time.Minute))

	// Publish is synchronous, so the set is gone when it returns.
	bus.Publish(ctx, "place.created", &testEntity{kind: "place", id: "p1", paths: []string{"/api/v2/demo/datasets/park/places"}})

	tracked, err := store.IsTracked(ctx, metakey, "key-a")
	require.NoError(t, err)
	assert.False(t, tracked)
}

func TestRegisterIgnoresForeignPayloads(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, time.Minute)
	bus := util.NewEventBus()
	engine.Register(bus, "place.created")

	// A payload that cannot invalidate anything is logged and skipped.
	bus.Publish(context.Background(), "place.created", "not an entity")
}
