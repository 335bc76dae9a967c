// api/cache/buffer_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferFlushWritesAndTracks(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	buf := NewBuffer(store, time.Minute)

	entry := &Entry{Status: 200, Headers: map[string]string{"Content-Type": "application/json"}, Body: []byte(`[]`)}
	buf.StageEntry("key-a", "metakey-a", entry)
	buf.StageAttributes("instance:place:p1:attrs", map[string]string{"place_id": "p1"})
	assert.Equal(t, 2, buf.Len())

	// Nothing reaches the store until the flush.
	got, err := store.GetEntry(ctx, "key-a")
	require.NoError(t, err)
	assert.Nil(t, got)

	buf.Flush(ctx)

	got, err = store.GetEntry(ctx, "key-a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.Body, got.Body)

	tracked, err := store.IsTracked(ctx, "metakey-a", "key-a")
	require.NoError(t, err)
	assert.True(t, tracked)

	attrs, err := store.GetAttributes(ctx, "instance:place:p1:attrs")
	require.NoError(t, err)
	assert.Equal(t, "p1", attrs["place_id"])

	// The buffer is empty after flushing; flushing again writes nothing.
	assert.Equal(t, 0, buf.Len())
	buf.Flush(ctx)
}

func TestBufferDiscardLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	buf := NewBuffer(store, time.Minute)

	buf.StageEntry("key-a", "metakey-a", &Entry{Status: 200})
	buf.Discard()
	assert.Equal(t, 0, buf.Len())

	buf.Flush(ctx)
	got, err := store.GetEntry(ctx, "key-a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBufferFlushSurvivesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failing = true
	buf := NewBuffer(store, time.Minute)

	buf.StageEntry("key-a", "metakey-a", &Entry{Status: 200})
	buf.StageAttributes("attrs-a", map[string]string{"id": "a"})
	buf.Flush(context.Background())

	assert.Equal(t, 0, buf.Len())
}

func TestInstanceCacheBackfillsThroughBuffer(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store, time.Minute)
	instances := engine.Instances()
	buf := engine.NewBuffer()

	ent := &testEntity{kind: "place", id: "p1"}

	// Miss: attributes come from the entity and the write is staged, not
	// performed.
	attrs := instances.Attributes(ctx, ent, buf)
	assert.Equal(t, "p1", attrs["id"])
	stored, err := store.GetAttributes(ctx, AttributeKey("place", "p1"))
	require.NoError(t, err)
	assert.Empty(t, stored)

	buf.Flush(ctx)
	stored, err = store.GetAttributes(ctx, AttributeKey("place", "p1"))
	require.NoError(t, err)
	assert.Equal(t, "p1", stored["id"])

	// Hit: the cached copy is preferred.
	store.attrs[AttributeKey("place", "p1")] = map[string]string{"id": "cached"}
	attrs = instances.Attributes(ctx, ent, nil)
	assert.Equal(t, "cached", attrs["id"])
}
