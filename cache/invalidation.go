// api/cache/invalidation.go
package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/util"
)

// Invalidatable is implemented by every entity whose mutation can make
// cached responses stale. An entity must be able to name, purely from
// its own fields, the canonical path of every resource view it
// affects; the engine derives the metakeys from those paths.
type Invalidatable interface {
	Kind() string
	Key() string
	AffectedPaths() []string
}

// Engine maintains the tracked key sets that gate the response cache
// and drops them when the underlying data changes.
//
// A stored response is servable only while its key is a member of the
// tracked set for the resource path that produced it. Invalidation is
// wholesale: the whole set is dropped, never individual keys, trading
// extra future misses for correctness. All store failures degrade: a
// failed lookup is a miss, a failed invalidation is logged and left to
// the TTL backstop. The engine never fails a request or a write.
type Engine struct {
	store Store
	ttl   time.Duration
}

func NewEngine(store Store, ttl time.Duration) *Engine {
	return &Engine{store: store, ttl: ttl}
}

// TTL returns the lifetime applied to entries and tracked sets.
func (e *Engine) TTL() time.Duration {
	return e.ttl
}

// NewBuffer returns a request-scoped write buffer over the engine's
// store.
func (e *Engine) NewBuffer() *Buffer {
	return NewBuffer(e.store, e.ttl)
}

// Instances returns an instance-attribute cache over the engine's
// store.
func (e *Engine) Instances() *InstanceCache {
	return &InstanceCache{store: e.store, ttl: e.ttl}
}

// Lookup returns the cached response for key, or nil on a miss. An
// entry present in the store whose key is not tracked under metakey is
// treated as a miss: an untracked key can never be invalidated, so it
// must never be served.
func (e *Engine) Lookup(ctx context.Context, key, metakey string) *Entry {
	tracked, err := e.store.IsTracked(ctx, metakey, key)
	if err != nil {
		logger.Warn("Cache membership check failed, treating as miss",
			zap.String("metakey", metakey), zap.Error(err))
		return nil
	}
	if !tracked {
		return nil
	}

	entry, err := e.store.GetEntry(ctx, key)
	if err != nil {
		logger.Warn("Cache read failed, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	return entry
}

// Invalidate drops the tracked key sets of every view the entity
// affects, along with the entity's cached identifying attributes.
func (e *Engine) Invalidate(ctx context.Context, ent Invalidatable) {
	paths := ent.AffectedPaths()
	metakeys := make([]string, 0, len(paths))
	for _, path := range paths {
		metakeys = append(metakeys, Metakey(path))
	}

	if err := e.store.DropTracked(ctx, metakeys...); err != nil {
		logger.Error("Cache invalidation failed, relying on TTL expiry",
			zap.String("kind", ent.Kind()),
			zap.String("id", ent.Key()),
			zap.Error(err))
	} else {
		logger.Debug("Invalidated cached views",
			zap.String("kind", ent.Kind()),
			zap.String("id", ent.Key()),
			zap.Int("metakeys", len(metakeys)))
	}

	if err := e.store.DeleteAttributes(ctx, AttributeKey(ent.Kind(), ent.Key())); err != nil {
		logger.Error("Failed to drop cached instance attributes",
			zap.String("kind", ent.Kind()),
			zap.String("id", ent.Key()),
			zap.Error(err))
	}
}

// Register subscribes the engine to mutation events on the bus. Every
// payload published under the given topics must implement
// Invalidatable.
func (e *Engine) Register(bus *util.EventBus, topics ...string) {
	for _, topic := range topics {
		bus.Subscribe(topic, func(ctx context.Context, event util.Event) error {
			ent, ok := event.Payload.(Invalidatable)
			if !ok {
				logger.Warn("Mutation event payload cannot invalidate the cache",
					zap.String("eventType", event.Type))
				return nil
			}
			e.Invalidate(ctx, ent)
			return nil
		})
	}
}
