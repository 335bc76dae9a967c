// api/cache/instance.go
package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	logger "github.com/mapcanvas/atlas/api/logging"
)

// Describable is implemented by entities whose identifying attributes
// can be cached for cheap identity checks.
type Describable interface {
	Kind() string
	Key() string
	IdentifyingAttributes() map[string]string
}

// AttributeKey is the store key holding an instance's identifying
// attributes.
func AttributeKey(kind, id string) string {
	return fmt.Sprintf("instance:%s:%s:attrs", kind, id)
}

// InstanceCache caches the identifying attributes of single entities
// so identity verification does not need a storage round trip.
type InstanceCache struct {
	store Store
	ttl   time.Duration
}

// Attributes returns the entity's identifying attributes, preferring
// the cached copy. On a miss the attributes are read from the entity
// itself; the backfill write is staged on buf when one is supplied, or
// written through immediately otherwise.
func (ic *InstanceCache) Attributes(ctx context.Context, ent Describable, buf *Buffer) map[string]string {
	key := AttributeKey(ent.Kind(), ent.Key())

	attrs, err := ic.store.GetAttributes(ctx, key)
	if err != nil {
		logger.Warn("Instance attribute lookup failed, reading from object",
			zap.String("key", key), zap.Error(err))
	}
	if len(attrs) > 0 {
		return attrs
	}

	attrs = ent.IdentifyingAttributes()
	if buf != nil {
		buf.StageAttributes(key, attrs)
	} else if err := ic.store.SetAttributes(ctx, key, attrs, ic.ttl); err != nil {
		logger.Warn("Failed to backfill instance attributes", zap.String("key", key), zap.Error(err))
	}
	return attrs
}
