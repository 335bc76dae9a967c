// api/cache/buffer.go
package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	logger "github.com/mapcanvas/atlas/api/logging"
)

type stagedEntry struct {
	key     string
	metakey string
	entry   *Entry
}

type stagedAttributes struct {
	key   string
	attrs map[string]string
}

// Buffer is a request-scoped staging area for cache writes. Assembling
// one response may cache the response itself plus the identifying
// attributes of every related entity it touched; staging them here
// means the store is written once, at request end, instead of once per
// sub-resource. A buffer that is never flushed leaves no trace in the
// store.
type Buffer struct {
	store   Store
	ttl     time.Duration
	entries []stagedEntry
	attrs   []stagedAttributes
}

func NewBuffer(store Store, ttl time.Duration) *Buffer {
	return &Buffer{store: store, ttl: ttl}
}

// StageEntry queues a response entry write. The key is tracked under
// metakey in the same flush, with the same TTL, so the entry is never
// present without being invalidatable.
func (b *Buffer) StageEntry(key, metakey string, entry *Entry) {
	b.entries = append(b.entries, stagedEntry{key: key, metakey: metakey, entry: entry})
}

// StageAttributes queues an instance-attribute write.
func (b *Buffer) StageAttributes(key string, attrs map[string]string) {
	b.attrs = append(b.attrs, stagedAttributes{key: key, attrs: attrs})
}

// Flush performs all staged writes in one pass and empties the buffer.
// Failures are logged and skipped; a missed write only costs a future
// cache miss.
func (b *Buffer) Flush(ctx context.Context) {
	for _, staged := range b.entries {
		if err := b.store.SetEntry(ctx, staged.key, staged.entry, b.ttl); err != nil {
			logger.Warn("Failed to flush cached response", zap.String("key", staged.key), zap.Error(err))
			continue
		}
		if err := b.store.TrackKey(ctx, staged.metakey, staged.key, b.ttl); err != nil {
			logger.Warn("Failed to track cached response key",
				zap.String("key", staged.key),
				zap.String("metakey", staged.metakey),
				zap.Error(err))
		}
	}
	for _, staged := range b.attrs {
		if err := b.store.SetAttributes(ctx, staged.key, staged.attrs, b.ttl); err != nil {
			logger.Warn("Failed to flush instance attributes", zap.String("key", staged.key), zap.Error(err))
		}
	}
	b.entries = nil
	b.attrs = nil
}

// Discard drops all staged writes without touching the store.
func (b *Buffer) Discard() {
	b.entries = nil
	b.attrs = nil
}

// Len reports how many writes are staged.
func (b *Buffer) Len() int {
	return len(b.entries) + len(b.attrs)
}
