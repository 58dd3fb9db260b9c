package colset

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"sqlforge/internal/record"
)

// prepareCache is a read-through memo of Prepare results keyed by a content
// hash of the record's canonical JSON encoding. It is purely an
// optimization: records that fail to encode are simply not cached, and
// callers always receive a private copy of the value slice.
type prepareCache struct {
	entries sync.Map // uint64 -> []any
}

func newPrepareCache() *prepareCache {
	return &prepareCache{}
}

func (c *prepareCache) key(rec *record.Record) (uint64, bool) {
	data, err := rec.MarshalJSON()
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
}

func (c *prepareCache) get(rec *record.Record) ([]any, bool) {
	key, ok := c.key(rec)
	if !ok {
		return nil, false
	}
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	cached := v.([]any)
	out := make([]any, len(cached))
	copy(out, cached)
	return out, true
}

func (c *prepareCache) put(rec *record.Record, values []any) {
	key, ok := c.key(rec)
	if !ok {
		return
	}
	stored := make([]any, len(values))
	copy(stored, values)
	c.entries.Store(key, stored)
}
