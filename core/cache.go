package core

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// StatusCache is an optional read-through cache over derived channel
// status. It never computes anything itself — callers populate it with a
// reducer-equivalent ChannelStatus and must call Invalidate on every write
// touching the channel's event streams.
type StatusCache struct {
	cache *lru.Cache[ChannelKey, *ChannelStatus]
}

// NewStatusCache builds a cache holding up to size entries. size <= 0
// disables caching (Get always misses, Put is a no-op).
func NewStatusCache(size int) *StatusCache {
	if size <= 0 {
		return &StatusCache{}
	}
	c, err := lru.New[ChannelKey, *ChannelStatus](size)
	if err != nil {
		// Only returns an error for a non-positive size, already excluded above.
		panic(err)
	}
	return &StatusCache{cache: c}
}

// Get returns the cached status for key, if present.
func (s *StatusCache) Get(key ChannelKey) (*ChannelStatus, bool) {
	if s == nil || s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

// Put stores status for key, replacing any existing entry.
func (s *StatusCache) Put(key ChannelKey, status *ChannelStatus) {
	if s == nil || s.cache == nil {
		return
	}
	s.cache.Add(key, status)
}

// Invalidate drops any cached status for key. Call this after any write to
// state_updates, channel_events, or channel_intents for that channel.
func (s *StatusCache) Invalidate(key ChannelKey) {
	if s == nil || s.cache == nil {
		return
	}
	s.cache.Remove(key)
}
