package cache

import "sync"

type InMemoryCache struct {
	lock    sync.RWMutex
	entries map[string][]byte
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string][]byte),
	}
}

func (c *InMemoryCache) Set(key string, value []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries[key] = append([]byte{}, value...)
	return nil
}

func (c *InMemoryCache) Get(key string) ([]byte, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	value, ok := c.entries[key]
	if !ok {
		return nil, &ErrMiss{}
	}
	return append([]byte{}, value...), nil
}
