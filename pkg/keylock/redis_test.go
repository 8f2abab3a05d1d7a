package keylock

import (
	"context"
	"sync"
	"time"
)

// memoryRedis is an in-process stand-in for the subset of xredis.Client the
// locker uses. TTLs are not enforced; tests call expire explicitly.
type memoryRedis struct {
	mutex  sync.Mutex
	values map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: make(map[string]string)}
}

func (m *memoryRedis) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.values[key]; ok {
		return false, nil
	}

	m.values[key] = value
	return true, nil
}

func (m *memoryRedis) DelIfEqual(ctx context.Context, key, value string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.values[key] != value {
		return false, nil
	}

	delete(m.values, key)
	return true, nil
}

func (m *memoryRedis) Get(ctx context.Context, key string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.values[key], nil
}

func (m *memoryRedis) Close() error {
	return nil
}

func (m *memoryRedis) expire(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.values, key)
}
