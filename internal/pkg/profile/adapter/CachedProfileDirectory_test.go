package adapter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheport "github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/cache/port"
	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
)

// mapCache is an in-memory cache port for tests.
type mapCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string]string)}
}

func (c *mapCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *mapCache) Del(ctx context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.values[k]; ok {
			delete(c.values, k)
			n++
		}
	}
	return n, nil
}

func (c *mapCache) Ping(ctx context.Context) error { return nil }
func (c *mapCache) Close() error                   { return nil }

// countingDirectory counts lookups against a fixed name table.
type countingDirectory struct {
	names map[string]string
	fail  bool
	calls int
}

func (d *countingDirectory) DisplayName(ctx context.Context, role chat.Role, email string) (string, error) {
	d.calls++
	if d.fail {
		return "", errors.New("profile lookup failed")
	}
	if name, ok := d.names[email]; ok {
		return name, nil
	}
	return email, nil
}

func TestCachedProfileDirectory_MemoizesHits(t *testing.T) {
	source := &countingDirectory{names: map[string]string{"bob@farm.com": "Bob's Farm"}}
	cached := NewCachedProfileDirectory(source, newMapCache())

	name, err := cached.DisplayName(context.Background(), chat.RoleFarmer, "Bob@Farm.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob's Farm", name)

	// Second lookup, different casing, served from cache.
	name, err = cached.DisplayName(context.Background(), chat.RoleFarmer, "bob@farm.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob's Farm", name)
	assert.Equal(t, 1, source.calls)
}

func TestCachedProfileDirectory_FallsBackToEmail(t *testing.T) {
	source := &countingDirectory{fail: true}
	cached := NewCachedProfileDirectory(source, newMapCache())

	name, err := cached.DisplayName(context.Background(), chat.RoleCustomer, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", name)
}

func TestCachedProfileDirectory_WorksWithoutCache(t *testing.T) {
	source := &countingDirectory{names: map[string]string{"bob@farm.com": "Bob's Farm"}}
	cached := NewCachedProfileDirectory(source, nil)

	name, err := cached.DisplayName(context.Background(), chat.RoleFarmer, "bob@farm.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob's Farm", name)

	_, _ = cached.DisplayName(context.Background(), chat.RoleFarmer, "bob@farm.com")
	assert.Equal(t, 2, source.calls)
}
