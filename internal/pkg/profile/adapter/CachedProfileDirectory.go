package adapter

import (
	"context"
	"time"

	cacheport "github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/cache/port"
	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/profile/port"
)

const defaultNameTTL = 10 * time.Minute

// CachedProfileDirectory memoizes display-name lookups in the cache port.
// Cache failures degrade to the underlying directory; a directory failure
// degrades to the raw email, so the inbox read path never errors on names.
type CachedProfileDirectory struct {
	next  port.Directory
	cache cacheport.Cache
	ttl   time.Duration
}

func NewCachedProfileDirectory(next port.Directory, cache cacheport.Cache) *CachedProfileDirectory {
	return &CachedProfileDirectory{next: next, cache: cache, ttl: defaultNameTTL}
}

var _ port.Directory = (*CachedProfileDirectory)(nil)

func (d *CachedProfileDirectory) DisplayName(ctx context.Context, role chat.Role, email string) (string, error) {
	email = chat.NormalizeEmail(email)
	key := "profile:name:" + string(role) + ":" + email

	if d.cache != nil {
		if name, err := d.cache.Get(ctx, key); err == nil && name != "" {
			return name, nil
		}
	}

	name, err := d.next.DisplayName(ctx, role, email)
	if err != nil || name == "" {
		return email, nil
	}

	if d.cache != nil {
		_ = d.cache.Set(ctx, key, name, d.ttl)
	}
	return name, nil
}
