package role

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/deskhub/deskhub/internal/db/models"
)

const (
	// DefaultCacheSize is used when the configured size is not positive.
	DefaultCacheSize = 1024
	// DefaultCacheTTL is used when the configured ttl is not positive.
	DefaultCacheTTL = 30 * time.Second
)

var cacheRequests = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "deskhub_role_cache_requests_total",
		Help: "Role cache lookups, differentiated by hit or miss.",
	},
	[]string{"result"},
)

// Cache keeps recently used roles in memory in front of a Repository.
// Writes going through the cache invalidate what they touch. Writes made by other
// processes are only seen after the ttl, so the cache is for single replica setups.
type Cache struct {
	next  Repository
	lru   *lru.LRU[string, models.Role]
	group singleflight.Group
	mu    sync.Mutex
	// gen is bumped on every write. Loads are keyed by it, so a load started
	// before a write is neither stored nor shared with callers arriving after it.
	gen atomic.Uint64
}

// NewCache wraps next with an expirable LRU.
func NewCache(next Repository, size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}

	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Cache{
		next: next,
		lru:  lru.NewLRU[string, models.Role](size, nil, ttl),
	}
}

func cacheKey(tenantID, id string) string {
	return tenantID + "/" + id
}

func cloneRole(r models.Role) *models.Role {
	r.Permissions = r.Permissions.Clone()

	return &r
}

// Get returns the role from memory or loads it once for all concurrent callers.
func (c *Cache) Get(ctx context.Context, tenantID, id string) (*models.Role, error) {
	key := cacheKey(tenantID, id)

	if r, ok := c.lru.Get(key); ok {
		cacheRequests.WithLabelValues("hit").Inc()
		return cloneRole(r), nil
	}

	cacheRequests.WithLabelValues("miss").Inc()

	c.mu.Lock()
	gen := c.gen.Load()
	c.mu.Unlock()

	ch := c.group.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		// detached so one caller giving up does not fail the others
		r, err := c.next.Get(context.WithoutCancel(ctx), tenantID, id)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen.Load() == gen {
			c.lru.Add(key, *r)
		}
		c.mu.Unlock()

		return *r, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return cloneRole(res.Val.(models.Role)), nil //nolint:forcetypeassert
	}
}

// List is not cached.
func (c *Cache) List(ctx context.Context, tenantID string) ([]models.Role, error) {
	return c.next.List(ctx, tenantID)
}

// Default is not cached.
func (c *Cache) Default(ctx context.Context, tenantID string) (*models.Role, error) {
	return c.next.Default(ctx, tenantID)
}

// Create stores the role and drops cached roles of the tenant if the default moved.
func (c *Cache) Create(ctx context.Context, tenantID string, in CreateInput) (*models.Role, error) {
	r, err := c.next.Create(ctx, tenantID, in)
	if err != nil {
		return nil, err
	}

	if r.IsDefault {
		c.purgeTenant(tenantID)
	}

	return r, nil
}

// Update stores the change and invalidates the role, or the whole tenant if the default moved.
func (c *Cache) Update(ctx context.Context, tenantID, id string, in UpdateInput) (*models.Role, error) {
	r, err := c.next.Update(ctx, tenantID, id, in)

	if in.IsDefault != nil {
		c.purgeTenant(tenantID)
	} else {
		c.invalidate(tenantID, id)
	}

	if err != nil {
		return nil, err
	}

	return r, nil
}

// Delete removes the role and its cached copy.
func (c *Cache) Delete(ctx context.Context, tenantID, id string) error {
	err := c.next.Delete(ctx, tenantID, id)

	c.invalidate(tenantID, id)

	return err
}

func (c *Cache) invalidate(tenantID, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen.Add(1)
	c.lru.Remove(cacheKey(tenantID, id))
}

func (c *Cache) purgeTenant(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen.Add(1)

	prefix := tenantID + "/"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

// Len returns the number of cached roles.
func (c *Cache) Len() int {
	return c.lru.Len()
}
