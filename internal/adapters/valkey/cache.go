package valkey

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("valkey: cache miss")

// KeyPrefix namespaces every key written by this service, so one Valkey
// can be shared with other tenants.
const KeyPrefix = "hongnam:"

// Cache implements ports.CacheService on a shared Valkey server. Cached
// views are keyed by store revision, so entries never need explicit
// invalidation and simply age out.
type Cache struct {
	client valkey.Client
	prefix string
}

// New connects to the Valkey server at addr.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		ClientName:  "hongnam-api",
		Dialer:      net.Dialer{Timeout: 3 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	return &Cache{client: client, prefix: KeyPrefix}, nil
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get returns the bytes under key or ErrMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build()).AsBytes()
	switch {
	case valkey.IsValkeyNil(err):
		return nil, ErrMiss
	case err != nil:
		return nil, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return b, nil
}

// Set stores value under key. A non-positive ttl stores without expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	set := c.client.B().Set().Key(c.key(key)).Value(valkey.BinaryString(value))
	var err error
	if ttlSeconds > 0 {
		err = c.client.Do(ctx, set.Ex(time.Duration(ttlSeconds)*time.Second).Build()).Error()
	} else {
		err = c.client.Do(ctx, set.Build()).Error()
	}
	if err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(c.key(key)).Build()).Error()
}

// Ping checks that the server answers. Used by the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}
