// pkg/apt/redis.go

package apt

import (
	"context"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisAddr is where the distribution's redis-server listens.
const DefaultRedisAddr = "127.0.0.1:6379"

// ProbeRedis pings the freshly installed cache. Callers treat a failure as a
// warning: bench starts its own redis instances.
func ProbeRedis(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultRedisAddr
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
		MaxRetries:  1,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return cerr.Wrapf(err, "redis at %s did not answer PING", addr)
	}
	return nil
}
