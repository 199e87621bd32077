package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis. The dial timeout bounds connection setup; the
// op timeout bounds individual reads and writes. Non-positive values get
// short defaults so a misconfigured deployment cannot hang requests.
func NewRedis(addr string, dialTimeout, opTimeout time.Duration) *Redis {
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}
	if opTimeout <= 0 {
		opTimeout = time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}
