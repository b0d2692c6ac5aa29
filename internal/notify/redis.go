package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces the per-session pub/sub channels.
const ChannelPrefix = "draft.events."

type RedisPublisher struct {
	rdb *redis.Client
}

// ConnectRedis dials Redis and pings it once so a bad address fails at
// startup instead of on the first draft event.
func ConnectRedis(ctx context.Context, addr string) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis at %s: %w", addr, err)
	}
	return &RedisPublisher{rdb: rdb}, nil
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal draft event: %w", err)
	}
	return p.rdb.Publish(ctx, ChannelPrefix+evt.SessionID, payload).Err()
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }
