package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel prefix: changes.<entity>, one channel per entity so viewers only
// wake for the collection they render.
const channelPrefix = "changes."

// RedisPublisher fans committed changes out over redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedis(addr string) *RedisPublisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, ch Change) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, channelPrefix+ch.Entity, payload).Err()
}

// Subscribe streams changes for one entity until ctx is cancelled. Messages
// that fail to decode are dropped.
func (p *RedisPublisher) Subscribe(ctx context.Context, entity string) (<-chan Change, error) {
	sub := p.rdb.Subscribe(ctx, channelPrefix+entity)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Change)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var ch Change
				if err := json.Unmarshal([]byte(msg.Payload), &ch); err != nil {
					continue
				}
				select {
				case out <- ch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }
