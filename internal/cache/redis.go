package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const tagsKey = "tags:all"

// Client wraps redis for the read-side caches. A nil *Client is valid and
// turns every call into a no-op, so redis stays optional.
type Client struct {
	Cli    *redis.Client
	tagTTL time.Duration
}

func NewRedis(addr, password string, db int, tagTTL time.Duration) (*Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Client{Cli: r, tagTTL: tagTTL}, nil
}

func (c *Client) Close() error {
	if c == nil || c.Cli == nil {
		return nil
	}
	return c.Cli.Close()
}

// GetTags returns the cached tag list and whether it was present. Cache
// failures read as misses; the store stays authoritative.
func (c *Client) GetTags(ctx context.Context) ([]string, bool) {
	if c == nil || c.Cli == nil {
		return nil, false
	}
	raw, err := c.Cli.Get(ctx, tagsKey).Result()
	if err != nil {
		return nil, false
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, false
	}
	return tags, true
}

func (c *Client) SetTags(ctx context.Context, tags []string) {
	if c == nil || c.Cli == nil {
		return
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return
	}
	_ = c.Cli.Set(ctx, tagsKey, raw, c.tagTTL).Err()
}

func (c *Client) InvalidateTags(ctx context.Context) {
	if c == nil || c.Cli == nil {
		return
	}
	_ = c.Cli.Del(ctx, tagsKey).Err()
}
