package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hornethelper/internal/model"
)

// SessionCache is a read-through cache of single session documents
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error)
	Delete(ctx context.Context, kind model.SessionKind, id string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    10 * time.Minute,
	}
}

func (c *sessionCache) key(kind model.SessionKind, id string) string {
	return fmt.Sprintf("session:%s:%s", kind, id)
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.Kind, session.ID), data, c.ttl).Err()
}

// Get returns nil on a miss
func (c *sessionCache) Get(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.key(kind, id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	session.Normalize()
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, kind model.SessionKind, id string) error {
	return c.client.Del(ctx, c.key(kind, id)).Err()
}
