package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"hornethelper/internal/model"
)

// RecommendationCache keeps video suggestions per major so repeat lookups skip the external service
type RecommendationCache interface {
	SetVideos(ctx context.Context, major string, videos []model.Video) error
	GetVideos(ctx context.Context, major string) ([]model.Video, error)
}

type recommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecommendationCache creates a new recommendation cache
func NewRecommendationCache(client *redis.Client, ttl time.Duration) RecommendationCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &recommendationCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *recommendationCache) key(major string) string {
	return fmt.Sprintf("videos:%s", strings.ToLower(strings.TrimSpace(major)))
}

func (c *recommendationCache) SetVideos(ctx context.Context, major string, videos []model.Video) error {
	data, err := json.Marshal(videos)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(major), data, c.ttl).Err()
}

// GetVideos returns nil on a miss
func (c *recommendationCache) GetVideos(ctx context.Context, major string) ([]model.Video, error) {
	data, err := c.client.Get(ctx, c.key(major)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var videos []model.Video
	if err := json.Unmarshal([]byte(data), &videos); err != nil {
		return nil, err
	}
	return videos, nil
}
