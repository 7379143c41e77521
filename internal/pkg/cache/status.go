package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/redis/go-redis/v9"
)

// EventSetVersion identifies one exact state of an integration's event log.
// Any appended event changes the count or the latest timestamp.
type EventSetVersion struct {
	Count    int64
	LatestAt time.Time
}

func (v EventSetVersion) String() string {
	return fmt.Sprintf("%d-%d", v.Count, v.LatestAt.UTC().UnixNano())
}

// StatusCache caches derived workflow statuses per integration and event-set version.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &StatusCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *StatusCache) generateKey(integrationID, scope string, version EventSetVersion) string {
	return fmt.Sprintf("insights:statuses:%s:%s:%s", integrationID, scope, version)
}

// Get returns nil without error on a miss.
func (c *StatusCache) Get(ctx context.Context, integrationID, scope string, version EventSetVersion) (map[string]insights.WorkflowStatus, error) {
	data, err := c.client.Get(ctx, c.generateKey(integrationID, scope, version)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var statuses map[string]insights.WorkflowStatus
	if err := json.Unmarshal(data, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *StatusCache) Set(ctx context.Context, integrationID, scope string, version EventSetVersion, statuses map[string]insights.WorkflowStatus) error {
	data, err := json.Marshal(statuses)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.generateKey(integrationID, scope, version), data, c.ttl).Err()
}

// Invalidate drops every cached version for the integration.
func (c *StatusCache) Invalidate(ctx context.Context, integrationID string) error {
	pattern := fmt.Sprintf("insights:statuses:%s:*", integrationID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}

	return iter.Err()
}
