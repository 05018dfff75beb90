package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/redis/go-redis/v9"
)

const (
	propertyKeyPrefix   = "property:"
	generationKeyPrefix  = "property_gen:"
)

// setIfGeneration stores KEYS[1] only while KEYS[2] still holds ARGV[1]. A
// missing generation counts as 0.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if not current then current = '0' end
if current ~= ARGV[1] then return 0 end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// PropertyCache keeps property details in Redis. A miss returns
// domain.ErrNotFound.
type PropertyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPropertyCache(client *redis.Client, ttl time.Duration) *PropertyCache {
	return &PropertyCache{client: client, ttl: ttl}
}

func (c *PropertyCache) GetProperty(ctx context.Context, id string) (*domain.PropertyDetails, error) {
	data, err := c.client.Get(ctx, propertyKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: property %s not cached", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("cache get property %s: %w", id, err)
	}
	var details domain.PropertyDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("cache decode property %s: %w", id, err)
	}
	return &details, nil
}

func (c *PropertyCache) Generation(ctx context.Context, id string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKeyPrefix+id).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache get generation %s: %w", id, err)
	}
	return gen, nil
}

// SetProperty stores details unless the property was invalidated after
// generation was read.
func (c *PropertyCache) SetProperty(ctx context.Context, details *domain.PropertyDetails, generation int64) error {
	id := details.Property.ID
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("cache encode property %s: %w", id, err)
	}
	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{propertyKeyPrefix + id, generationKeyPrefix + id},
		generation, data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("cache set property %s: %w", id, err)
	}
	if stored == 0 {
		return fmt.Errorf("%w: property %s changed since generation %d", domain.ErrConflict, id, generation)
	}
	return nil
}

// DeleteProperty drops the cached details and advances the generation so
// fills that loaded the old state are refused.
func (c *PropertyCache) DeleteProperty(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKeyPrefix+id)
		pipe.Del(ctx, propertyKeyPrefix+id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate property %s: %w", id, err)
	}
	return nil
}
