package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 1 * time.Hour

// ListingCache keeps serialized listings under "listing:{id}". A miss
// is (nil, nil) so callers fall through to the database.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListingCache(addr, password string, db int, ttl time.Duration) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ListingCache{client: client, ttl: ttl}, nil
}

func (c *ListingCache) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, "listing:"+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *ListingCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "listing:"+listing.ID, data, c.ttl).Err()
}

func (c *ListingCache) DeleteListing(ctx context.Context, id string) error {
	return c.client.Del(ctx, "listing:"+id).Err()
}

func (c *ListingCache) Close() error {
	return c.client.Close()
}
