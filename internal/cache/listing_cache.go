package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"tradepost/internal/models"
)

// ListingCache is a read cache for single listings. A nil *ListingCache is
// valid and disables caching entirely.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListingCache(addr string, ttl time.Duration) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &ListingCache{client: client, ttl: ttl}, nil
}

func key(listingID string) string { return "listing:" + listingID }

// Get returns the cached listing, or nil on a miss. Cache errors are
// returned so the caller can log them, but a miss is not an error.
func (c *ListingCache) Get(ctx context.Context, listingID string) (*models.Listing, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, key(listingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var listing models.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *ListingCache) Set(ctx context.Context, listing *models.Listing) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(listing.ListingID), data, c.ttl).Err()
}

// Invalidate drops the cached entry after any write to the listing, so the
// next read observes the write.
func (c *ListingCache) Invalidate(ctx context.Context, listingID string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, key(listingID)).Err()
}
