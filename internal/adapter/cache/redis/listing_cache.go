package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ListingCache is a read-through cache in front of a ListingStore. Single
// listings are cached by id; searches always go to the store. Cache errors
// are logged and never fail a call.
//
// Only GetListing fills the cache: write results lack the owner sub-record,
// so writes just drop the entry.
type ListingCache struct {
	usecase.ListingStore
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewListingCache(store usecase.ListingStore, client *redis.Client, ttl time.Duration, log *logger.Logger) *ListingCache {
	return &ListingCache{ListingStore: store, client: client, ttl: ttl, logger: log}
}

func listingKey(id string) string { return "listing:" + id }

func (c *ListingCache) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	if l, ok := c.get(ctx, id); ok {
		return l, nil
	}
	l, err := c.ListingStore.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, l)
	return l, nil
}

func (c *ListingCache) CreateListing(ctx context.Context, in domain.CreateInput) (*domain.Listing, error) {
	l, err := c.ListingStore.CreateListing(ctx, in)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, l.ID)
	return l, nil
}

// UpdateListing drops the cached copy before and after the write. A read
// racing the update may refill the entry in between.
func (c *ListingCache) UpdateListing(ctx context.Context, in domain.UpdateInput) (*domain.Listing, error) {
	c.invalidate(ctx, in.ID)
	l, err := c.ListingStore.UpdateListing(ctx, in)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, in.ID)
	return l, nil
}

func (c *ListingCache) DeleteListing(ctx context.Context, id string) error {
	c.invalidate(ctx, id)
	return c.ListingStore.DeleteListing(ctx, id)
}

func (c *ListingCache) get(ctx context.Context, id string) (*domain.Listing, bool) {
	data, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("ListingCache.get: cache read failed", zap.String("listing_id", id), zap.Error(err))
		}
		return nil, false
	}
	var l domain.Listing
	if err := json.Unmarshal(data, &l); err != nil {
		c.logger.Warn("ListingCache.get: corrupt cache entry", zap.String("listing_id", id), zap.Error(err))
		c.invalidate(ctx, id)
		return nil, false
	}
	return &l, true
}

func (c *ListingCache) set(ctx context.Context, l *domain.Listing) {
	data, err := json.Marshal(l)
	if err != nil {
		c.logger.Warn("ListingCache.set: encode failed", zap.String("listing_id", l.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, listingKey(l.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("ListingCache.set: cache write failed", zap.String("listing_id", l.ID), zap.Error(err))
	}
}

func (c *ListingCache) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, listingKey(id)).Err(); err != nil {
		c.logger.Warn("ListingCache.invalidate: cache delete failed", zap.String("listing_id", id), zap.Error(err))
	}
}
