package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/UmarSidiki/taxibooking/pkg/redis"
)

const (
	ridesKeyPrefix = "dispatch:rides:"

	// Offers older than this are stale; the DB fallback repopulates the
	// view on the next listing.
	ridesTTL = 24 * time.Hour
)

// RedisRideCache keeps each partner's offered rides in a Redis hash keyed
// by booking ID, so a ride can be pulled from every losing partner's view
// the moment someone accepts it.
type RedisRideCache struct {
	client *redis.Client
}

// NewRedisRideCache creates a new ride cache
func NewRedisRideCache(client *redis.Client) *RedisRideCache {
	return &RedisRideCache{client: client}
}

func ridesKey(partnerID uuid.UUID) string {
	return ridesKeyPrefix + partnerID.String()
}

// Add offers a ride to a partner.
func (c *RedisRideCache) Add(ctx context.Context, partnerID uuid.UUID, ride AvailableRide) error {
	payload, err := json.Marshal(ride)
	if err != nil {
		return err
	}

	key := ridesKey(partnerID)
	if err := c.client.RetryableHSet(ctx, key, ride.BookingID.String(), payload); err != nil {
		return err
	}
	return c.client.RetryableExpire(ctx, key, ridesTTL)
}

// Remove withdraws a ride from a partner's view.
func (c *RedisRideCache) Remove(ctx context.Context, partnerID, bookingID uuid.UUID) error {
	return c.client.RetryableHDel(ctx, ridesKey(partnerID), bookingID.String())
}

// List returns the rides currently offered to a partner.
func (c *RedisRideCache) List(ctx context.Context, partnerID uuid.UUID) ([]AvailableRide, error) {
	entries, err := c.client.RetryableHGetAll(ctx, ridesKey(partnerID))
	if err != nil {
		return nil, err
	}

	rides := make([]AvailableRide, 0, len(entries))
	for _, raw := range entries {
		var ride AvailableRide
		if err := json.Unmarshal([]byte(raw), &ride); err != nil {
			// A corrupt entry hides one offer, not the whole list.
			continue
		}
		rides = append(rides, ride)
	}
	return rides, nil
}
