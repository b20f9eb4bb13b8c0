package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ConnectRedis opens and verifies a Redis connection
func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// BalanceCache is a read cache over account balances. It is advisory
// only: processors invalidate entries after commit, reads fall back to
// the database on a miss. A nil *BalanceCache is a no-op, so the engine
// runs without Redis.
type BalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBalanceCache creates a balance cache with the given entry TTL
func NewBalanceCache(rdb *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{rdb: rdb, ttl: ttl}
}

func balanceKey(ownerID int64, accountKey string) string {
	return fmt.Sprintf("balance:%d:%s", ownerID, accountKey)
}

// Get returns the cached balance and whether it was present
func (c *BalanceCache) Get(ctx context.Context, ownerID int64, accountKey string) (decimal.Decimal, bool) {
	if c == nil || c.rdb == nil {
		return decimal.Zero, false
	}

	val, err := c.rdb.Get(ctx, balanceKey(ownerID, accountKey)).Result()
	if err != nil {
		return decimal.Zero, false
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		log.WithFields(log.Fields{
			"ownerID":    ownerID,
			"accountKey": accountKey,
			"value":      val,
		}).Warn("Discarding unparseable cached balance")
		return decimal.Zero, false
	}

	return balance, true
}

// Set stores a balance; cache errors are logged, never surfaced
func (c *BalanceCache) Set(ctx context.Context, ownerID int64, accountKey string, balance decimal.Decimal) {
	if c == nil || c.rdb == nil {
		return
	}

	if err := c.rdb.Set(ctx, balanceKey(ownerID, accountKey), balance.String(), c.ttl).Err(); err != nil {
		log.WithFields(log.Fields{
			"ownerID":    ownerID,
			"accountKey": accountKey,
		}).WithError(err).Warn("Failed to cache balance")
	}
}

// Invalidate drops a cached balance after a committed mutation
func (c *BalanceCache) Invalidate(ctx context.Context, ownerID int64, accountKey string) {
	if c == nil || c.rdb == nil {
		return
	}

	if err := c.rdb.Del(ctx, balanceKey(ownerID, accountKey)).Err(); err != nil {
		log.WithFields(log.Fields{
			"ownerID":    ownerID,
			"accountKey": accountKey,
		}).WithError(err).Warn("Failed to invalidate cached balance")
	}
}
