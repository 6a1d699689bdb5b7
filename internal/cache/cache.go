package cache

import (
	"context"
	"time"
)

// Well-known snapshot entries. Payout mutations invalidate the profile
// and wallet entries because a successful payout changes the balance
// both render from.
const (
	KeyMerchantProfile = "merchant-profile"
	KeyWalletDetails   = "wallet-details"
	KeyPaymentsList    = "payments-list"
)

// PayoutDetailKey names the cached detail entry for a single payout.
func PayoutDetailKey(id string) string {
	return "payout:" + id
}

// Cache stores fetched snapshots so list and detail screens can render
// without refetching. Invalidation marks entries stale; the next read
// misses and refetches.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}
