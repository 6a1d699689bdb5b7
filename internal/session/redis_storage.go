package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKey = "session:v1"

	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldIdentity     = "identity"
	fieldExpiresAt    = "expires_at"
)

// RedisStorage keeps the session snapshot in a single Redis hash, so
// save and clear are naturally atomic across all four fields.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage builds a Redis-backed session store.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

// Load reads the persisted snapshot; a missing hash yields a zero
// snapshot without error.
func (s *RedisStorage) Load(ctx context.Context) (Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 {
		return Snapshot{}, nil
	}

	snap := Snapshot{
		AccessToken:  fields[fieldAccessToken],
		RefreshToken: fields[fieldRefreshToken],
	}
	if raw, ok := fields[fieldIdentity]; ok && raw != "" {
		snap.IdentityJSON = []byte(raw)
	}
	if raw, ok := fields[fieldExpiresAt]; ok && raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Snapshot{}, fmt.Errorf("load session expiry: %w", err)
		}
		snap.ExpiresAt = ms
	}
	return snap, nil
}

// Save writes all four fields in one HSET.
func (s *RedisStorage) Save(ctx context.Context, snap Snapshot) error {
	err := s.client.HSet(ctx, sessionKey,
		fieldAccessToken, snap.AccessToken,
		fieldRefreshToken, snap.RefreshToken,
		fieldIdentity, string(snap.IdentityJSON),
		fieldExpiresAt, strconv.FormatInt(snap.ExpiresAt, 10),
	).Err()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the whole hash in one DEL.
func (s *RedisStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
