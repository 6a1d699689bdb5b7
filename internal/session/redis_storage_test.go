package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStorage(t *testing.T) (*RedisStorage, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return NewRedisStorage(client), cleanup
}

func TestRedisStorageRoundTrip(t *testing.T) {
	storage, cleanup := newRedisStorage(t)
	defer cleanup()

	ctx := context.Background()
	want := Snapshot{
		AccessToken:  "tok-1",
		RefreshToken: "ref-1",
		IdentityJSON: []byte(`{"merchant_id":"m-1"}`),
		ExpiresAt:    time.Now().Add(time.Hour).UnixMilli(),
	}

	if err := storage.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Fatalf("token mismatch: %+v", got)
	}
	if string(got.IdentityJSON) != string(want.IdentityJSON) {
		t.Fatalf("identity mismatch: %s", got.IdentityJSON)
	}
	if got.ExpiresAt != want.ExpiresAt {
		t.Fatalf("expiry mismatch: %d != %d", got.ExpiresAt, want.ExpiresAt)
	}
}

func TestRedisStorageLoadMissingYieldsEmpty(t *testing.T) {
	storage, cleanup := newRedisStorage(t)
	defer cleanup()

	snap, err := storage.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !snap.Empty() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestRedisStorageClearRemovesAllFields(t *testing.T) {
	storage, cleanup := newRedisStorage(t)
	defer cleanup()

	ctx := context.Background()
	_ = storage.Save(ctx, Snapshot{
		AccessToken:  "tok-1",
		IdentityJSON: []byte(`{"id":1}`),
		ExpiresAt:    time.Now().Add(time.Hour).UnixMilli(),
	})

	if err := storage.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	// The clear is group-atomic: no field survives on its own.
	snap, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !snap.Empty() || snap.AccessToken != "" || snap.ExpiresAt != 0 || snap.IdentityJSON != nil {
		t.Fatalf("expected fully cleared snapshot, got %+v", snap)
	}
}

func TestRedisStorageSaveOverwritesPreviousSession(t *testing.T) {
	storage, cleanup := newRedisStorage(t)
	defer cleanup()

	ctx := context.Background()
	_ = storage.Save(ctx, Snapshot{AccessToken: "old", RefreshToken: "old-ref",
		IdentityJSON: []byte(`{"merchant_id":"m-old"}`), ExpiresAt: 1})
	_ = storage.Save(ctx, Snapshot{AccessToken: "new", RefreshToken: "new-ref",
		IdentityJSON: []byte(`{"merchant_id":"m-new"}`), ExpiresAt: 2})

	got, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != "new" || got.ExpiresAt != 2 {
		t.Fatalf("expected overwrite, got %+v", got)
	}
}
