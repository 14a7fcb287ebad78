package cart

import (
	"context"
	"testing"
	"time"

	"rozes-gallery/internal/config"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis, context.Context) {
	t.Helper()
	mr := miniredis.RunT(t)
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	client, err := redis.Connect(&config.RedisConfig{Host: "127.0.0.1", Port: mr.Port()}, log)
	if err != nil {
		t.Fatalf("redis connect failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, log, time.Hour), mr, context.Background()
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, _, ctx := newTestStore(t)
	sessionID := uuid.New().String()

	c := New()
	c.AddItem(LineItem{ProductID: uuid.New(), Title: "Bouquet", Price: decimal.RequireFromString("45.50"), InStock: true}, 2)

	store.Save(ctx, sessionID, c)

	loaded, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ItemCount() != 2 {
		t.Fatalf("expected item count 2, got %d", loaded.ItemCount())
	}
	if !loaded.Subtotal().Equal(decimal.RequireFromString("91.00")) {
		t.Fatalf("expected subtotal 91.00, got %s", loaded.Subtotal())
	}
}

func TestStore_LoadMissingGivesEmptyCart(t *testing.T) {
	store, _, ctx := newTestStore(t)

	c, err := store.Load(ctx, "absent-session")
	if err != nil {
		t.Fatalf("expected empty cart without error, got %v", err)
	}
	if c.ItemCount() != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestStore_Clear(t *testing.T) {
	store, mr, ctx := newTestStore(t)
	sessionID := "session-1"

	c := New()
	c.AddItem(LineItem{ProductID: uuid.New(), Price: decimal.NewFromInt(10)}, 1)
	store.Save(ctx, sessionID, c)

	if err := store.Clear(ctx, sessionID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if mr.Exists("cart:" + sessionID) {
		t.Fatalf("expected session key removed")
	}
}

func TestStore_NilRedisIsNoop(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	store := NewStore(nil, log, 0)
	ctx := context.Background()

	store.Save(ctx, "s", New())
	c, err := store.Load(ctx, "s")
	if err != nil || c.ItemCount() != 0 {
		t.Fatalf("expected empty cart from nil store, got %v / %v", c, err)
	}
	if err := store.Clear(ctx, "s"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
