package service

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"carproban-backend/internal/ws"
	"carproban-backend/pkg/cache"
)

func openTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("set TEST_REDIS_HOST to run redis-backed cache tests")
	}
	t.Setenv("REDIS_HOST", host)
	if port := os.Getenv("TEST_REDIS_PORT"); port != "" {
		t.Setenv("REDIS_PORT", port)
	}
	c := cache.Connect()
	if c == nil {
		t.Fatal("redis configured but unreachable")
	}
	return c
}

func TestMasterDataMutationInvalidatesEveryScope(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	allKey := initialDataCacheKeyPrefix + "all"
	outletKey := initialDataCacheKeyPrefix + uuid.NewString()
	c.SetJSON(ctx, allKey, map[string]string{"view": "global"})
	c.SetJSON(ctx, outletKey, map[string]string{"view": "outlet"})

	events := &Events{Cache: c}
	// Master data is part of every snapshot, so a publish without outlet
	// scope must clear outlet-scoped keys too, not just "all".
	events.Publish(ws.EventMasterDataChanged, nil)

	var out map[string]string
	if c.GetJSON(ctx, allKey, &out) {
		t.Error("global snapshot key survived a master-data mutation")
	}
	if c.GetJSON(ctx, outletKey, &out) {
		t.Error("outlet-scoped snapshot key survived a master-data mutation")
	}
}

func TestOutletScopedMutationLeavesForeignScopes(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	affected := uuid.New()
	foreign := uuid.New()
	allKey := initialDataCacheKeyPrefix + "all"
	affectedKey := initialDataCacheKeyPrefix + affected.String()
	foreignKey := initialDataCacheKeyPrefix + foreign.String()
	for _, key := range []string{allKey, affectedKey, foreignKey} {
		c.SetJSON(ctx, key, map[string]string{"k": "v"})
	}

	events := &Events{Cache: c}
	events.Publish(ws.EventStockUpdate, nil, affected)

	var out map[string]string
	if c.GetJSON(ctx, allKey, &out) {
		t.Error("global snapshot key survived an outlet-scoped mutation")
	}
	if c.GetJSON(ctx, affectedKey, &out) {
		t.Error("affected outlet's snapshot key survived")
	}
	if !c.GetJSON(ctx, foreignKey, &out) {
		t.Error("foreign outlet's snapshot key was dropped unnecessarily")
	}
}
