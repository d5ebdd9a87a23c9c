package utils

import (
	"context"
	"testing"
	"time"
)

func TestLockReleaseScriptCompiles(t *testing.T) {
	if lockReleaseScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestAcquireLock_ValidatesArgs(t *testing.T) {
	ctx := context.Background()
	if _, _, err := AcquireLock(ctx, nil, "k", time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if err := ReleaseLock(ctx, nil, "k", "t"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestRedisConfigDefaults(t *testing.T) {
	c := RedisConfig{Addr: "localhost:6379"}.withDefaults()
	if c.PoolSize <= 0 || c.PingTimeout <= 0 || c.DialTimeout <= 0 {
		t.Fatalf("expected defaults: %+v", c)
	}
}
