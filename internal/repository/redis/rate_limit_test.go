package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitStore_RecordAndCount(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, "ratelimit", time.Minute)

	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := store.RecordAttempt(ctx, "user:user-1", now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := store.CountAttempts(ctx, "user:user-1", time.Minute, now.Add(3*time.Second))
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 attempts, got %d", count)
	}
}

func TestRateLimitStore_CountTrimsExpiredAttempts(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, "ratelimit", time.Minute)

	ctx := context.Background()
	now := time.Now()

	if err := store.RecordAttempt(ctx, "user:user-1", now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := store.RecordAttempt(ctx, "user:user-1", now); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	count, err := store.CountAttempts(ctx, "user:user-1", time.Minute, now)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected only the in-window attempt, got %d", count)
	}
}

func TestRateLimitStore_OldestAttempt(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, "ratelimit", time.Minute)

	ctx := context.Background()
	now := time.Now()
	first := now.Add(-30 * time.Second)

	if err := store.RecordAttempt(ctx, "ip:203.0.113.5", first); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := store.RecordAttempt(ctx, "ip:203.0.113.5", now); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	oldest, ok, err := store.OldestAttempt(ctx, "ip:203.0.113.5", time.Minute, now)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected an attempt inside the window")
	}
	if !oldest.Equal(time.Unix(0, first.UnixNano())) {
		t.Fatalf("expected oldest %v, got %v", first, oldest)
	}
}

func TestRateLimitStore_OldestAttemptEmpty(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, "ratelimit", time.Minute)

	_, ok, err := store.OldestAttempt(context.Background(), "user:nobody", time.Minute, time.Now())
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected no attempts for an unknown identifier")
	}
}

func TestRateLimitStore_InvalidWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, "ratelimit", time.Minute)

	if _, err := store.CountAttempts(context.Background(), "user:user-1", 0, time.Now()); err == nil {
		t.Fatalf("expected error for non-positive window in CountAttempts")
	}
	if _, _, err := store.OldestAttempt(context.Background(), "user:user-1", 0, time.Now()); err == nil {
		t.Fatalf("expected error for non-positive window in OldestAttempt")
	}
}

func TestRateLimitStore_KeyTTLSet(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewRateLimitStore(client, "ratelimit", 2*time.Minute)

	if err := store.RecordAttempt(context.Background(), "user:user-1", time.Now()); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	remaining := server.TTL("ratelimit:user:user-1")
	if remaining <= 0 || remaining > 2*time.Minute {
		t.Fatalf("expected ttl within (0, 2m], got %v", remaining)
	}
}
