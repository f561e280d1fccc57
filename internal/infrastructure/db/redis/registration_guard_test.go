package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestGuard(t *testing.T) (*RegistrationGuard, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRegistrationGuard(client, time.Second), mini
}

func TestRegistrationGuard_AcquireRelease(t *testing.T) {
	guard, mini := newTestGuard(t)
	ctx := context.Background()

	token, ok, err := guard.Acquire(ctx, "juan")
	if err != nil || !ok || token == "" {
		t.Fatalf("first Acquire: token=%q ok=%v err=%v", token, ok, err)
	}
	if _, ok, err := guard.Acquire(ctx, "juan"); ok || err != nil {
		t.Fatalf("second Acquire must find the lock held, ok=%v err=%v", ok, err)
	}
	if _, ok, _ := guard.Acquire(ctx, "pedro"); !ok {
		t.Fatalf("locks are per username")
	}

	if err := guard.Release(ctx, "juan", token); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if mini.Exists("register:juan") {
		t.Fatalf("lock must be gone after release")
	}
	if _, ok, _ := guard.Acquire(ctx, "juan"); !ok {
		t.Fatalf("expected the lock to be free again")
	}
}

func TestRegistrationGuard_StaleReleaseKeepsNewLock(t *testing.T) {
	guard, mini := newTestGuard(t)
	ctx := context.Background()

	stale, ok, _ := guard.Acquire(ctx, "juan")
	if !ok {
		t.Fatalf("first Acquire failed")
	}
	mini.FastForward(2 * time.Second)

	current, ok, _ := guard.Acquire(ctx, "juan")
	if !ok {
		t.Fatalf("expected the expired lock to be taken over")
	}

	if err := guard.Release(ctx, "juan", stale); err != nil {
		t.Fatalf("stale Release: %v", err)
	}
	got, err := mini.Get("register:juan")
	if err != nil || got != current {
		t.Fatalf("stale release must leave the current holder's lock, got %q err=%v", got, err)
	}

	if err := guard.Release(ctx, "juan", current); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if mini.Exists("register:juan") {
		t.Fatalf("current holder must be able to release")
	}
}
