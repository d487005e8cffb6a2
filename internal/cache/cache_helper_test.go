package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "session:"), mr
}

type sessionStub struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestCacheHelperSetGet(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	in := sessionStub{ID: "s1", Title: "Round 1"}
	if err := helper.Set(ctx, "s1", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out sessionStub
	if err := helper.Get(ctx, "s1", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != in {
		t.Errorf("Get = %+v, want %+v", out, in)
	}
}

func TestCacheHelperGetMiss(t *testing.T) {
	helper, _ := newTestCache(t)

	var out sessionStub
	err := helper.Get(context.Background(), "missing", &out)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get miss error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperExpiry(t *testing.T) {
	helper, mr := newTestCache(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "s1", sessionStub{ID: "s1"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	var out sessionStub
	if err := helper.Get(ctx, "s1", &out); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get after expiry error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperDelete(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := helper.Set(ctx, key, sessionStub{ID: key}, time.Minute); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	if err := helper.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var out sessionStub
	if err := helper.Get(ctx, "a", &out); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("a still cached after delete")
	}
	if err := helper.Get(ctx, "c", &out); err != nil {
		t.Errorf("c was deleted, want it kept: %v", err)
	}
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "list:1", sessionStub{}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := helper.Set(ctx, "list:2", sessionStub{}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := helper.Set(ctx, "detail:1", sessionStub{}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}

	var out sessionStub
	if err := helper.Get(ctx, "list:1", &out); !errors.Is(err, ErrCacheNotFound) {
		t.Error("list:1 survived pattern invalidation")
	}
	if err := helper.Get(ctx, "detail:1", &out); err != nil {
		t.Errorf("detail:1 was invalidated, want it kept: %v", err)
	}
}

func TestCacheHelperCacheOrExecute(t *testing.T) {
	helper, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return sessionStub{ID: "s1", Title: "Round 1"}, nil
	}

	var first sessionStub
	if err := helper.CacheOrExecute(ctx, "s1", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute: %v", err)
	}
	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1", calls)
	}
	if first.Title != "Round 1" {
		t.Errorf("first = %+v, want fetched value", first)
	}

	// The async cache set needs a moment to land.
	deadline := time.Now().Add(time.Second)
	for {
		if ok, _ := helper.Exists(ctx, "s1"); ok || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	var second sessionStub
	if err := helper.CacheOrExecute(ctx, "s1", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1 (second read served from cache)", calls)
	}
}

func TestCacheHelperNilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "session:")
	ctx := context.Background()

	if err := helper.Set(ctx, "s1", sessionStub{}, time.Minute); err != nil {
		t.Errorf("Set with nil client = %v, want nil", err)
	}

	var out sessionStub
	if err := helper.Get(ctx, "s1", &out); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get with nil client = %v, want ErrCacheNotAvailable", err)
	}

	// CacheOrExecute still serves the fetched value.
	calls := 0
	err := helper.CacheOrExecute(ctx, "s1", &out, time.Minute, func() (interface{}, error) {
		calls++
		return sessionStub{ID: "s1"}, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute with nil client: %v", err)
	}
	if calls != 1 || out.ID != "s1" {
		t.Errorf("fetched value not served: calls=%d out=%+v", calls, out)
	}
}
