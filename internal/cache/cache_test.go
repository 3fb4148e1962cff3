package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "feed:1", []int{1, 2}, time.Minute); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	var got []int
	ok, err := m.Get(ctx, "feed:1", &got)
	if err != nil || !ok || len(got) != 2 {
		t.Fatalf("Get() = (%v, %v, %v)", got, ok, err)
	}

	now = now.Add(2 * time.Minute)
	ok, _ = m.Get(ctx, "feed:1", &got)
	if ok {
		t.Fatalf("Get() after ttl = present, want expired")
	}
}

func TestMemoryStoreMissAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	var v string
	if ok, _ := m.Get(ctx, "nope", &v); ok {
		t.Fatalf("Get(missing) = present")
	}
	_ = m.Set(ctx, "k", "v", 0)
	_ = m.Delete(ctx, "k")
	if ok, _ := m.Get(ctx, "k", &v); ok {
		t.Fatalf("Get(deleted) = present")
	}
}

func TestNewFromURL(t *testing.T) {
	s, err := NewFromURL("")
	if err != nil {
		t.Fatalf("NewFromURL(\"\") = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("NewFromURL(\"\") = %T, want *MemoryStore", s)
	}

	s, err = NewFromURL("redis://localhost:6379/2")
	if err != nil {
		t.Fatalf("NewFromURL(redis) = %v", err)
	}
	rs, ok := s.(*RedisStore)
	if !ok {
		t.Fatalf("NewFromURL(redis) = %T, want *RedisStore", s)
	}
	rs.Close()

	if _, err := NewFromURL("://bad"); err == nil {
		t.Fatalf("NewFromURL(bad) = nil error")
	}
}
