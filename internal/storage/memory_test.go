package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemory()
	store.Now = func() time.Time { return now }

	if err := store.Set(ctx, "k", "v", 24*time.Hour); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}
	now = now.Add(23 * time.Hour)
	if got, err := store.Get(ctx, "k"); err != nil || got != "v" {
		t.Fatalf("Expected v before expiry, got %q, %v", got, err)
	}
	now = now.Add(time.Hour)
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if err := store.Set(ctx, "dns_sequence_step", "3", 0); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}
	store.Clear()
	if _, err := store.Get(ctx, "dns_sequence_step"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after clear, got %v", err)
	}
}

func TestDisabled(t *testing.T) {
	var store Store = Disabled{}
	if _, err := store.Get(context.Background(), "k"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled from Get, got %v", err)
	}
	if err := store.Set(context.Background(), "k", "v", 0); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled from Set, got %v", err)
	}
}
