package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSlotKey(t *testing.T) {
	doctorID := uuid.MustParse("7f1c5bde-5bb2-4d36-a4a0-9b4b0e1d9f10")
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	got := SlotKey(doctorID, at)
	want := "appointment:slot:7f1c5bde-5bb2-4d36-a4a0-9b4b0e1d9f10:1717232400"
	if got != want {
		t.Errorf("SlotKey() = %q, want %q", got, want)
	}

	local := at.In(time.FixedZone("WIB", 7*60*60))
	if SlotKey(doctorID, local) != want {
		t.Error("SlotKey should not depend on the time zone of the instant")
	}
}

func TestMemorySlotLocker(t *testing.T) {
	locker := NewMemorySlotLocker()
	ctx := context.Background()
	doctorID := uuid.New()
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	release, err := locker.Acquire(ctx, doctorID, at)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	if _, err := locker.Acquire(ctx, doctorID, at); !errors.Is(err, ErrSlotLocked) {
		t.Fatalf("second Acquire err = %v, want ErrSlotLocked", err)
	}

	other, err := locker.Acquire(ctx, doctorID, at.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Acquire of another slot: %v", err)
	}
	other()

	release()
	release()

	again, err := locker.Acquire(ctx, doctorID, at)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again()
}

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()
	userID := uuid.New()

	if err := store.Store(ctx, userID, "access", "a1", time.Minute); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := store.Store(ctx, userID, "refresh", "r1", time.Minute); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := store.Store(ctx, userID, "access", "expired", -time.Second); err != nil {
		t.Fatalf("Store: %v", err)
	}

	ok, _ := store.Exists(ctx, userID, "access", "a1")
	if !ok {
		t.Error("stored access token not found")
	}
	ok, _ = store.Exists(ctx, userID, "access", "expired")
	if ok {
		t.Error("expired token reported as present")
	}

	if err := store.Revoke(ctx, userID, "access", "a1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	ok, _ = store.Exists(ctx, userID, "access", "a1")
	if ok {
		t.Error("revoked token still present")
	}

	if err := store.RevokeAll(ctx, userID); err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}
	ok, _ = store.Exists(ctx, userID, "refresh", "r1")
	if ok {
		t.Error("RevokeAll left a refresh token behind")
	}
}
