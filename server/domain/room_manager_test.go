package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "garland/server/domain"
)

func recordingFactory() domain.ApplicationFactory {
	return func(domain.RoomID, domain.Broadcaster) domain.Application {
		return &recordingApp{}
	}
}

func TestRoomManager_NotStarted(t *testing.T) {
	rm := domain.NewRoomManager(recordingFactory(), time.Hour)

	_, err := rm.GetOrCreate("x")
	if !errors.Is(err, domain.ErrManagerNotStarted) {
		t.Errorf("GetOrCreate error = %v, want ErrManagerNotStarted", err)
	}
}

func TestRoomManager_ReusesRoom(t *testing.T) {
	rm := domain.NewRoomManager(recordingFactory(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rm.Start(ctx)

	r1, err := rm.GetOrCreate("a")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	r2, err := rm.GetOrCreate("a")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if r1 != r2 {
		t.Error("same room ID should return the same room")
	}

	// 空のIDはデフォルトルームに入る
	r3, err := rm.GetOrCreate("")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	r4, err := rm.GetOrCreate(domain.DefaultRoomID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if r3 != r4 {
		t.Error("empty room ID should map to the default room")
	}

	if got := rm.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestRoomManager_RemovesStoppedRooms(t *testing.T) {
	rm := domain.NewRoomManager(recordingFactory(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	rm.Start(ctx)

	if _, err := rm.GetOrCreate("a"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if got := rm.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}

	cancel()
	waitFor(t, time.Second, func() bool { return rm.Len() == 0 })
}
