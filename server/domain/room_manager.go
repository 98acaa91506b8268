package domain

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrManagerNotStarted = errors.New("room manager not started")

// RoomManager はルームの生成と検索を担います。
// ルームは最初の参加者が現れたときに作られ、Run のゴルーチンは
// マネージャーの ctx に紐づきます。
type RoomManager struct {
	factory      ApplicationFactory
	tickInterval time.Duration

	mu    sync.Mutex
	rooms map[RoomID]*Room
	ctx   context.Context
}

func NewRoomManager(factory ApplicationFactory, tickInterval time.Duration) *RoomManager {
	return &RoomManager{
		factory:      factory,
		tickInterval: tickInterval,
		rooms:        make(map[RoomID]*Room),
	}
}

// Start は以後に作られるルームの寿命を ctx に結びつけます。
func (m *RoomManager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx = ctx
}

// GetOrCreate は id のルームを返し、なければ作って走らせます。
// 空の id は DefaultRoomID として扱います。
func (m *RoomManager) GetOrCreate(id RoomID) (*Room, error) {
	if id == "" {
		id = DefaultRoomID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return nil, ErrManagerNotStarted
	}
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}

	r := NewRoom(id, m.factory, m.tickInterval)
	m.rooms[id] = r

	ctx := m.ctx
	go func() {
		r.Run(ctx)
		m.mu.Lock()
		delete(m.rooms, id)
		m.mu.Unlock()
		slog.InfoContext(ctx, "room removed", "roomID", id)
	}()

	return r, nil
}

// Len は現在のルーム数を返します。
func (m *RoomManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
