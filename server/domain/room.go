package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RoomID はルームの識別子です。
type RoomID string

// DefaultRoomID はルーム指定なしの接続が入るルームです。
const DefaultRoomID RoomID = "main"

const inboxCapacity = 1024

var (
	ErrRoomBusy               = errors.New("room inbox full")
	ErrRoomClosed             = errors.New("room closed")
	ErrSessionAlreadyAttached = errors.New("session already attached")
)

type attachCommand struct {
	endpoint *SessionEndpoint
	reply    chan error
}

type detachCommand struct {
	id SessionID
}

type inboundCommand struct {
	id  SessionID
	env *Envelope
}

// Room は1つの対戦空間です。参加者の出入り・受信イベント・Tick を
// 単一のゴルーチンで処理することで、ゲーム状態の変更を直列化します。
type Room struct {
	id           RoomID
	app          Application
	tickInterval time.Duration

	members map[SessionID]*SessionEndpoint
	inbox   chan any
	done    chan struct{}
}

var _ Broadcaster = (*Room)(nil)

func NewRoom(id RoomID, factory ApplicationFactory, tickInterval time.Duration) *Room {
	r := &Room{
		id:           id,
		tickInterval: tickInterval,
		members:      make(map[SessionID]*SessionEndpoint),
		inbox:        make(chan any, inboxCapacity),
		done:         make(chan struct{}),
	}
	r.app = factory(id, r)
	return r
}

func (r *Room) ID() RoomID { return r.id }

// Run はルームのメインループです。ctx の取り消しで抜け、
// 残っている参加者をクローズしてから返ります。
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)
	defer r.shutdown(ctx)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "room started", "roomID", r.id, "tickInterval", r.tickInterval)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-r.inbox:
			r.handleCommand(ctx, cmd)
		case <-ticker.C:
			r.app.Tick(ctx)
		}
	}
}

func (r *Room) handleCommand(ctx context.Context, cmd any) {
	switch c := cmd.(type) {
	case attachCommand:
		id := c.endpoint.SessionID()
		if _, ok := r.members[id]; ok {
			c.reply <- ErrSessionAlreadyAttached
			return
		}
		r.members[id] = c.endpoint
		c.reply <- nil
	case detachCommand:
		if _, ok := r.members[c.id]; !ok {
			return
		}
		delete(r.members, c.id)
		r.app.HandleLeave(ctx, c.id)
	case inboundCommand:
		if _, ok := r.members[c.id]; !ok {
			// 離脱処理と入れ違いになったイベントは捨てる
			return
		}
		if err := r.app.HandleEvent(ctx, c.id, c.env); err != nil {
			slog.WarnContext(ctx, "failed to handle event",
				"roomID", r.id, "sessionID", c.id, "event", c.env.Event, "error", err)
		}
	}
}

func (r *Room) shutdown(ctx context.Context) {
	for id, ep := range r.members {
		ep.Close()
		delete(r.members, id)
		r.app.HandleLeave(ctx, id)
	}
	slog.InfoContext(ctx, "room stopped", "roomID", r.id)
}

// Attach は参加要求を送り、ルーム側で受理されるまで待ちます。
func (r *Room) Attach(ctx context.Context, ep *SessionEndpoint) error {
	reply := make(chan error, 1)
	select {
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	case r.inbox <- attachCommand{endpoint: ep, reply: reply}:
	}
	select {
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	case err := <-reply:
		return err
	}
}

// Detach は離脱を通知します。ルームが閉じていれば何もしません。
func (r *Room) Detach(id SessionID) {
	select {
	case <-r.done:
	case r.inbox <- detachCommand{id: id}:
	}
}

// Deliver は受信イベントをルームへ渡します。
// inbox が満杯の場合はブロックせず ErrRoomBusy を返します。
func (r *Room) Deliver(id SessionID, env *Envelope) error {
	select {
	case <-r.done:
		return ErrRoomClosed
	case r.inbox <- inboundCommand{id: id, env: env}:
		return nil
	default:
		return ErrRoomBusy
	}
}

// Broadcast は全参加者へ送信します。ルームのゴルーチンから呼ぶこと。
func (r *Room) Broadcast(ctx context.Context, data []byte) {
	for id := range r.members {
		r.sendTo(ctx, id, data)
	}
}

// BroadcastExcept は except を除く全参加者へ送信します。ルームのゴルーチンから呼ぶこと。
func (r *Room) BroadcastExcept(ctx context.Context, except SessionID, data []byte) {
	for id := range r.members {
		if id == except {
			continue
		}
		r.sendTo(ctx, id, data)
	}
}

// Send は特定の参加者へ送信します。ルームのゴルーチンから呼ぶこと。
func (r *Room) Send(ctx context.Context, id SessionID, data []byte) {
	r.sendTo(ctx, id, data)
}

// sendTo は1参加者への送信です。詰まった参加者へは配信を諦め、
// 次のスナップショット配信での追いつきに任せます。
func (r *Room) sendTo(ctx context.Context, id SessionID, data []byte) {
	ep, ok := r.members[id]
	if !ok {
		return
	}
	if err := ep.Send(data); err != nil {
		slog.WarnContext(ctx, "failed to send to session",
			"roomID", r.id, "sessionID", id, "error", err)
	}
}
