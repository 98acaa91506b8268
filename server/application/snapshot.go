package application

import (
	"context"
	"log/slog"

	"garland/server/domain"
)

// GameState は全クライアントへ配る完全なスナップショットです。
// 差分配信はせず、毎回この全体を送ります。
type GameState struct {
	Players     []PlayerState `json:"players"`
	Map         MapData       `json:"map"`
	GameOver    bool          `json:"gameOver,omitempty"`
	WinningTeam int           `json:"winningTeam,omitempty"`
}

// Snapshot は現在の状態から GameState を組み立てます。
// 内部への参照は持ち出さず、毎回コピーを作ります。
func (g *Game) Snapshot() GameState {
	players := make([]PlayerState, 0, g.roster.Len())
	for _, p := range g.roster.Players() {
		players = append(players, *p)
	}
	return GameState{
		Players:     players,
		Map:         g.mapctx.Data(),
		GameOver:    g.gameOver,
		WinningTeam: g.winningTeam,
	}
}

// broadcastState は最新スナップショットを全員へ送ります。
func (g *Game) broadcastState(ctx context.Context) {
	g.broadcast(ctx, domain.EventGameState, g.Snapshot())
}

func (g *Game) broadcast(ctx context.Context, event domain.EventName, payload any) {
	data, err := domain.NewEvent(event, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode event",
			"roomID", g.roomID, "event", event, "error", err)
		return
	}
	g.bc.Broadcast(ctx, data)
}

func (g *Game) broadcastExcept(ctx context.Context, except domain.SessionID, event domain.EventName, payload any) {
	data, err := domain.NewEvent(event, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode event",
			"roomID", g.roomID, "event", event, "error", err)
		return
	}
	g.bc.BroadcastExcept(ctx, except, data)
}

func (g *Game) send(ctx context.Context, id domain.SessionID, event domain.EventName, payload any) {
	data, err := domain.NewEvent(event, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode event",
			"roomID", g.roomID, "event", event, "error", err)
		return
	}
	g.bc.Send(ctx, id, data)
}
