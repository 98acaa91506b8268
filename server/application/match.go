package application

import (
	"context"
	"log/slog"
	"time"

	"garland/server/domain"
)

// endRound は勝敗を確定し、再開始を予約します。終了済みラウンドを重ねて
// 終了させることはできず、予約は積み上がらずに1件だけ保たれます。
func (g *Game) endRound(ctx context.Context, winningTeam int) {
	if g.gameOver {
		return
	}
	g.gameOver = true
	g.winningTeam = winningTeam
	g.restartAt = g.clock().Add(g.tuning.RestartDelay)

	slog.InfoContext(ctx, "round over", "roomID", g.roomID, "winningTeam", winningTeam)
	g.metrics.IncrementCounter(ctx, "game.rounds.completed")

	g.broadcast(ctx, domain.EventGameOver, domain.GameOverPayload{WinningTeam: winningTeam})
	g.broadcastState(ctx)
}

// restart はラウンドを初期状態へ戻します。マップを作り直し、飛翔中の弾と
// リスポーン予約をすべて破棄し、全員を新しい自陣出口へ配置し直します。
func (g *Game) restart(ctx context.Context) {
	g.gameOver = false
	g.winningTeam = 0
	g.restartAt = time.Time{}

	g.mapctx.Reset()
	g.sim.Clear()

	for _, p := range g.roster.Players() {
		p.Health = MaxHealth
		p.IsDead = false
		p.HasFlag = false
		p.respawnAt = time.Time{}
		p.Position = g.mapctx.ExitPoint(p.TeamID)
	}

	slog.InfoContext(ctx, "round restarted", "roomID", g.roomID)

	g.broadcast(ctx, domain.EventGameRestart, nil)
	g.broadcastState(ctx)
	g.broadcast(ctx, domain.EventMapData, g.mapctx.Data())
}
