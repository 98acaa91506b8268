package application

import (
	"context"
	"log/slog"

	"garland/server/domain"
)

// checkCapture は地面のフラッグとの接触を判定します。フラッグ要素は
// 最初に触れた1人が取り除くため、同一Tick内の奪い合いは先に処理された
// 移動報告の勝ちです。
func (g *Game) checkCapture(ctx context.Context, p *PlayerState) {
	if p.HasFlag {
		return
	}
	fpos, ok := g.mapctx.FlagPosition()
	if !ok {
		return
	}
	if p.Position.DistanceTo(fpos) >= captureRadius {
		return
	}
	if !g.mapctx.TakeFlag() {
		return
	}
	p.HasFlag = true

	slog.InfoContext(ctx, "flag captured", "roomID", g.roomID, "playerID", p.ID, "teamID", p.TeamID)
	g.metrics.IncrementCounter(ctx, "game.flag.captured")

	g.broadcast(ctx, domain.EventFlagCaptured, domain.FlagCapturedPayload{
		PlayerID: string(p.ID),
		TeamID:   p.TeamID,
	})
	g.broadcastState(ctx)
}

// checkReturn は保持者が自陣出口へ戻ったかを判定します。
// 持ち帰りは無条件にそのラウンドの勝利です。
func (g *Game) checkReturn(ctx context.Context, p *PlayerState) {
	exit := g.mapctx.ExitPoint(p.TeamID)
	if p.Position.DistanceTo(exit) >= returnRadius {
		return
	}
	p.HasFlag = false

	slog.InfoContext(ctx, "flag returned", "roomID", g.roomID, "playerID", p.ID, "teamID", p.TeamID)

	g.broadcast(ctx, domain.EventFlagReturned, domain.FlagReturnedPayload{TeamID: p.TeamID})
	g.endRound(ctx, p.TeamID)
}

// dropFlag は保持者の最終位置へフラッグを戻します。死亡・離脱・自発的な
// ドロップの共通処理で、flag_dropped の通知までを行います。
func (g *Game) dropFlag(ctx context.Context, p *PlayerState) {
	p.HasFlag = false
	g.mapctx.PlaceFlag(p.Position)

	slog.InfoContext(ctx, "flag dropped", "roomID", g.roomID, "playerID", p.ID)

	g.broadcast(ctx, domain.EventFlagDropped, domain.FlagDroppedPayload{
		PlayerID: string(p.ID),
		Position: p.Position,
	})
}
