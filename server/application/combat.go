package application

import (
	"context"
	"log/slog"
	"time"

	"garland/server/domain"
)

// applyHit は命中をダメージとして適用します。同一Tick内で複数の弾が
// 同じ相手を捉えることがあるため、すでに死亡している相手への命中は
// 捨てます。致死打でも player_hit は必ず流れます。
func (g *Game) applyHit(ctx context.Context, hit Hit, now time.Time) {
	target := hit.Target
	if _, ok := g.roster.Get(target.ID); !ok {
		return
	}
	if target.IsDead {
		return
	}

	target.Health -= hit.Projectile.Damage
	if target.Health < 0 {
		target.Health = 0
	}
	g.metrics.IncrementCounter(ctx, "game.hits")

	g.broadcast(ctx, domain.EventPlayerHit, domain.HitPayload{
		ShooterID:    string(hit.Projectile.ShooterID),
		TargetID:     string(target.ID),
		Damage:       hit.Projectile.Damage,
		ProjectileID: hit.Projectile.ID,
	})

	if target.Health > 0 {
		return
	}

	if target.HasFlag {
		g.dropFlag(ctx, target)
	}
	target.IsDead = true
	target.respawnAt = now.Add(g.tuning.RespawnDelay)

	slog.InfoContext(ctx, "player died",
		"roomID", g.roomID, "playerID", target.ID, "killerID", hit.Projectile.ShooterID)
	g.metrics.IncrementCounter(ctx, "game.deaths")

	g.broadcast(ctx, domain.EventPlayerDied, domain.DeathPayload{
		PlayerID: string(target.ID),
		KillerID: string(hit.Projectile.ShooterID),
	})
	g.broadcastState(ctx)
}

// tickRespawns は期限を迎えたリスポーンを実行します。期限はプレイヤー自身に
// 持たせてあるので、離脱やラウンド再開始で消えた予約がここで蘇ることはありません。
func (g *Game) tickRespawns(ctx context.Context, now time.Time) {
	for _, p := range g.roster.Players() {
		if !p.IsDead || p.respawnAt.IsZero() || now.Before(p.respawnAt) {
			continue
		}
		p.respawnAt = time.Time{}
		p.IsDead = false
		p.Health = MaxHealth
		p.Position = g.mapctx.ExitPoint(p.TeamID)

		slog.InfoContext(ctx, "player respawned", "roomID", g.roomID, "playerID", p.ID)

		g.broadcast(ctx, domain.EventPlayerRespawned, domain.RespawnPayload{
			PlayerID: string(p.ID),
			Position: p.Position,
		})
		g.broadcastState(ctx)
	}
}
