package application

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"garland/server/domain"
)

// どんな操作列の後でも崩れてはならない整合性をランダム操作で検査します。
// 体力は 0..MaxHealth、死亡は体力ゼロと同値、フラッグは保持者か地面の
// どちらか一方（勝敗確定中はどちらにも無い）に必ず収まります。
func TestGame_InvariantsUnderRandomOps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bc := &recordingBroadcaster{}
		clock := &fakeClock{now: time.Unix(1000, 0)}
		g := NewGame("prop", bc, ArenaGenerator{Width: 40, Height: 40},
			WithClock(clock.Now),
			WithTuning(Tuning{
				TickInterval:  16 * time.Millisecond,
				SnapshotEvery: 0,
				RespawnDelay:  5 * time.Second,
				RestartDelay:  2 * time.Second,
			}),
		)
		ctx := context.Background()
		next := 0
		var ids []domain.SessionID

		coord := rapid.Float64Range(-20, 20)

		rt.Repeat(map[string]func(*rapid.T){
			"join": func(rt *rapid.T) {
				next++
				id := domain.SessionID(fmt.Sprintf("p%d", next))
				if err := g.HandleEvent(ctx, id, &domain.Envelope{Event: domain.EventJoin}); err != nil {
					rt.Fatalf("join failed: %v", err)
				}
				ids = append(ids, id)
			},
			"leave": func(rt *rapid.T) {
				if len(ids) == 0 {
					rt.Skip("no players")
				}
				i := rapid.IntRange(0, len(ids)-1).Draw(rt, "leaver")
				g.HandleLeave(ctx, ids[i])
				ids = append(ids[:i], ids[i+1:]...)
			},
			"move": func(rt *rapid.T) {
				if len(ids) == 0 {
					rt.Skip("no players")
				}
				i := rapid.IntRange(0, len(ids)-1).Draw(rt, "mover")
				pos := domain.Vec3{
					X: coord.Draw(rt, "x"),
					Y: rapid.Float64Range(0, 5).Draw(rt, "y"),
					Z: coord.Draw(rt, "z"),
				}
				data, err := json.Marshal(domain.MovePayload{Position: pos})
				if err != nil {
					rt.Fatalf("marshal move: %v", err)
				}
				if err := g.HandleEvent(ctx, ids[i], &domain.Envelope{Event: domain.EventPlayerMoved, Data: data}); err != nil {
					rt.Fatalf("move failed: %v", err)
				}
			},
			"shoot": func(rt *rapid.T) {
				if len(ids) == 0 {
					rt.Skip("no players")
				}
				i := rapid.IntRange(0, len(ids)-1).Draw(rt, "shooter")
				p, ok := g.roster.Get(ids[i])
				if !ok {
					rt.Skip("player gone")
				}
				dir := domain.Vec3{
					X: rapid.Float64Range(-1, 1).Draw(rt, "dx"),
					Y: rapid.Float64Range(-0.2, 0.2).Draw(rt, "dy"),
					Z: rapid.Float64Range(-1, 1).Draw(rt, "dz"),
				}
				if _, ok := dir.Normalized(); !ok {
					rt.Skip("zero direction")
				}
				data, err := json.Marshal(domain.ShootPayload{
					Position:  p.Position.Add(domain.Vec3{Y: 1}),
					Direction: dir,
				})
				if err != nil {
					rt.Fatalf("marshal shoot: %v", err)
				}
				if err := g.HandleEvent(ctx, ids[i], &domain.Envelope{Event: domain.EventPlayerShoot, Data: data}); err != nil {
					rt.Fatalf("shoot failed: %v", err)
				}
			},
			"tick": func(rt *rapid.T) {
				clock.Advance(16 * time.Millisecond)
				g.Tick(ctx)
			},
			"wait": func(rt *rapid.T) {
				// リスポーンや再開始の期限をまたぐ大きな時間経過
				d := rapid.SampledFrom([]time.Duration{
					time.Second, 2 * time.Second, 5 * time.Second, 6 * time.Second,
				}).Draw(rt, "duration")
				clock.Advance(d)
				g.Tick(ctx)
			},
			"": func(rt *rapid.T) {
				carriers := 0
				for _, p := range g.roster.Players() {
					if p.Health < 0 || p.Health > MaxHealth {
						rt.Fatalf("player %s health out of range: %d", p.ID, p.Health)
					}
					if p.IsDead != (p.Health == 0) {
						rt.Fatalf("player %s inconsistent: isDead=%v health=%d", p.ID, p.IsDead, p.Health)
					}
					if p.HasFlag {
						carriers++
					}
				}
				if carriers > 1 {
					rt.Fatalf("%d flag carriers", carriers)
				}

				_, onMap := g.mapctx.FlagPosition()
				if g.gameOver {
					if carriers != 0 || onMap {
						rt.Fatalf("flag in play during the restart window: carriers=%d onMap=%v", carriers, onMap)
					}
				} else if onMap == (carriers == 1) {
					rt.Fatalf("flag must be either on the map or carried: carriers=%d onMap=%v", carriers, onMap)
				}
			},
		})
	})
}
