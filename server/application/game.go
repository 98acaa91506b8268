package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"garland/server/domain"
	"garland/utils"
)

const (
	captureRadius = 1.5
	returnRadius  = 1.5

	defaultTickInterval  = 16 * time.Millisecond
	defaultSnapshotEvery = 60
	defaultRespawnDelay  = 5 * time.Second
	defaultRestartDelay  = 2 * time.Second
)

// Tuning はゲーム進行の時間パラメータです。
type Tuning struct {
	TickInterval  time.Duration
	SnapshotEvery int
	RespawnDelay  time.Duration
	RestartDelay  time.Duration
}

func defaultTuning() Tuning {
	return Tuning{
		TickInterval:  defaultTickInterval,
		SnapshotEvery: defaultSnapshotEvery,
		RespawnDelay:  defaultRespawnDelay,
		RestartDelay:  defaultRestartDelay,
	}
}

// Game は1ルームぶんのCTF対戦ロジックです。
// domain.Application として、すべての呼び出しはルームのゴルーチンから
// 直列に届くため、内部状態はロックなしで扱えます。
type Game struct {
	roomID  domain.RoomID
	tuning  Tuning
	roster  *Roster
	mapctx  *MapContext
	sim     *Simulator
	bc      domain.Broadcaster
	metrics MetricsRecorder
	clock   func() time.Time

	gameOver    bool
	winningTeam int
	restartAt   time.Time
	tickCount   int

	countListener func(n int)
}

var _ domain.Application = (*Game)(nil)

type GameOption func(*Game)

// WithClock は現在時刻の取得方法を差し替えます。テスト用です。
func WithClock(clock func() time.Time) GameOption {
	return func(g *Game) { g.clock = clock }
}

// WithTuning は時間パラメータを差し替えます。
func WithTuning(t Tuning) GameOption {
	return func(g *Game) { g.tuning = t }
}

// WithMetrics は計測の送り先を設定します。
func WithMetrics(m MetricsRecorder) GameOption {
	return func(g *Game) { g.metrics = m }
}

// WithPlayerCountListener は参加人数が変わるたびに呼ばれるコールバックを
// 設定します。クライアント向けのブロードキャストとは独立した、ロビー等の
// 同居サービス向けの通知です。
func WithPlayerCountListener(fn func(n int)) GameOption {
	return func(g *Game) { g.countListener = fn }
}

func NewGame(roomID domain.RoomID, bc domain.Broadcaster, gen Generator, opts ...GameOption) *Game {
	g := &Game{
		roomID:  roomID,
		tuning:  defaultTuning(),
		roster:  NewRoster(),
		mapctx:  NewMapContext(gen),
		sim:     NewSimulator(),
		bc:      bc,
		metrics: noopMetrics{},
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// HandleEvent は受信イベントを種別ごとに振り分けます。
// 未知のイベントは記録だけ残して無視します。
func (g *Game) HandleEvent(ctx context.Context, id domain.SessionID, env *domain.Envelope) error {
	switch env.Event {
	case domain.EventJoin:
		return g.handleJoin(ctx, id)
	case domain.EventPlayerMoved:
		return g.handleMove(ctx, id, env.Data)
	case domain.EventPlayerShoot:
		return g.handleShoot(ctx, id, env.Data)
	case domain.EventFlagDropped:
		return g.handleDrop(ctx, id)
	default:
		slog.WarnContext(ctx, "ignoring unknown event",
			"roomID", g.roomID, "sessionID", id, "event", env.Event)
		return nil
	}
}

func (g *Game) handleJoin(ctx context.Context, id domain.SessionID) error {
	if _, ok := g.roster.Get(id); ok {
		slog.WarnContext(ctx, "duplicate join ignored", "roomID", g.roomID, "sessionID", id)
		return nil
	}

	p := g.roster.Join(id)
	p.Position = g.mapctx.ExitPoint(p.TeamID)

	slog.InfoContext(ctx, "player joined", "roomID", g.roomID, "playerID", id, "teamID", p.TeamID)
	g.metrics.IncrementCounter(ctx, "game.players.joined")

	g.send(ctx, id, domain.EventWelcome, domain.WelcomePayload{PlayerID: string(id)})
	g.send(ctx, id, domain.EventMapData, g.mapctx.Data())
	g.broadcastExcept(ctx, id, domain.EventPlayerJoined, *p)
	g.notifyCount()
	g.broadcastState(ctx)
	return nil
}

// handleMove は位置・向きの自己申告をそのまま受け入れて全員へ中継します。
// 移動のたびにフラッグの奪取・持ち帰り判定が走ります。
func (g *Game) handleMove(ctx context.Context, id domain.SessionID, data json.RawMessage) error {
	p, ok := g.roster.Get(id)
	if !ok {
		slog.WarnContext(ctx, "move from unknown player", "roomID", g.roomID, "sessionID", id)
		return nil
	}

	payload, err := domain.ParseMovePayload(data)
	if err != nil {
		return err
	}
	if !utils.FiniteVec3(payload.Position) || !utils.FiniteRotation(payload.Rotation) {
		return fmt.Errorf("%w: non-finite movement values", domain.ErrInvalidPayload)
	}

	p.Position = payload.Position
	p.Rotation = payload.Rotation

	g.broadcastExcept(ctx, id, domain.EventPlayerMoved, domain.MovePayload{
		PlayerID: string(id),
		Position: p.Position,
		Rotation: p.Rotation,
	})

	if !p.IsDead {
		g.checkCapture(ctx, p)
		if p.HasFlag {
			g.checkReturn(ctx, p)
		}
	}
	return nil
}

func (g *Game) handleShoot(ctx context.Context, id domain.SessionID, data json.RawMessage) error {
	p, ok := g.roster.Get(id)
	if !ok {
		slog.WarnContext(ctx, "shoot from unknown player", "roomID", g.roomID, "sessionID", id)
		return nil
	}
	if p.IsDead {
		slog.DebugContext(ctx, "ignoring shoot from dead player", "roomID", g.roomID, "playerID", id)
		return nil
	}

	payload, err := domain.ParseShootPayload(data)
	if err != nil {
		return err
	}
	if !utils.FiniteVec3(payload.Position) || !utils.FiniteVec3(payload.Direction) {
		return fmt.Errorf("%w: non-finite shoot values", domain.ErrInvalidPayload)
	}

	weapon, weaponType, ok := WeaponByType(payload.WeaponType)
	if !ok {
		return fmt.Errorf("%w: unknown weapon type %q", domain.ErrInvalidPayload, payload.WeaponType)
	}

	proj, err := g.sim.Create(p, payload.Position, payload.Direction, weaponType, weapon, g.clock())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidPayload, err)
	}
	g.metrics.IncrementCounter(ctx, "game.shots.fired")

	g.broadcast(ctx, domain.EventProjectileCreated, domain.ProjectileCreatedPayload{
		ID:         proj.ID,
		ShooterID:  string(p.ID),
		TeamID:     p.TeamID,
		Position:   proj.Position,
		Direction:  proj.Direction,
		Speed:      weapon.Speed,
		Gravity:    weapon.Gravity,
		WeaponType: weaponType,
	})
	return nil
}

// handleDrop はクライアントが自発的にフラッグを手放す要求です。
// 保持していない・死亡中の要求は黙って捨てます。
func (g *Game) handleDrop(ctx context.Context, id domain.SessionID) error {
	p, ok := g.roster.Get(id)
	if !ok {
		return nil
	}
	if !p.HasFlag || p.IsDead {
		slog.DebugContext(ctx, "ignoring flag drop",
			"roomID", g.roomID, "playerID", id, "hasFlag", p.HasFlag, "isDead", p.IsDead)
		return nil
	}
	g.dropFlag(ctx, p)
	g.broadcastState(ctx)
	return nil
}

// HandleLeave はセッション離脱を処理します。フラッグ保持者が抜けた場合は
// その場にフラッグを落としてから台帳を更新します。
func (g *Game) HandleLeave(ctx context.Context, id domain.SessionID) {
	p, ok := g.roster.Get(id)
	if !ok {
		return
	}
	if p.HasFlag {
		g.dropFlag(ctx, p)
	}
	g.roster.Remove(id)

	slog.InfoContext(ctx, "player left", "roomID", g.roomID, "playerID", id)
	g.broadcast(ctx, domain.EventPlayerLeft, string(id))
	g.notifyCount()
	g.broadcastState(ctx)
}

// Tick は1シミュレーションステップです。再開始期限 → 弾道と命中 →
// リスポーン期限 → 定期スナップショットの順で進めます。
func (g *Game) Tick(ctx context.Context) {
	started := time.Now()
	defer func() { g.metrics.RecordTickDuration(ctx, time.Since(started)) }()

	now := g.clock()

	if g.gameOver && !g.restartAt.IsZero() && !now.Before(g.restartAt) {
		g.restart(ctx)
	}

	dt := g.tuning.TickInterval.Seconds()
	for _, hit := range g.sim.Tick(now, dt, g.mapctx, g.roster) {
		g.applyHit(ctx, hit, now)
	}

	g.tickRespawns(ctx, now)

	g.tickCount++
	if g.tuning.SnapshotEvery > 0 && g.tickCount%g.tuning.SnapshotEvery == 0 {
		g.broadcastState(ctx)
	}
}

func (g *Game) notifyCount() {
	if g.countListener != nil {
		g.countListener(g.roster.Len())
	}
}
