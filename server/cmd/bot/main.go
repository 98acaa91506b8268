package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/url"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"

	"garland/server/application"
	"garland/server/domain"
	"garland/utils"
)

const (
	reconnectDelay = 2 * time.Second
	decideInterval = 50 * time.Millisecond
	moveSpeed      = 6.0
	shootCooldown  = time.Second
	botWeapon      = "rifle"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := utils.GetEnvDefault("GARLAND_ADDR", "localhost")
	port := utils.GetEnvDefault("GARLAND_PORT", "9090")
	room := utils.GetEnvDefault("GARLAND_ROOM", "")
	ticket := utils.GetEnvDefault("GARLAND_TICKET", "")
	botCount := utils.GetEnvIntDefault("GARLAND_BOT_COUNT", 1)

	q := url.Values{}
	if room != "" {
		q.Set("room", room)
	}
	if ticket != "" {
		q.Set("ticket", ticket)
	}
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(addr, port), Path: "/ws", RawQuery: q.Encode()}

	var wg sync.WaitGroup
	for i := 0; i < botCount; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			runBot(ctx, index, u.String())
		}(i)
	}
	wg.Wait()
}

// runBot は切断されても接続し直しながら、1体のボットを動かし続けます。
func runBot(ctx context.Context, index int, target string) {
	logger := slog.With("bot", index)
	for {
		if err := runSession(ctx, logger, target); err != nil && ctx.Err() == nil {
			logger.Warn("bot session ended", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func runSession(ctx context.Context, logger *slog.Logger, target string) error {
	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bot finished")

	b := &bot{conn: conn, logger: logger, others: make(map[string]otherPlayer)}

	if err := b.sendEvent(ctx, domain.EventJoin, nil); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recvErr := make(chan error, 1)
	go func() { recvErr <- b.receive(ctx) }()

	ticker := time.NewTicker(decideInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-recvErr:
			return err
		case <-ticker.C:
			if err := b.decide(ctx); err != nil {
				return err
			}
		}
	}
}

type otherPlayer struct {
	pos    domain.Vec3
	teamID int
	isDead bool
}

type bot struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu      sync.Mutex
	selfID  string
	joined  bool
	teamID  int
	pos     domain.Vec3
	isDead  bool
	hasFlag bool

	flagPos  *domain.Vec3
	exits    map[int]domain.Vec3
	mapW     float64
	mapH     float64
	others   map[string]otherPlayer
	lastShot time.Time
}

// receive はサーバーからのイベントを取り込み、ボットの世界像を更新します。
func (b *bot) receive(ctx context.Context) error {
	for {
		_, data, err := b.conn.Read(ctx)
		if err != nil {
			return err
		}
		env, err := domain.ParseEnvelope(data)
		if err != nil {
			b.logger.Warn("failed to parse server message", "error", err)
			continue
		}
		switch env.Event {
		case domain.EventWelcome:
			var p domain.WelcomePayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			b.mu.Lock()
			b.selfID = p.PlayerID
			b.mu.Unlock()
			b.logger.Info("joined", "playerID", p.PlayerID)
		case domain.EventPing:
			if err := b.conn.Write(ctx, websocket.MessageText, domain.EncodePong()); err != nil {
				return err
			}
		case domain.EventGameState:
			var state application.GameState
			if err := json.Unmarshal(env.Data, &state); err != nil {
				continue
			}
			b.applyState(state)
		case domain.EventMapData:
			var m application.MapData
			if err := json.Unmarshal(env.Data, &m); err != nil {
				continue
			}
			b.applyMap(m)
		case domain.EventPlayerMoved:
			var p domain.MovePayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			b.mu.Lock()
			if other, ok := b.others[p.PlayerID]; ok {
				other.pos = p.Position
				b.others[p.PlayerID] = other
			}
			b.mu.Unlock()
		}
	}
}

func (b *bot) applyState(state application.GameState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.others)
	for _, p := range state.Players {
		if string(p.ID) == b.selfID {
			b.joined = true
			b.teamID = p.TeamID
			b.pos = p.Position
			b.isDead = p.IsDead
			b.hasFlag = p.HasFlag
			continue
		}
		b.others[string(p.ID)] = otherPlayer{pos: p.Position, teamID: p.TeamID, isDead: p.IsDead}
	}
	b.applyMapLocked(state.Map)
}

func (b *bot) applyMap(m application.MapData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applyMapLocked(m)
}

func (b *bot) applyMapLocked(m application.MapData) {
	b.mapW, b.mapH = m.Width, m.Height
	b.exits = make(map[int]domain.Vec3)
	b.flagPos = nil
	for _, e := range m.Entities {
		switch e.Kind {
		case application.EntityExit:
			b.exits[e.TeamID] = e.Position
		case application.EntityFlag:
			pos := e.Position
			b.flagPos = &pos
		}
	}
}

// decide は50msごとの1手です。フラッグを持っていれば自陣へ、地面にあれば
// フラッグへ向かい、敵に運ばれている間は自陣を固めます。射程に入った敵は
// 一定間隔で撃ちます。
func (b *bot) decide(ctx context.Context) error {
	b.mu.Lock()
	if !b.joined || b.isDead {
		b.mu.Unlock()
		return nil
	}
	target, ok := b.pickTargetLocked()
	if !ok {
		b.mu.Unlock()
		return nil
	}

	dir := target.Sub(b.pos)
	dir.Y = 0
	step, _ := dir.Normalized()
	next := b.pos.Add(step.Scale(moveSpeed * decideInterval.Seconds()))
	next.X += (rand.Float64() - 0.5) * 0.2
	next.Z += (rand.Float64() - 0.5) * 0.2
	next = b.clampLocked(next)
	b.pos = next
	yaw := math.Atan2(step.X, step.Z)

	shoot, shootDir := b.pickShotLocked()
	selfID := b.selfID
	b.mu.Unlock()

	if err := b.sendEvent(ctx, domain.EventPlayerMoved, domain.MovePayload{
		PlayerID: selfID,
		Position: next,
		Rotation: domain.Rotation{Y: yaw},
	}); err != nil {
		return err
	}
	if shoot {
		muzzle := next
		muzzle.Y += 1
		if err := b.sendEvent(ctx, domain.EventPlayerShoot, domain.ShootPayload{
			PlayerID:   selfID,
			Position:   muzzle,
			Direction:  shootDir,
			WeaponType: botWeapon,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *bot) pickTargetLocked() (domain.Vec3, bool) {
	if b.hasFlag {
		exit, ok := b.exits[b.teamID]
		return exit, ok
	}
	if b.flagPos != nil {
		return *b.flagPos, true
	}
	exit, ok := b.exits[b.teamID]
	return exit, ok
}

// pickShotLocked は射程内で最も近い敵への射撃方向を返します。
func (b *bot) pickShotLocked() (bool, domain.Vec3) {
	if time.Since(b.lastShot) < shootCooldown {
		return false, domain.Vec3{}
	}
	weapon, _, _ := application.WeaponByType(botWeapon)
	bestDist := weapon.MaxRange
	var best domain.Vec3
	found := false
	for _, other := range b.others {
		if other.teamID == b.teamID || other.isDead {
			continue
		}
		d := b.pos.DistanceTo(other.pos)
		if d >= bestDist {
			continue
		}
		dir, ok := other.pos.Sub(b.pos).Normalized()
		if !ok {
			continue
		}
		bestDist = d
		best = dir
		found = true
	}
	if found {
		b.lastShot = time.Now()
	}
	return found, best
}

func (b *bot) clampLocked(p domain.Vec3) domain.Vec3 {
	if b.mapW <= 0 || b.mapH <= 0 {
		return p
	}
	halfW, halfH := b.mapW/2, b.mapH/2
	p.X = math.Max(-halfW, math.Min(halfW, p.X))
	p.Z = math.Max(-halfH, math.Min(halfH, p.Z))
	return p
}

func (b *bot) sendEvent(ctx context.Context, event domain.EventName, payload any) error {
	data, err := domain.NewEvent(event, payload)
	if err != nil {
		return err
	}
	return b.conn.Write(ctx, websocket.MessageText, data)
}
