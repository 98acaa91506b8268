package application

import (
	"errors"
	"fmt"
	"time"

	"garland/server/domain"
)

const (
	projectileLifetime = 5 * time.Second
	hitRadius          = 1.5
	ceilingY           = 10.0
	floorEpsilon       = 0.01
)

var ErrZeroDirection = errors.New("zero-length fire direction")

// Projectile は飛翔中の弾です。寿命・場外・命中のいずれかで同一Tick内に消滅します。
type Projectile struct {
	ID         string
	ShooterID  domain.SessionID
	TeamID     int
	Position   domain.Vec3
	Direction  domain.Vec3
	Velocity   domain.Vec3
	Gravity    float64
	Damage     int
	WeaponType string
	CreatedAt  time.Time
}

// Hit は弾がプレイヤーに当たったことを表します。
type Hit struct {
	Projectile *Projectile
	Target     *PlayerState
}

// Simulator は全弾の弾道を固定刻みで進めます。
type Simulator struct {
	inflight []*Projectile
	counter  uint64
}

func NewSimulator() *Simulator { return &Simulator{} }

// Create は発射要求から弾を1発生成します。方向は正規化してから武器速度を
// 掛け、長さゼロの方向は ErrZeroDirection として拒否します。
func (s *Simulator) Create(shooter *PlayerState, position, direction domain.Vec3, weaponType string, w Weapon, now time.Time) (*Projectile, error) {
	dir, ok := direction.Normalized()
	if !ok {
		return nil, ErrZeroDirection
	}
	s.counter++
	p := &Projectile{
		ID:         fmt.Sprintf("%s-%d", shooter.ID, s.counter),
		ShooterID:  shooter.ID,
		TeamID:     shooter.TeamID,
		Position:   position,
		Direction:  dir,
		Velocity:   dir.Scale(w.Speed),
		Gravity:    w.Gravity,
		Damage:     w.Damage,
		WeaponType: weaponType,
		CreatedAt:  now,
	}
	s.inflight = append(s.inflight, p)
	return p, nil
}

// Tick は全弾を dt 秒ぶん進め、検出した命中を返します。
// 重力を速度へ、速度を位置へ順に積分し、床下へ沈む弾は床面すれすれに
// 留めます。消滅判定は 寿命 → 場外 → 命中 の順です。
func (s *Simulator) Tick(now time.Time, dt float64, mc *MapContext, roster *Roster) []Hit {
	var hits []Hit
	kept := s.inflight[:0]
	for _, p := range s.inflight {
		p.Velocity.Y -= p.Gravity * dt
		p.Position = p.Position.Add(p.Velocity.Scale(dt))
		if p.Position.Y < floorEpsilon {
			p.Position.Y = floorEpsilon
			p.Velocity.Y = 0
		}

		if now.Sub(p.CreatedAt) > projectileLifetime {
			continue
		}
		if !mc.InBounds(p.Position) || p.Position.Y < 0 || p.Position.Y > ceilingY {
			continue
		}
		if target, ok := s.findTarget(p, roster); ok {
			hits = append(hits, Hit{Projectile: p, Target: target})
			continue
		}
		kept = append(kept, p)
	}
	s.inflight = kept
	return hits
}

// findTarget は弾に最初に命中した相手を返します。走査は参加順なので、
// 複数人が同時に命中範囲へ入った場合の当たり先は参加順に依存します。
func (s *Simulator) findTarget(p *Projectile, roster *Roster) (*PlayerState, bool) {
	for _, target := range roster.Players() {
		if target.TeamID == p.TeamID || target.IsDead || target.ID == p.ShooterID {
			continue
		}
		if p.Position.DistanceTo(target.Position) < hitRadius {
			return target, true
		}
	}
	return nil, false
}

// Clear は全弾を破棄します。ラウンド再開始時に呼ばれます。
func (s *Simulator) Clear() { s.inflight = nil }

// InFlight は飛翔中の弾数を返します。
func (s *Simulator) InFlight() int { return len(s.inflight) }
