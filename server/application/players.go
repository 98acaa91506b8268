package application

import (
	"time"

	"garland/server/domain"
)

// MaxHealth はプレイヤーの最大体力です。
const MaxHealth = 3

// PlayerState は1セッションぶんのプレイヤー状態です。
// JSONタグは game_state / player_joined のペイロード形式と揃えています。
type PlayerState struct {
	ID       domain.SessionID `json:"playerId"`
	Position domain.Vec3      `json:"position"`
	Rotation domain.Rotation  `json:"rotation"`
	TeamID   int              `json:"teamId"`
	Health   int              `json:"health"`
	IsDead   bool             `json:"isDead"`
	HasFlag  bool             `json:"hasFlag"`

	respawnAt time.Time
}

// Roster は参加中プレイヤーの台帳です。列挙順は参加順で安定しています。
type Roster struct {
	players map[domain.SessionID]*PlayerState
	order   []domain.SessionID
	counts  [2]int
}

func NewRoster() *Roster {
	return &Roster{players: make(map[domain.SessionID]*PlayerState)}
}

// Join はプレイヤーを登録し、人数の少ない側のチームへ割り当てます。
// 同数の場合はチーム1に入ります。
func (r *Roster) Join(id domain.SessionID) *PlayerState {
	team := 1
	if r.counts[0] > r.counts[1] {
		team = 2
	}
	p := &PlayerState{
		ID:     id,
		TeamID: team,
		Health: MaxHealth,
	}
	r.players[id] = p
	r.order = append(r.order, id)
	r.counts[team-1]++
	return p
}

func (r *Roster) Get(id domain.SessionID) (*PlayerState, bool) {
	p, ok := r.players[id]
	return p, ok
}

// Remove はプレイヤーを台帳から外し、チーム人数を減らします。
func (r *Roster) Remove(id domain.SessionID) {
	p, ok := r.players[id]
	if !ok {
		return
	}
	delete(r.players, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.counts[p.TeamID-1]--
}

// Players は参加順のプレイヤー一覧を返します。
func (r *Roster) Players() []*PlayerState {
	out := make([]*PlayerState, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out
}

// Carrier はフラッグ保持者を返します。保持者は高々1人です。
func (r *Roster) Carrier() (*PlayerState, bool) {
	for _, id := range r.order {
		if p := r.players[id]; p.HasFlag {
			return p, true
		}
	}
	return nil, false
}

func (r *Roster) Len() int { return len(r.players) }

// TeamCounts は（チーム1, チーム2）の人数を返します。
func (r *Roster) TeamCounts() (int, int) { return r.counts[0], r.counts[1] }
