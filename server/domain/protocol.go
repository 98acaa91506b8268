package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidEnvelope = errors.New("invalid envelope")
	ErrInvalidPayload  = errors.New("invalid payload")
)

// EventName はプロトコル上のイベント識別子です。
type EventName string

// クライアント→サーバー
const (
	EventJoin        EventName = "join"
	EventPlayerShoot EventName = "player_shoot"
	EventPlayerMoved EventName = "player_moved"
	EventFlagDropped EventName = "flag_dropped"
	EventPong        EventName = "pong"
)

// サーバー→クライアント
const (
	EventWelcome           EventName = "welcome"
	EventGameState         EventName = "game_state"
	EventPlayerJoined      EventName = "player_joined"
	EventPlayerLeft        EventName = "player_left"
	EventMapData           EventName = "map_data"
	EventProjectileCreated EventName = "projectile_created"
	EventPlayerHit         EventName = "player_hit"
	EventPlayerDied        EventName = "player_died"
	EventPlayerRespawned   EventName = "player_respawned"
	EventFlagCaptured      EventName = "flag_captured"
	EventFlagReturned      EventName = "flag_returned"
	EventGameOver          EventName = "game_over"
	EventGameRestart       EventName = "game_restart"
	EventPing              EventName = "ping"
)

// Envelope はワイヤ上のメッセージ形式です。
// data はイベントごとのペイロードで、イベントによっては省略されます。
type Envelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ParseEnvelope は受信バイト列をエンベロープへデコードします。
// JSONとして不正、またはイベント名が空の場合は ErrInvalidEnvelope を返します。
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("%w: missing event name", ErrInvalidEnvelope)
	}
	return &env, nil
}

// NewEvent はイベント名とペイロードからワイヤ形式のバイト列を組み立てます。
func NewEvent(event EventName, payload any) ([]byte, error) {
	env := struct {
		Event EventName `json:"event"`
		Data  any       `json:"data,omitempty"`
	}{Event: event, Data: payload}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event, err)
	}
	return data, nil
}

func mustEvent(event EventName) []byte {
	data, err := NewEvent(event, nil)
	if err != nil {
		panic(err)
	}
	return data
}

// EncodePing はハートビート用の ping イベントを返します。
func EncodePing() []byte { return mustEvent(EventPing) }

// EncodePong は ping への応答イベントを返します。
func EncodePong() []byte { return mustEvent(EventPong) }

// MovePayload は player_moved の入出力ペイロードです。
// サーバーからの中継時は PlayerID にサーバー側で確定したIDが入ります。
type MovePayload struct {
	PlayerID string   `json:"playerId,omitempty"`
	Position Vec3     `json:"position"`
	Rotation Rotation `json:"rotation"`
}

// ShootPayload は player_shoot の入力ペイロードです。
type ShootPayload struct {
	PlayerID   string `json:"playerId,omitempty"`
	Position   Vec3   `json:"position"`
	Direction  Vec3   `json:"direction"`
	WeaponType string `json:"weaponType,omitempty"`
}

// WelcomePayload は接続直後に自分のIDを通知します。
type WelcomePayload struct {
	PlayerID string `json:"playerId"`
}

// ProjectileCreatedPayload は発射承認の全員向け通知です。
type ProjectileCreatedPayload struct {
	ID         string  `json:"id"`
	ShooterID  string  `json:"shooterId"`
	TeamID     int     `json:"teamId"`
	Position   Vec3    `json:"position"`
	Direction  Vec3    `json:"direction"`
	Speed      float64 `json:"speed"`
	Gravity    float64 `json:"gravity"`
	WeaponType string  `json:"weaponType"`
}

// HitPayload は被弾通知です。
type HitPayload struct {
	ShooterID    string `json:"shooterId"`
	TargetID     string `json:"targetId"`
	Damage       int    `json:"damage"`
	ProjectileID string `json:"projectileId,omitempty"`
}

// DeathPayload は死亡通知です。
type DeathPayload struct {
	PlayerID string `json:"playerId"`
	KillerID string `json:"killerId"`
}

// RespawnPayload はリスポーン通知です。
type RespawnPayload struct {
	PlayerID string `json:"playerId"`
	Position Vec3   `json:"position"`
}

// FlagCapturedPayload はフラッグ奪取通知です。
type FlagCapturedPayload struct {
	PlayerID string `json:"playerId"`
	TeamID   int    `json:"teamId"`
}

// FlagReturnedPayload はフラッグ持ち帰り（勝利）通知です。
type FlagReturnedPayload struct {
	TeamID int `json:"teamId"`
}

// FlagDroppedPayload はフラッグ落下通知です。クライアントからの
// 自発的なドロップ要求ではペイロードは無視され、サーバー側の座標が使われます。
type FlagDroppedPayload struct {
	PlayerID string `json:"playerId"`
	Position Vec3   `json:"position"`
}

// GameOverPayload はラウンド終了通知です。
type GameOverPayload struct {
	WinningTeam int `json:"winningTeam"`
}

// ParseMovePayload は player_moved のペイロードをデコードします。
func ParseMovePayload(data json.RawMessage) (*MovePayload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty move payload", ErrInvalidPayload)
	}
	var p MovePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return &p, nil
}

// ParseShootPayload は player_shoot のペイロードをデコードします。
func ParseShootPayload(data json.RawMessage) (*ShootPayload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty shoot payload", ErrInvalidPayload)
	}
	var p ShootPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return &p, nil
}
