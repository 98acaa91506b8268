package domain

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SessionID はクライアント接続の安定した識別子です。
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// IdleReason はセッションがアイドルと判定された根拠のビットマスクです。
type IdleReason uint8

const (
	IdleNone      IdleReason = 0
	IdleRead      IdleReason = 1 << 0
	IdleHeartbeat IdleReason = 1 << 1
	IdleDisabled  IdleReason = 1 << 7 // timeout<=0 のとき
)

func (r IdleReason) Has(x IdleReason) bool { return r&x != 0 }

func (r IdleReason) String() string {
	if r == IdleNone {
		return "none"
	}
	if r == IdleDisabled {
		return "disabled"
	}
	var parts []string
	if r.Has(IdleRead) {
		parts = append(parts, "read")
	}
	if r.Has(IdleHeartbeat) {
		parts = append(parts, "heartbeat")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
	return strings.Join(parts, "|")
}

// Session は1つのクライアント接続の論理的な身元と活動記録を保持します。
// タイムスタンプは UnixMilli で、複数の goroutine から更新されます。
type Session struct {
	id SessionID

	lastRead  atomic.Int64
	lastWrite atomic.Int64
	lastPong  atomic.Int64
}

func NewSession() *Session {
	s := &Session{id: NewSessionID()}
	now := time.Now().UnixMilli()
	s.lastRead.Store(now)
	s.lastWrite.Store(now)
	s.lastPong.Store(now)
	return s
}

func (s *Session) ID() SessionID { return s.id }

func (s *Session) TouchRead()  { s.lastRead.Store(time.Now().UnixMilli()) }
func (s *Session) TouchWrite() { s.lastWrite.Store(time.Now().UnixMilli()) }
func (s *Session) TouchPong()  { s.lastPong.Store(time.Now().UnixMilli()) }

// IsIdle は受信とハートビート応答の両方が timeout を超えて途絶えている場合に
// true を返します。書き込みはサーバー主導のため判定に含めません。
func (s *Session) IsIdle(timeout time.Duration) (bool, IdleReason) {
	if timeout <= 0 {
		return false, IdleDisabled
	}
	now := time.Now().UnixMilli()
	limit := timeout.Milliseconds()

	var reason IdleReason
	if now-s.lastRead.Load() > limit {
		reason |= IdleRead
	}
	if now-s.lastPong.Load() > limit {
		reason |= IdleHeartbeat
	}
	idle := reason.Has(IdleRead) && reason.Has(IdleHeartbeat)
	return idle, reason
}
