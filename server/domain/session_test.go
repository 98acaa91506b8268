package domain

import (
	"testing"
	"time"
)

func TestNewSession_InitializesTimestamps(t *testing.T) {
	before := time.Now().UnixMilli()
	s := NewSession()
	after := time.Now().UnixMilli()

	if s.ID() == "" {
		t.Error("ID should not be empty")
	}

	stamps := map[string]int64{
		"lastRead":  s.lastRead.Load(),
		"lastWrite": s.lastWrite.Load(),
		"lastPong":  s.lastPong.Load(),
	}
	for name, stamp := range stamps {
		if stamp < before || stamp > after {
			t.Errorf("%s = %d, want within [%d, %d]", name, stamp, before, after)
		}
	}
}

func TestSession_IDsAreUnique(t *testing.T) {
	a := NewSession()
	b := NewSession()
	if a.ID() == b.ID() {
		t.Errorf("sessions share an ID: %s", a.ID())
	}
}

func TestSession_IsIdle(t *testing.T) {
	s := NewSession()

	idle, reason := s.IsIdle(time.Minute)
	if idle {
		t.Errorf("fresh session should not be idle, reason = %s", reason)
	}

	// 受信とハートビート応答の両方が途絶えて初めてアイドルになる
	past := time.Now().Add(-2 * time.Minute).UnixMilli()
	s.lastRead.Store(past)
	s.lastPong.Store(past)

	idle, reason = s.IsIdle(time.Minute)
	if !idle {
		t.Fatal("stale session should be idle")
	}
	if !reason.Has(IdleRead) || !reason.Has(IdleHeartbeat) {
		t.Errorf("reason = %s, want read|heartbeat", reason)
	}
}

func TestSession_IsIdle_FreshPongKeepsAlive(t *testing.T) {
	s := NewSession()
	past := time.Now().Add(-2 * time.Minute).UnixMilli()
	s.lastRead.Store(past)

	// 受信が古くてもpongが新しいうちは切らない
	idle, reason := s.IsIdle(time.Minute)
	if idle {
		t.Error("session with fresh pong should not be idle")
	}
	if !reason.Has(IdleRead) {
		t.Errorf("reason = %s, want it to include read", reason)
	}
	if reason.Has(IdleHeartbeat) {
		t.Errorf("reason = %s, should not include heartbeat", reason)
	}
}

func TestSession_IsIdle_Disabled(t *testing.T) {
	s := NewSession()
	past := time.Now().Add(-time.Hour).UnixMilli()
	s.lastRead.Store(past)
	s.lastPong.Store(past)

	idle, reason := s.IsIdle(0)
	if idle {
		t.Error("idle check should be disabled with timeout <= 0")
	}
	if reason != IdleDisabled {
		t.Errorf("reason = %s, want disabled", reason)
	}
}

func TestSession_TouchUpdatesTimestamps(t *testing.T) {
	s := NewSession()
	past := time.Now().Add(-time.Hour).UnixMilli()
	s.lastRead.Store(past)
	s.lastWrite.Store(past)
	s.lastPong.Store(past)

	s.TouchRead()
	s.TouchWrite()
	s.TouchPong()

	if s.lastRead.Load() == past {
		t.Error("TouchRead did not update lastRead")
	}
	if s.lastWrite.Load() == past {
		t.Error("TouchWrite did not update lastWrite")
	}
	if s.lastPong.Load() == past {
		t.Error("TouchPong did not update lastPong")
	}
}

func TestIdleReason_String(t *testing.T) {
	tests := []struct {
		name string
		r    IdleReason
		want string
	}{
		{"none", IdleNone, "none"},
		{"read", IdleRead, "read"},
		{"heartbeat", IdleHeartbeat, "heartbeat"},
		{"both", IdleRead | IdleHeartbeat, "read|heartbeat"},
		{"disabled", IdleDisabled, "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
