package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "garland/server/domain"
)

// chanSender はテスト用のSender実装で、送信データをチャネルに流します。
type chanSender struct {
	ch   chan []byte
	full bool
}

func (s *chanSender) Send(data []byte) error {
	if s.full {
		return domain.ErrBackpressure
	}
	s.ch <- data
	return nil
}

// 少なくとも1つのpingが送信されることを確認
func TestHeartbeatService_SendsPing(t *testing.T) {
	sender := &chanSender{ch: make(chan []byte, 16)}
	hb := domain.NewHeartbeatService(sender, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hb.Run(ctx)

	select {
	case msg := <-sender.ch:
		env, err := domain.ParseEnvelope(msg)
		if err != nil {
			t.Fatalf("ParseEnvelope failed: %v", err)
		}
		if env.Event != domain.EventPing {
			t.Errorf("Event = %s, want %s", env.Event, domain.EventPing)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ping message")
	}
}

// コンテキストのキャンセルでRunが停止することを確認
func TestHeartbeatService_StopsOnContextCancel(t *testing.T) {
	sender := &chanSender{ch: make(chan []byte, 16)}
	hb := domain.NewHeartbeatService(sender, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- hb.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("HeartbeatService did not stop after context cancel")
	}
}

// 書き込みバッファが満杯でもハートビートが止まらないことを確認
func TestHeartbeatService_ToleratesBackpressure(t *testing.T) {
	sender := &chanSender{full: true}
	hb := domain.NewHeartbeatService(sender, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- hb.Run(ctx)
	}()

	select {
	case err := <-done:
		// ErrBackpressureで自ら終了せず、ctxの期限まで走り続ける
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Run error = %v, want context.DeadlineExceeded", err)
		}
	case <-time.After(time.Second):
		t.Fatal("HeartbeatService blocked on backpressure")
	}
}

// interval<=0 ではpingを送らずctxの終了だけを待つ
func TestHeartbeatService_DisabledInterval(t *testing.T) {
	sender := &chanSender{ch: make(chan []byte, 16)}
	hb := domain.NewHeartbeatService(sender, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- hb.Run(ctx)
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Run error = %v, want context.DeadlineExceeded", err)
		}
	case <-time.After(time.Second):
		t.Fatal("HeartbeatService did not stop")
	}

	select {
	case msg := <-sender.ch:
		t.Errorf("unexpected message sent: %s", msg)
	default:
	}
}
