package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// HeartbeatService は一定間隔で ping を送り続けます。
// 応答の監視は Session 側のタイムスタンプに任せます。
type HeartbeatService struct {
	sender   Sender
	interval time.Duration
}

func NewHeartbeatService(sender Sender, interval time.Duration) *HeartbeatService {
	return &HeartbeatService{sender: sender, interval: interval}
}

func (h *HeartbeatService) Run(ctx context.Context) error {
	if h.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := h.sender.Send(EncodePing()); err != nil {
				if errors.Is(err, ErrBackpressure) {
					// 詰まっていても切断はアイドル監視側に任せる
					slog.DebugContext(ctx, "heartbeat skipped: write buffer full")
					continue
				}
				return err
			}
		}
	}
}
