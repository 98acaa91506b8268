package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	writeChCapacity          = 1024
	defaultIdleTimeout       = 60 * time.Second
	defaultHeartbeatInterval = 20 * time.Second
)

var (
	ErrInitializationFailed = errors.New("initialization failed")
	ErrBackpressure         = errors.New("write buffer full")
	ErrSessionClosed        = errors.New("session closed")
	ErrIdleTimeout          = errors.New("idle timeout")
)

// SessionEndpoint はセッションの読み書きループとルームへの橋渡しを担います。
// Run が返った時点で接続はクローズ済みで、ルームからも離脱しています。
type SessionEndpoint struct {
	session *Session
	conn    *Connection
	room    *Room

	writeCh chan []byte
	limiter *rate.Limiter

	idleTimeout       time.Duration
	heartbeatInterval time.Duration

	closed atomic.Bool
	cancel context.CancelFunc
}

var _ Sender = (*SessionEndpoint)(nil)

type EndpointOption func(*SessionEndpoint)

// WithIdleTimeout は無活動と判定するまでの時間を設定します。0以下で監視を無効化します。
func WithIdleTimeout(d time.Duration) EndpointOption {
	return func(ep *SessionEndpoint) { ep.idleTimeout = d }
}

// WithHeartbeatInterval は ping の送信間隔を設定します。
func WithHeartbeatInterval(d time.Duration) EndpointOption {
	return func(ep *SessionEndpoint) { ep.heartbeatInterval = d }
}

// WithMessageRateLimit は受信メッセージのレート制限を設定します。
// 超過分は切断せずに読み捨てます。
func WithMessageRateLimit(perSecond float64, burst int) EndpointOption {
	return func(ep *SessionEndpoint) { ep.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func NewSessionEndpoint(session *Session, conn *Connection, room *Room, opts ...EndpointOption) (*SessionEndpoint, error) {
	if session == nil {
		return nil, errors.New("session is nil")
	}
	if conn == nil {
		return nil, errors.New("connection is nil")
	}
	if room == nil {
		return nil, errors.New("room is nil")
	}
	ep := &SessionEndpoint{
		session:           session,
		conn:              conn,
		room:              room,
		writeCh:           make(chan []byte, writeChCapacity),
		idleTimeout:       defaultIdleTimeout,
		heartbeatInterval: defaultHeartbeatInterval,
	}
	for _, opt := range opts {
		opt(ep)
	}
	return ep, nil
}

func (ep *SessionEndpoint) SessionID() SessionID {
	return ep.session.ID()
}

// Run はセッションの一生を駆動します。いずれかのループが終わるか
// ctx が取り消されるまでブロックし、後始末を終えてから返ります。
func (ep *SessionEndpoint) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	ep.cancel = cancel
	defer cancel()

	if err := ep.room.Attach(ctx, ep); err != nil {
		return fmt.Errorf("%w: %w", ErrInitializationFailed, err)
	}
	defer func() {
		ep.room.Detach(ep.session.ID())
		if err := ep.conn.Close("session finished"); err != nil {
			slog.WarnContext(ctx, "failed to close connection",
				"sessionID", ep.session.ID(), "error", err)
		}
	}()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return ep.readLoop(ctx) })
	eg.Go(func() error { return ep.writeLoop(ctx) })
	eg.Go(func() error { return ep.ownerLoop(ctx) })
	eg.Go(func() error {
		hb := NewHeartbeatService(ep, ep.heartbeatInterval)
		return hb.Run(ctx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (ep *SessionEndpoint) readLoop(ctx context.Context) error {
	for {
		data, err := ep.conn.Read(ctx)
		if err != nil {
			return err
		}
		ep.session.TouchRead()

		if ep.limiter != nil && !ep.limiter.Allow() {
			slog.WarnContext(ctx, "message rate limit exceeded, dropping",
				"sessionID", ep.session.ID())
			continue
		}

		env, err := ParseEnvelope(data)
		if err != nil {
			slog.WarnContext(ctx, "failed to parse message",
				"sessionID", ep.session.ID(), "error", err)
			continue
		}

		// pong はルームまで届けずここで刻む
		if env.Event == EventPong {
			ep.session.TouchPong()
			continue
		}

		if err := ep.room.Deliver(ep.session.ID(), env); err != nil {
			slog.WarnContext(ctx, "failed to deliver message to room",
				"sessionID", ep.session.ID(), "event", env.Event, "error", err)
		}
	}
}

func (ep *SessionEndpoint) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-ep.writeCh:
			if err := ep.conn.Write(ctx, data); err != nil {
				return err
			}
			ep.session.TouchWrite()
		}
	}
}

// ownerLoop はアイドル監視を行います。
func (ep *SessionEndpoint) ownerLoop(ctx context.Context) error {
	if ep.idleTimeout <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	interval := ep.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if idle, reason := ep.session.IsIdle(ep.idleTimeout); idle {
				slog.InfoContext(ctx, "closing idle session",
					"sessionID", ep.session.ID(), "reason", reason.String())
				return ErrIdleTimeout
			}
		}
	}
}

// Send は送信キューへ積みます。満杯時はブロックせず ErrBackpressure を返します。
func (ep *SessionEndpoint) Send(data []byte) error {
	if ep.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case ep.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close はセッションの終了を指示します。多重呼び出しは無視されます。
func (ep *SessionEndpoint) Close() {
	if !ep.closed.CompareAndSwap(false, true) {
		return
	}
	if ep.cancel != nil {
		ep.cancel()
	}
}
