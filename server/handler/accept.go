package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	wstransport "garland/server/adapter/websocket"
	"garland/server/domain"
)

// AcceptOptions は接続受理時のセッション設定です。TicketSecret が空の
// 場合、チケット検証は行いません。
type AcceptOptions struct {
	TicketSecret      string
	IdleTimeout       time.Duration
	HeartbeatInterval time.Duration
	MessageRate       float64
	MessageBurst      int
}

// AcceptHandler はWebSocket接続を受理し、セッションをルームへつなぎます。
type AcceptHandler struct {
	rooms  *domain.RoomManager
	tracer trace.Tracer
	opts   AcceptOptions
}

func NewAcceptHandler(rooms *domain.RoomManager, tracer trace.Tracer, opts AcceptOptions) *AcceptHandler {
	return &AcceptHandler{rooms: rooms, tracer: tracer, opts: opts}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID := domain.RoomID(r.URL.Query().Get("room"))
	if roomID == "" {
		roomID = domain.DefaultRoomID
	}

	// チケット検証から配線までを短いスパンで囲む。セッション本体の寿命は含めない。
	ctx, span := h.tracer.Start(ctx, "ws.accept",
		trace.WithAttributes(attribute.String("room.id", string(roomID))))

	if h.opts.TicketSecret != "" {
		ticket := r.URL.Query().Get("ticket")
		if ticket == "" {
			span.End()
			http.Error(w, "missing ticket", http.StatusUnauthorized)
			return
		}
		if err := domain.VerifyTicket([]byte(h.opts.TicketSecret), ticket, roomID); err != nil {
			span.End()
			slog.WarnContext(ctx, "ticket verification failed", "roomID", roomID, "error", err)
			status := http.StatusUnauthorized
			if errors.Is(err, domain.ErrTicketRoomMismatch) {
				status = http.StatusForbidden
			}
			http.Error(w, "invalid ticket", status)
			return
		}
	}

	room, err := h.rooms.GetOrCreate(roomID)
	if err != nil {
		span.End()
		slog.ErrorContext(ctx, "failed to get room", "roomID", roomID, "error", err)
		http.Error(w, "room unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 開発用: Origin チェックをスキップ
	})
	if err != nil {
		span.End()
		slog.ErrorContext(ctx, "failed to accept", "error", err)
		return
	}

	session := domain.NewSession()
	transport := wstransport.NewTransportFrom(conn)
	connection := domain.NewConnection(session.ID(), transport)

	epOpts := []domain.EndpointOption{
		domain.WithIdleTimeout(h.opts.IdleTimeout),
		domain.WithHeartbeatInterval(h.opts.HeartbeatInterval),
	}
	if h.opts.MessageRate > 0 {
		epOpts = append(epOpts, domain.WithMessageRateLimit(h.opts.MessageRate, h.opts.MessageBurst))
	}
	endpoint, err := domain.NewSessionEndpoint(session, connection, room, epOpts...)
	if err != nil {
		span.End()
		slog.ErrorContext(ctx, "failed to create session endpoint", "error", err)
		_ = connection.Close("initialization failed")
		return
	}

	slog.InfoContext(ctx, "accepted new connection", "sessionID", session.ID(), "roomID", roomID)
	span.End()

	if err := endpoint.Run(ctx); err != nil && !isExpectedClose(err) {
		slog.WarnContext(ctx, "session ended with error", "sessionID", session.ID(), "error", err)
	}
}

// isExpectedClose は正常系の切断かどうかを判定します。
func isExpectedClose(err error) bool {
	if errors.Is(err, domain.ErrIdleTimeout) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
