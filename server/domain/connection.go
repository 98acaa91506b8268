package domain

import (
	"context"
	"sync/atomic"
)

const closeCodeNormal = 1000

// Connection はセッションに紐づく物理接続を表します。
type Connection struct {
	SessionID    SessionID
	ConnectionID string
	transport    Transport
	closed       atomic.Bool
}

func NewConnection(sessionID SessionID, transport Transport) *Connection {
	return &Connection{
		SessionID:    sessionID,
		ConnectionID: string(sessionID),
		transport:    transport,
	}
}

func (c *Connection) Read(ctx context.Context) ([]byte, error) {
	return c.transport.Read(ctx)
}

func (c *Connection) Write(ctx context.Context, data []byte) error {
	return c.transport.Write(ctx, data)
}

// Close は接続を正常クローズします。二重クローズは無視されます。
func (c *Connection) Close(reason string) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.transport.Close(closeCodeNormal, reason)
}
