package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/transport_mock.go -package=mocks . Transport

// Transport は Connection（物理接続）が依存するI/O境界です。
type Transport interface {
	Read(ctx context.Context) (data []byte, err error)
	Write(ctx context.Context, data []byte) error
	Close(code int32, reason string) error
}

// Sender はバックプレッシャー付きの非同期送信窓口です。
// 送信キューが満杯の場合はブロックせず ErrBackpressure を返します。
type Sender interface {
	Send(data []byte) error
}
