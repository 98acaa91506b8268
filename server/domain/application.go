package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/application_mock.go -package=mocks . Application

// Application はルーム上で動くゲームロジックの境界です。
// すべてのメソッドはルームのゴルーチンから直列に呼ばれるため、
// 実装側でロックを取る必要はありません。
type Application interface {
	// HandleEvent は受信イベントを1件処理します。
	HandleEvent(ctx context.Context, id SessionID, env *Envelope) error
	// HandleLeave はセッション離脱時に呼ばれます。
	HandleLeave(ctx context.Context, id SessionID)
	// Tick はシミュレーションを1ステップ進めます。
	Tick(ctx context.Context)
}

// Broadcaster はアプリケーションがルームの参加者へ送信するための窓口です。
type Broadcaster interface {
	// Broadcast は全参加者へ送信します。
	Broadcast(ctx context.Context, data []byte)
	// BroadcastExcept は except を除く全参加者へ送信します。
	BroadcastExcept(ctx context.Context, except SessionID, data []byte)
	// Send は特定の参加者へ送信します。
	Send(ctx context.Context, id SessionID, data []byte)
}

// ApplicationFactory はルームごとにアプリケーションを生成します。
// ルーム自身が Broadcaster として渡されます。
type ApplicationFactory func(id RoomID, bc Broadcaster) Application
