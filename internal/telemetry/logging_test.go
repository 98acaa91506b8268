package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestFanoutHandlerDuplicatesRecords(t *testing.T) {
	var first, second bytes.Buffer
	logger := slog.New(NewFanoutHandler(
		slog.NewTextHandler(&first, nil),
		slog.NewTextHandler(&second, nil),
	))

	logger.Info("tick finished", "durationMs", 4)

	if !strings.Contains(first.String(), "tick finished") {
		t.Errorf("first handler output = %q, want it to contain the message", first.String())
	}
	if !strings.Contains(second.String(), "tick finished") {
		t.Errorf("second handler output = %q, want it to contain the message", second.String())
	}
}

func TestFanoutHandlerSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	h := NewFanoutHandler(nil, slog.NewTextHandler(&buf, nil), nil)

	if got := len(h.handlers); got != 1 {
		t.Fatalf("len(handlers) = %d, want 1", got)
	}

	slog.New(h).Info("room opened")
	if !strings.Contains(buf.String(), "room opened") {
		t.Errorf("output = %q, want it to contain %q", buf.String(), "room opened")
	}
}

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	logger := slog.New(NewFanoutHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Info("player joined")

	if !strings.Contains(debugBuf.String(), "player joined") {
		t.Errorf("debug handler missed the record: %q", debugBuf.String())
	}
	if errorBuf.Len() != 0 {
		t.Errorf("error-level handler received an info record: %q", errorBuf.String())
	}
}

func TestFanoutHandlerEnabled(t *testing.T) {
	ctx := context.Background()
	h := NewFanoutHandler(
		slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Enabled(info) = true, want false")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("Enabled(error) = false, want true")
	}
}

func TestFanoutHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewFanoutHandler(slog.NewTextHandler(&buf, nil)))

	base.With("room", "main").WithGroup("game").Info("round over", "winner", 1)

	out := buf.String()
	if !strings.Contains(out, "room=main") {
		t.Errorf("output = %q, want the room attribute", out)
	}
	if !strings.Contains(out, "game.winner=1") {
		t.Errorf("output = %q, want the grouped winner attribute", out)
	}
}

func TestNewLoggerWithoutProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, nil, "test")
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Debug("hidden")
	logger.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record was not filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("output = %q, want the info record", out)
	}
}

func TestNewLoggerDisabledProvider(t *testing.T) {
	p, err := New(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, p, "test")

	logger.Info("server started")
	if !strings.Contains(buf.String(), "server started") {
		t.Errorf("output = %q, want the record on the text handler", buf.String())
	}
}
