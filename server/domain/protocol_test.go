package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	data := []byte(`{"event":"player_moved","data":{"position":{"x":1,"y":2,"z":3},"rotation":{"y":0.5}}}`)

	env, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Event != EventPlayerMoved {
		t.Errorf("Event = %s, want %s", env.Event, EventPlayerMoved)
	}
	if len(env.Data) == 0 {
		t.Error("Data should not be empty")
	}
}

func TestParseEnvelopeWithoutData(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"event":"join"}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Event != EventJoin {
		t.Errorf("Event = %s, want %s", env.Event, EventJoin)
	}
	if env.Data != nil {
		t.Errorf("Data = %s, want nil", env.Data)
	}
}

func TestParseEnvelopeInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("not json")},
		{"empty input", []byte("")},
		{"missing event", []byte(`{"data":{}}`)},
		{"empty event", []byte(`{"event":""}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvelope(tt.data)
			if !errors.Is(err, ErrInvalidEnvelope) {
				t.Errorf("expected ErrInvalidEnvelope, got %v", err)
			}
		})
	}
}

func TestNewEventRoundTrip(t *testing.T) {
	payload := MovePayload{
		PlayerID: "p1",
		Position: Vec3{X: 1.5, Y: 0, Z: -2.5},
		Rotation: Rotation{Y: 0.25},
	}

	data, err := NewEvent(EventPlayerMoved, payload)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	env, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	decoded, err := ParseMovePayload(env.Data)
	if err != nil {
		t.Fatalf("ParseMovePayload failed: %v", err)
	}

	if decoded.PlayerID != payload.PlayerID {
		t.Errorf("PlayerID = %s, want %s", decoded.PlayerID, payload.PlayerID)
	}
	if decoded.Position != payload.Position {
		t.Errorf("Position = %+v, want %+v", decoded.Position, payload.Position)
	}
	if decoded.Rotation != payload.Rotation {
		t.Errorf("Rotation = %+v, want %+v", decoded.Rotation, payload.Rotation)
	}
}

func TestNewEventOmitsNilData(t *testing.T) {
	data, err := NewEvent(EventGameRestart, nil)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	want := `{"event":"game_restart"}`
	if string(data) != want {
		t.Errorf("encoded = %s, want %s", data, want)
	}
}

// クライアントが期待するキャメルケースのキー名になっていることを確認
func TestPayloadFieldNames(t *testing.T) {
	data, err := NewEvent(EventPlayerHit, HitPayload{
		ShooterID:    "a",
		TargetID:     "b",
		Damage:       1,
		ProjectileID: "a-1",
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw["data"], &fields); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}

	for _, key := range []string{"shooterId", "targetId", "damage", "projectileId"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field %q in payload: %s", key, raw["data"])
		}
	}
}

func TestParseMovePayloadInvalid(t *testing.T) {
	if _, err := ParseMovePayload(nil); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for empty payload, got %v", err)
	}
	if _, err := ParseMovePayload([]byte(`{"position":`)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for broken json, got %v", err)
	}
}

func TestParseShootPayloadInvalid(t *testing.T) {
	if _, err := ParseShootPayload(nil); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for empty payload, got %v", err)
	}
	if _, err := ParseShootPayload([]byte(`[]`)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for wrong shape, got %v", err)
	}
}

func TestEncodePingPong(t *testing.T) {
	env, err := ParseEnvelope(EncodePing())
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Event != EventPing {
		t.Errorf("Event = %s, want %s", env.Event, EventPing)
	}

	env, err = ParseEnvelope(EncodePong())
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Event != EventPong {
		t.Errorf("Event = %s, want %s", env.Event, EventPong)
	}
}
