package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidTicket      = errors.New("invalid ticket")
	ErrTicketRoomMismatch = errors.New("ticket room mismatch")
)

// TicketClaims はルーム入場チケットのクレームです。
type TicketClaims struct {
	RoomID string `json:"roomId"`
	jwt.RegisteredClaims
}

// IssueTicket は roomID への入場チケットを発行します。
func IssueTicket(secret []byte, roomID RoomID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TicketClaims{
		RoomID: string(roomID),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}
	return signed, nil
}

// VerifyTicket はチケットを検証し、roomID と一致することを確認します。
func VerifyTicket(secret []byte, tokenString string, roomID RoomID) error {
	var claims TicketClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTicket, err)
	}
	if !token.Valid {
		return ErrInvalidTicket
	}
	if claims.RoomID != string(roomID) {
		return ErrTicketRoomMismatch
	}
	return nil
}
