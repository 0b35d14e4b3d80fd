package domain

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// TokenLifetime is how long an approval token stays confirmable.
const TokenLifetime = 24 * time.Hour

var (
	// ErrRequestNotFound covers absent, expired and already-used tokens:
	// an unauthenticated caller must not be able to distinguish them.
	ErrRequestNotFound = errors.New("approval request not found")
	// ErrInvalidPin is distinguishable from not-found: reaching the PIN
	// check already implies the token exists and is live.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrRequestConsumed signals a lost confirm race: another writer set
	// usedAt first.
	ErrRequestConsumed = errors.New("approval request already consumed")
	ErrEmailRequired   = errors.New("recipient email is required")
	ErrDelivery        = errors.New("approval email delivery failed")
)

// RequestState is derived, never stored: usedAt and expiresAt are the
// source of truth. Every non-ACTIVE state collapses to "unusable".
type RequestState string

const (
	StateActive     RequestState = "ACTIVE"
	StateConsumed   RequestState = "CONSUMED"
	StateSuperseded RequestState = "SUPERSEDED"
	StateExpired    RequestState = "EXPIRED"
)

// ApprovalRequest carries a single-use approval token and the salted hash
// of its 6-digit PIN. The PIN itself travels out-of-band (email) and is
// never stored.
type ApprovalRequest struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	Email     string     `json:"email"`
	Token     string     `json:"token"`
	PinHash   string     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// State derives the request's lifecycle state at a given instant. A set
// usedAt means the token was consumed or superseded; the row alone cannot
// tell which, and nothing downstream needs to.
func (r *ApprovalRequest) State(now time.Time) RequestState {
	if r.UsedAt != nil {
		return StateConsumed
	}
	if now.After(r.ExpiresAt) {
		return StateExpired
	}
	return StateActive
}

// Usable reports whether the token may still be confirmed: not used, not
// expired.
func (r *ApprovalRequest) Usable(now time.Time) bool {
	return r.UsedAt == nil && !now.After(r.ExpiresAt)
}

// NewToken generates a high-entropy URL-safe approval token.
func NewToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewPin generates a 6-digit numeric confirmation code.
func NewPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
