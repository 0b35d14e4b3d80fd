package domain

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

var (
	// ErrLinkNotFound covers missing and inactive links alike: the public
	// surface must not reveal which.
	ErrLinkNotFound = errors.New("feedback link not found or inactive")
)

// FeedbackLink is a public, revocable token granting comment access to one
// project without authentication.
type FeedbackLink struct {
	Token     string    `json:"token"`
	ProjectID string    `json:"projectId"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewToken generates a short URL-safe share token.
func NewToken() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
