package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/itnnovator/annota-backend/internal/review/bridge"
)

const (
	sessionKeyPrefix   = "review:session:" // review:session:{session_id}
	tokenSessionPrefix = "review:token:"   // review:token:{feedback_token} -> set of session ids
	sessionTTL         = 24 * time.Hour
)

var ErrSessionNotFound = errors.New("review session not found")

// SessionRepository keeps bridge sessions in Redis. Sessions are ephemeral
// by design; the TTL reaps anything a browser abandoned.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Save(ctx context.Context, s *bridge.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.sessionKey(s.ID), data, sessionTTL)
	pipe.SAdd(ctx, r.tokenKey(s.FeedbackToken), s.ID)
	pipe.Expire(ctx, r.tokenKey(s.FeedbackToken), sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*bridge.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s bridge.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// ListByToken returns the ids of sessions opened through one feedback link.
func (r *SessionRepository) ListByToken(ctx context.Context, feedbackToken string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.tokenKey(feedbackToken)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions for token: %w", err)
	}
	return ids, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.sessionKey(id))
	pipe.SRem(ctx, r.tokenKey(s.FeedbackToken), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) sessionKey(id string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, id)
}

func (r *SessionRepository) tokenKey(token string) string {
	return fmt.Sprintf("%s%s", tokenSessionPrefix, token)
}
