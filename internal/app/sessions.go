package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

const (
	timeFormat    = "2006-01-02 15:04:05"
	sessionKeyTpl = "session:%s" // session:${token}
	tokenPrefix   = "sk-semla-"
)

// SessionManager keeps sessions as redis hashes keyed by an opaque bearer
// token. The role is snapshotted into the hash when the session is created
// or refreshed, so admin role changes take effect on the next refresh
// rather than being pushed live.
type SessionManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSessionManager(redisURL string, ttl time.Duration) (*SessionManager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &SessionManager{redis: client, ttl: ttl}, nil
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

func (sm *SessionManager) Create(ctx context.Context, user *models.User, role string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	now := time.Now().UTC()

	pipe := sm.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"user_id":          user.ID,
		"email":            user.Email,
		"role":             role,
		"created_dttm_utc": now.Format(timeFormat),
	})
	pipe.Expire(ctx, key, sm.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

func (sm *SessionManager) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	key := fmt.Sprintf(sessionKeyTpl, token)

	fields, err := sm.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		logger.Debug.Printf("Session not found for key: %s", key)
		return nil, ErrUnauthenticated
	}

	return &models.Identity{
		UserID: fields["user_id"],
		Email:  fields["email"],
		Role:   fields["role"],
	}, nil
}

// Refresh re-reads the role from the store and rewrites the session hash.
// This is the only point where a promote/demote becomes visible to an
// already signed-in user.
func (sm *SessionManager) Refresh(ctx context.Context, token string, st store.PortalStore) (*models.Identity, error) {
	identity, err := sm.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	role, err := st.GetUserRole(identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh role: %w", err)
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	pipe := sm.redis.Pipeline()
	pipe.HSet(ctx, key, "role", role)
	pipe.Expire(ctx, key, sm.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	identity.Role = role
	return identity, nil
}

func (sm *SessionManager) Invalidate(ctx context.Context, token string) error {
	key := fmt.Sprintf(sessionKeyTpl, token)
	return sm.redis.Del(ctx, key).Err()
}

func (sm *SessionManager) Close() error {
	if sm.redis != nil {
		return sm.redis.Close()
	}
	return nil
}
