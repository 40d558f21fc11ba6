package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hospital-management/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore is the allow-list of issued JWTs. A token absent from the
// store is treated as revoked even when its signature is still valid.
type TokenStore interface {
	Store(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

func tokenKey(userID uuid.UUID, tokenType jwt.TokenType, tokenID string) string {
	return fmt.Sprintf("%s_token:%s:%s", tokenType, userID.String(), tokenID)
}

type redisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Store(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKey(userID, tokenType, tokenID), "valid", ttl).Err()
}

func (s *redisTokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(userID, tokenType, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) error {
	return s.client.Del(ctx, tokenKey(userID, tokenType, tokenID)).Err()
}

// RevokeAll drops every token of the user. SCAN is used instead of KEYS so a
// large keyspace does not block Redis.
func (s *redisTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, tokenType := range []jwt.TokenType{jwt.AccessToken, jwt.RefreshToken} {
		pattern := fmt.Sprintf("%s_token:%s:*", tokenType, userID.String())
		iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()

		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewMemoryTokenStore keeps tokens in process memory. It backs tests and
// single-instance runs without Redis.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{tokens: make(map[string]time.Time)}
}

func (s *memoryTokenStore) Store(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenKey(userID, tokenType, tokenID)] = time.Now().Add(ttl)
	return nil
}

func (s *memoryTokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tokenKey(userID, tokenType, tokenID)
	expiresAt, ok := s.tokens[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(s.tokens, key)
		return false, nil
	}
	return true, nil
}

func (s *memoryTokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokenType jwt.TokenType, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenKey(userID, tokenType, tokenID))
	return nil
}

func (s *memoryTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	marker := ":" + userID.String() + ":"
	for key := range s.tokens {
		if strings.Contains(key, marker) {
			delete(s.tokens, key)
		}
	}
	return nil
}
