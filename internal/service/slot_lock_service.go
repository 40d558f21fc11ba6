package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrSlotLocked is returned when another booking for the same doctor and
// date-time currently holds the slot lock.
var ErrSlotLocked = errors.New("appointment slot is locked")

// releaseSlotScript deletes the lock only if it still carries our token, so an
// expired lock re-acquired by another request is left alone.
var releaseSlotScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	RedisSlotKeyPrefix = "appointment:slot:"

	// Timeout for the release call, which runs after the request context may be gone
	slotReleaseTimeout = 2 * time.Second
)

// SlotLocker serializes concurrent bookings of one (doctor, date-time) slot.
// The returned release func must be called once the booking transaction ends.
type SlotLocker interface {
	Acquire(ctx context.Context, doctorID uuid.UUID, at time.Time) (release func(), err error)
}

// SlotKey builds the lock key for a doctor's slot.
func SlotKey(doctorID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s%s:%d", RedisSlotKeyPrefix, doctorID.String(), at.UTC().Unix())
}

type RedisSlotLocker struct {
	redisClient *redis.Client
	ttl         time.Duration
	log         *logrus.Logger
}

func NewRedisSlotLocker(redisClient *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisSlotLocker {
	return &RedisSlotLocker{
		redisClient: redisClient,
		ttl:         ttl,
		log:         log,
	}
}

func (l *RedisSlotLocker) Acquire(ctx context.Context, doctorID uuid.UUID, at time.Time) (func(), error) {
	key := SlotKey(doctorID, at)
	token := uuid.NewString()

	ok, err := l.redisClient.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire slot lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrSlotLocked
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), slotReleaseTimeout)
		defer cancel()

		if err := releaseSlotScript.Run(releaseCtx, l.redisClient, []string{key}, token).Err(); err != nil {
			l.log.Warnf("Failed to release slot lock %s: %+v", key, err)
		}
	}

	return release, nil
}

// MemorySlotLocker holds slot locks in process memory. It is used when the
// service runs as a single instance and in tests.
type MemorySlotLocker struct {
	held sync.Map // map[string]struct{}
}

func NewMemorySlotLocker() *MemorySlotLocker {
	return &MemorySlotLocker{}
}

func (l *MemorySlotLocker) Acquire(ctx context.Context, doctorID uuid.UUID, at time.Time) (func(), error) {
	key := SlotKey(doctorID, at)
	if _, loaded := l.held.LoadOrStore(key, struct{}{}); loaded {
		return nil, ErrSlotLocked
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.held.Delete(key) })
	}, nil
}
