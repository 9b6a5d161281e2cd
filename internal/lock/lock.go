package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when a lease cannot be obtained in time.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serializes read-decide-write sequences per key. The engine keys
// locks by user and day so two concurrent commands for the same participant
// cannot interleave against the ledger.
type Locker interface {
	// Acquire blocks until the key is held or ctx is done, and returns a
	// release function.
	Acquire(ctx context.Context, key string) (func(), error)
}

// Memory is a process-local locker backed by per-key mutexes. Entries are
// kept for the process lifetime; the key space is bounded by participants
// times days seen by this process.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemory creates an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*sync.Mutex)}
}

// Acquire takes the per-key mutex.
func (m *Memory) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock, nil
}

// Redis is a cross-process locker using SET NX leases. The lease TTL bounds
// how long a crashed holder can block others.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a locker with the given lease TTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{client: client, ttl: ttl}
}

// releaseScript deletes the lease only while it still carries the caller's
// token, so a holder that outlived its TTL cannot delete the next holder's
// lease.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// Acquire polls SET NX until the lease is held or ctx is done.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	full := "rewaq:lock:" + key
	token := uuid.NewString()
	for {
		ok, err := r.client.SetNX(ctx, full, token, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				_ = releaseScript.Run(context.Background(), r.client, []string{full}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ErrNotAcquired
		case <-time.After(50 * time.Millisecond):
		}
	}
}
