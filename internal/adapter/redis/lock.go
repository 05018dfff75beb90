package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	lockKeyPrefix = "lock:"
	unlockTimeout = 2 * time.Second
)

// LockManager hands out redsync mutexes so that scopes on one property queue
// in Redis before they reach the database.
type LockManager struct {
	rs         *redsync.Redsync
	expiry     time.Duration
	tries      int
	retryDelay time.Duration
	observe    func(wait time.Duration)
	log        *logger.Logger
}

// NewLockManager builds a lock manager. observe, if not nil, receives the
// time spent acquiring each lock.
func NewLockManager(client *redis.Client, cfg config.LockConfig, observe func(time.Duration), log *logger.Logger) *LockManager {
	return &LockManager{
		rs:         redsync.New(goredis.NewPool(client)),
		expiry:     cfg.Expiry,
		tries:      cfg.Tries,
		retryDelay: cfg.RetryDelay,
		observe:    observe,
		log:        log.Named("lock"),
	}
}

// WithLock runs fn while holding the lock on key. The lock is released on
// every exit of fn, panics included. Failing to acquire is domain.ErrTransient.
func (m *LockManager) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	name := lockKeyPrefix + key
	mutex := m.rs.NewMutex(name,
		redsync.WithExpiry(m.expiry),
		redsync.WithTries(m.tries),
		redsync.WithRetryDelay(m.retryDelay),
	)

	started := time.Now()
	if err := mutex.LockContext(ctx); err != nil {
		m.log.Debug("failed to acquire lock", zap.String("key", name), zap.Error(err))
		return fmt.Errorf("%w: acquire lock %s: %v", domain.ErrTransient, name, err)
	}
	if m.observe != nil {
		m.observe(time.Since(started))
	}

	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()
		if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
			m.log.Warn("failed to release lock", zap.String("key", name), zap.Bool("ok", ok), zap.Error(err))
		}
	}()

	return fn(ctx)
}
