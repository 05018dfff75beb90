package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLockManager(t *testing.T, cfg config.LockConfig) (*LockManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLockManager(client, cfg, nil, logger.NewNop()), mr
}

func TestWithLockReleases(t *testing.T) {
	m, mr := newLockManager(t, config.LockConfig{Expiry: time.Second, Tries: 3, RetryDelay: 10 * time.Millisecond})

	var held bool
	err := m.WithLock(context.Background(), "property:p1", func(ctx context.Context) error {
		held = mr.Exists("lock:property:p1")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, held)
	assert.False(t, mr.Exists("lock:property:p1"))
}

func TestWithLockPropagatesError(t *testing.T) {
	m, mr := newLockManager(t, config.LockConfig{Expiry: time.Second, Tries: 3, RetryDelay: 10 * time.Millisecond})
	boom := errors.New("boom")

	err := m.WithLock(context.Background(), "k", func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("lock:k"))
}

func TestWithLockBusyIsTransient(t *testing.T) {
	m, _ := newLockManager(t, config.LockConfig{Expiry: 5 * time.Second, Tries: 2, RetryDelay: 5 * time.Millisecond})

	inside := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = m.WithLock(context.Background(), "k", func(ctx context.Context) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	err := m.WithLock(context.Background(), "k", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, domain.ErrTransient)
	close(release)
}

func TestWithLockSerialises(t *testing.T) {
	m, _ := newLockManager(t, config.LockConfig{Expiry: 5 * time.Second, Tries: 200, RetryDelay: 5 * time.Millisecond})

	var inside, overlap int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithLock(context.Background(), "k", func(ctx context.Context) error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.StoreInt32(&overlap, 1)
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Zero(t, atomic.LoadInt32(&overlap))
}
