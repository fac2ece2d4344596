package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

const (
	entityLockTTL     = 30 * time.Second
	entityLockBackoff = 100 * time.Millisecond
	entityLockRetries = 100
)

// EntityLocker serializes read-modify-write cycles per entity key (one
// student's fee balance, one tenant's contract). With a redislock client it
// locks across instances; without one it degrades to in-process mutexes,
// which is enough for tests and single-instance deployments.
type EntityLocker struct {
	client   *redislock.Client
	clientFn func() *redislock.Client

	mu    sync.Mutex
	local map[string]*sync.Mutex
}

func NewEntityLocker(client *redislock.Client) *EntityLocker {
	return &EntityLocker{
		client: client,
		local:  make(map[string]*sync.Mutex),
	}
}

// NewEntityLockerFunc resolves the lock client per call, so the locker can be
// wired at startup before redis has finished connecting.
func NewEntityLockerFunc(fn func() *redislock.Client) *EntityLocker {
	return &EntityLocker{
		clientFn: fn,
		local:    make(map[string]*sync.Mutex),
	}
}

func (l *EntityLocker) redisClient() *redislock.Client {
	if l.client != nil {
		return l.client
	}
	if l.clientFn != nil {
		return l.clientFn()
	}
	return nil
}

// Lock blocks until the key is held and returns the release func.
func (l *EntityLocker) Lock(ctx context.Context, key string) (func(), error) {
	client := l.redisClient()
	if client == nil {
		l.mu.Lock()
		m, ok := l.local[key]
		if !ok {
			m = &sync.Mutex{}
			l.local[key] = m
		}
		l.mu.Unlock()
		m.Lock()
		return m.Unlock, nil
	}

	lock, err := client.Obtain(ctx, "settle:"+key, entityLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(entityLockBackoff), entityLockRetries),
	})
	if err != nil {
		return nil, fmt.Errorf("could not obtain entity lock for %s: %w", key, err)
	}
	return func() { _ = lock.Release(context.Background()) }, nil
}

func feeLockKey(studentId int) string     { return fmt.Sprintf("fee:%d", studentId) }
func billingLockKey(branchId int) string  { return fmt.Sprintf("billing:%d", branchId) }
func payrollLockKey(recordId int) string  { return fmt.Sprintf("payroll:%d", recordId) }
