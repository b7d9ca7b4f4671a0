package adapter

import (
	"context"
	"time"
)

// PassLocker serializes pass execution across concurrent invocations
// (ticker workers and HTTP triggers alike). TryLock does not wait: a held
// lock means a pass is already running and the caller must give up rather
// than race the run-limit guard.
type PassLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
