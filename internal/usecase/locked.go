package usecase

import (
	"context"
	"fmt"
	"time"

	"ai-content-scheduler/internal/domain/ports/adapter"
)

// Lock keys shared by every pass entry point (HTTP trigger and ticker).
const (
	dispatchLockKey   = "pass:dispatch"
	completionLockKey = "pass:completion"
)

var _ DispatchUseCase = (*LockedDispatch)(nil)

// LockedDispatch serializes dispatch passes behind the pass lock. Without
// it two overlapping passes could both read a run-limit count just under
// the max and collectively overshoot it.
type LockedDispatch struct {
	inner  DispatchUseCase
	locker adapter.PassLocker
	ttl    time.Duration
}

func NewLockedDispatch(inner DispatchUseCase, locker adapter.PassLocker, ttl time.Duration) *LockedDispatch {
	return &LockedDispatch{inner: inner, locker: locker, ttl: ttl}
}

func (l *LockedDispatch) RunPass(ctx context.Context) (*DispatchPassResult, error) {
	token, err := l.locker.TryLock(ctx, dispatchLockKey, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire dispatch lock: %w", err)
	}
	defer func() { _ = l.locker.Unlock(ctx, dispatchLockKey, token) }()
	return l.inner.RunPass(ctx)
}

var _ CompletionUseCase = (*LockedCompletion)(nil)

// LockedCompletion serializes completion passes the same way.
type LockedCompletion struct {
	inner  CompletionUseCase
	locker adapter.PassLocker
	ttl    time.Duration
}

func NewLockedCompletion(inner CompletionUseCase, locker adapter.PassLocker, ttl time.Duration) *LockedCompletion {
	return &LockedCompletion{inner: inner, locker: locker, ttl: ttl}
}

func (l *LockedCompletion) RunPass(ctx context.Context) (*CompletionPassResult, error) {
	token, err := l.locker.TryLock(ctx, completionLockKey, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire completion lock: %w", err)
	}
	defer func() { _ = l.locker.Unlock(ctx, completionLockKey, token) }()
	return l.inner.RunPass(ctx)
}
