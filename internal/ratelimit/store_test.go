package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/sessionkeeper/internal/mocks"
)

func TestStoreLimiter_AdmitsUnderLimit(t *testing.T) {
	ctx := context.Background()
	store := &mocks.RateLimitStore{}

	store.On("CountSince", ctx, "1.2.3.4", "POST", "/auth/login", mock.Anything).Return(int64(4), nil).Once()
	store.On("Insert", ctx, "1.2.3.4", "POST", "/auth/login", mock.Anything).Return(nil).Once()

	l := NewStoreLimiter(store, 5, 10*time.Second)

	allowed, err := l.Allow(ctx, "1.2.3.4", "POST", "/auth/login")
	require.NoError(t, err)
	require.True(t, allowed)
	store.AssertExpectations(t)
}

func TestStoreLimiter_RejectsAtLimit(t *testing.T) {
	ctx := context.Background()
	store := &mocks.RateLimitStore{}

	store.On("CountSince", ctx, "1.2.3.4", "POST", "/auth/login", mock.Anything).Return(int64(5), nil).Once()

	l := NewStoreLimiter(store, 5, 10*time.Second)

	allowed, err := l.Allow(ctx, "1.2.3.4", "POST", "/auth/login")
	require.NoError(t, err)
	require.False(t, allowed)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStoreLimiter_WindowBoundary(t *testing.T) {
	ctx := context.Background()
	store := &mocks.RateLimitStore{}

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 10 * time.Second

	store.On("CountSince", ctx, "c", "GET", "/p", fixed.Add(-window)).Return(int64(0), nil).Once()
	store.On("Insert", ctx, "c", "GET", "/p", fixed).Return(nil).Once()

	l := NewStoreLimiter(store, 1, window)
	l.now = func() time.Time { return fixed }

	allowed, err := l.Allow(ctx, "c", "GET", "/p")
	require.NoError(t, err)
	require.True(t, allowed)
	store.AssertExpectations(t)
}

func TestStoreLimiter_StoreError(t *testing.T) {
	ctx := context.Background()
	store := &mocks.RateLimitStore{}

	store.On("CountSince", ctx, "c", "GET", "/p", mock.Anything).Return(int64(0), context.DeadlineExceeded).Once()

	l := NewStoreLimiter(store, 1, time.Second)

	_, err := l.Allow(ctx, "c", "GET", "/p")
	require.Error(t, err)
}
