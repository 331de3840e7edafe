package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct {
	calls atomic.Int32
	n     int
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context) (int, error) {
	p.calls.Add(1)
	return p.n, p.err
}

func TestCacheJanitor_Sweep(t *testing.T) {
	p := &countingPurger{n: 3}
	assert.Equal(t, 3, NewCacheJanitor(p, time.Minute).Sweep(context.Background()))

	failing := &countingPurger{err: errors.New("locked")}
	assert.Zero(t, NewCacheJanitor(failing, time.Minute).Sweep(context.Background()))
}

func TestCacheJanitor_StartStop(t *testing.T) {
	p := &countingPurger{}
	j := NewCacheJanitor(p, 5*time.Millisecond)

	errCh := make(chan error, 1)
	go func() { errCh <- j.Start(context.Background()) }()

	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, time.Millisecond)
	require.NoError(t, j.Stop())
	assert.NoError(t, <-errCh)

	// Stopping twice is a no-op.
	assert.NoError(t, j.Stop())
}

func TestCacheJanitor_ContextCancel(t *testing.T) {
	j := NewCacheJanitor(&countingPurger{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- j.Start(ctx) }()
	cancel()

	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestCacheJanitor_Disabled(t *testing.T) {
	p := &countingPurger{}
	assert.NoError(t, NewCacheJanitor(p, 0).Start(context.Background()))
	assert.Zero(t, p.calls.Load())
}
