package deferred

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfter_ZeroDelayResolvesImmediately(t *testing.T) {
	f := After(0, func() (int, error) { return 42, nil })

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	var got int
	f.Then(func(v int) { got = v })
	assert.Equal(t, 42, got)
}

func TestAfter_DelayedValue(t *testing.T) {
	f := After(10*time.Millisecond, func() (string, error) { return "loaded", nil })

	applied := make(chan string, 1)
	f.Then(func(v string) { applied <- v })

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)

	select {
	case got := <-applied:
		assert.Equal(t, "loaded", got)
	case <-time.After(time.Second):
		t.Fatal("callback was not applied")
	}
}

func TestAfter_ErrorSkipsCallbacks(t *testing.T) {
	boom := errors.New("boom")
	f := After(0, func() (int, error) { return 0, boom })

	called := false
	f.Then(func(int) { called = true })

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestAwait_CancelAbandonsFuture(t *testing.T) {
	var ran atomic.Bool
	f := After(50*time.Millisecond, func() (int, error) {
		ran.Store(true)
		return 1, nil
	})

	var applied atomic.Bool
	f.Then(func(int) { applied.Store(true) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, f.Live())

	time.Sleep(100 * time.Millisecond)
	assert.False(t, ran.Load(), "abandoned loader should not run")
	assert.False(t, applied.Load(), "stale value must not be applied")
}

func TestAbandon_ThenAfterAbandonIsIgnored(t *testing.T) {
	f := After(time.Hour, func() (int, error) { return 1, nil })
	f.Abandon()

	called := false
	f.Then(func(int) { called = true })
	assert.False(t, called)

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, ErrAbandoned)
}

func TestResolved(t *testing.T) {
	f := Resolved([]string{"a"})
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)
	assert.True(t, f.Live())
}
