package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureSettlesOnce(t *testing.T) {
	f := NewFuture[int]()
	assert.False(t, f.Settled())

	assert.True(t, f.Resolve(7))
	assert.False(t, f.Resolve(8))
	assert.False(t, f.Reject(errors.New("late")))

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFutureReject(t *testing.T) {
	boom := errors.New("boom")
	f := Rejected[string](boom)

	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFutureWaitRespectsContext(t *testing.T) {
	f := NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.Settled())
}

func TestFutureThen(t *testing.T) {
	f := NewFuture[int]()
	got := make(chan int, 2)
	f.Then(func(v int, err error) { got <- v })

	f.Resolve(3)
	assert.Equal(t, 3, <-got)

	// registered after settling: runs immediately
	f.Then(func(v int, err error) { got <- v * 2 })
	assert.Equal(t, 6, <-got)
}

func TestTransform(t *testing.T) {
	f := NewFuture[int]()
	s := Transform(f, func(v int) (string, error) {
		if v < 0 {
			return "", errors.New("negative")
		}
		return "ok", nil
	})
	f.Resolve(1)

	v, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	neg := Transform(Resolved(-1), func(v int) (string, error) {
		return "", errors.New("negative")
	})
	_, err = neg.Wait(context.Background())
	assert.EqualError(t, err, "negative")
}

func TestJoinAll(t *testing.T) {
	a, b, c := NewFuture[struct{}](), NewFuture[struct{}](), NewFuture[struct{}]()
	joined := JoinAll(context.Background(), a, b, c)

	c.Resolve(struct{}{})
	a.Resolve(struct{}{})
	select {
	case <-joined.Done():
		t.Fatal("join settled before all inputs")
	case <-time.After(10 * time.Millisecond):
	}

	b.Resolve(struct{}{})
	_, err := joined.Wait(context.Background())
	assert.NoError(t, err)
}

func TestJoinAllRejects(t *testing.T) {
	boom := errors.New("boom")
	a := NewFuture[int]()
	joined := JoinAll(context.Background(), a, Rejected[int](boom))

	_, err := joined.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestJoinAllEmpty(t *testing.T) {
	assert.True(t, JoinAll[int](context.Background()).Settled())
}

func TestSettleAll(t *testing.T) {
	a, b := NewFuture[int](), NewFuture[int]()
	all := SettleAll(a, b)

	a.Reject(errors.New("failed"))
	assert.False(t, all.Settled())
	b.Resolve(1)

	_, err := all.Wait(context.Background())
	assert.NoError(t, err)
}

func TestJoinAllSettledInputsJoinSynchronously(t *testing.T) {
	joined := JoinAll(context.Background(), Resolved(1), Resolved(2))
	assert.True(t, joined.Settled())
}
