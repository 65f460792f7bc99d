package async_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/beepboop/internal/async"
)

func TestAsyncResult(t *testing.T) {
	t.Parallel()

	f := async.Async(context.Background(), 21, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	res, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, res)
}

func TestAsyncError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	f := async.Async(context.Background(), "x", func(context.Context, string) (string, error) {
		return "", boom
	})

	<-f.Done()
	_, err := f.Await()
	require.ErrorIs(t, err, boom)
}

func TestAsyncPreCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	f := async.Async(ctx, 0, func(context.Context, int) (int, error) {
		called = true
		return 1, nil
	})

	_, err := f.Await()
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestAsyncRecoversPanic(t *testing.T) {
	t.Parallel()

	f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		panic("kaboom")
	})

	_, err := f.Await()
	require.ErrorIs(t, err, async.ErrPanic)
	assert.Contains(t, err.Error(), "kaboom")
}
